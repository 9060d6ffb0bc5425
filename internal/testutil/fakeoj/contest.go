package fakeoj

import (
	"strconv"
	"strings"

	"ojclient/internal/api"
	"ojclient/pkg/errors"
	"ojclient/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

type contestRequest struct {
	CID uint64 `json:"cid" binding:"required"`
}

func (s *Server) contestMetas(c *gin.Context) {
	pattern := c.Query("pattern")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.ContestMeta, 0, len(s.contests))
	for cid := uint64(1); cid <= uint64(len(s.contests)); cid++ {
		ctst, ok := s.contests[cid]
		if !ok || (pattern != "" && !strings.Contains(ctst.Meta.Title, pattern)) {
			continue
		}
		out = append(out, ctst.Meta)
	}
	response.JSON(c, page(c, out))
}

func (s *Server) contestInfo(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "missing field id")
		return
	}
	s.mu.Lock()
	ctst, ok := s.contests[id]
	s.mu.Unlock()
	if !ok {
		response.ErrorWithCode(c, errors.ContestNotFound, "contest not found")
		return
	}
	response.JSON(c, ctst)
}

func (s *Server) registrantsGet(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "missing field id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contests[id]; !ok {
		response.ErrorWithCode(c, errors.ContestNotFound, "contest not found")
		return
	}
	out := make([]api.Registrant, 0, len(s.registrants[id]))
	for _, name := range s.registrants[id] {
		out = append(out, api.Registrant{ID: uint64(s.users[name].id), Username: name})
	}
	response.JSON(c, page(c, out))
}

func (s *Server) bindContest(c *gin.Context) (uint64, bool) {
	var req contestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload: "+err.Error())
		return 0, false
	}
	if _, ok := s.contests[req.CID]; !ok {
		response.ErrorWithCode(c, errors.ContestNotFound, "contest not found")
		return 0, false
	}
	return req.CID, true
}

func (s *Server) registrantsPost(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cid, ok := s.bindContest(c)
	if !ok {
		return
	}
	name := sessionUser(c)
	for _, r := range s.registrants[cid] {
		if r == name {
			response.Text(c, "ok")
			return
		}
	}
	s.registrants[cid] = append(s.registrants[cid], name)
	response.Text(c, "ok")
}

func (s *Server) registrantsDelete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cid, ok := s.bindContest(c)
	if !ok {
		return
	}
	name := sessionUser(c)
	list := s.registrants[cid]
	for i, r := range list {
		if r == name {
			s.registrants[cid] = append(list[:i], list[i+1:]...)
			response.Text(c, "ok")
			return
		}
	}
	response.ErrorWithCode(c, errors.NotRegistered, "not registered")
}
