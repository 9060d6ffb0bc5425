package fakeoj

import (
	"ojclient/internal/api"
	"ojclient/internal/passwd"
	"ojclient/pkg/errors"
	"ojclient/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email        string `json:"email" binding:"required"`
	Username     string `json:"username" binding:"required"`
	PasswordHash string `json:"passwordHash" binding:"required"`
}

type loginRequest struct {
	Username     string `json:"username" binding:"required"`
	PasswordHash string `json:"passwordHash" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	if err := api.ValidateUsername(req.Username); err != nil {
		response.Error(c, err)
		return
	}
	if err := api.ValidateEmail(req.Email); err != nil {
		response.Error(c, err)
		return
	}
	hash, err := passwd.LoginHash(req.PasswordHash)
	if err != nil {
		response.Error(c, err)
		return
	}

	s.mu.Lock()
	if _, taken := s.users[req.Username]; taken {
		s.mu.Unlock()
		response.ErrorWithCode(c, errors.UsernameAlreadyExists, "username taken")
		return
	}
	s.nextUID++
	s.users[req.Username] = &user{
		id: s.nextUID,
		info: api.UserInfo{
			ID:           s.nextUID,
			Username:     req.Username,
			Email:        req.Email,
			RegisterTime: "2024-01-01 00:00:00 UTC",
			Gender:       api.GenderPrivate,
		},
		loginHash: hash,
	}
	s.mu.Unlock()

	if err := s.openSession(c, req.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, "ok")
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok {
		response.ErrorWithCode(c, errors.UserNotFound, "user not found")
		return
	}
	// The stored hash salts what the client sent at register time.
	if !passwd.Verify(passwd.RegisterHash(req.PasswordHash), u.loginHash) {
		response.ErrorWithCode(c, errors.PasswordIncorrect, "password incorrect")
		return
	}
	if err := s.openSession(c, req.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, "login success")
}

func (s *Server) logout(c *gin.Context) {
	s.closeSession(c)
	response.Text(c, "logout success")
}

func (s *Server) authInfo(c *gin.Context) {
	s.mu.Lock()
	u := s.users[sessionUser(c)]
	s.mu.Unlock()
	response.JSON(c, api.Identity{Username: u.info.Username, Email: u.info.Email})
}

func (s *Server) userProfile(c *gin.Context) {
	name := c.Query("username")
	if name == "" {
		response.BadRequest(c, "missing field username")
		return
	}
	s.mu.Lock()
	u, ok := s.users[name]
	s.mu.Unlock()
	if !ok {
		response.ErrorWithCode(c, errors.UserNotFound, "user not found")
		return
	}
	response.JSON(c, u.info)
}

func (s *Server) userEditGet(c *gin.Context) {
	s.mu.Lock()
	u := s.users[sessionUser(c)]
	s.mu.Unlock()
	response.JSON(c, u.info)
}

func (s *Server) userEditPost(c *gin.Context) {
	var req api.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload: "+err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[sessionUser(c)]
	if req.Email != nil {
		u.info.Email = *req.Email
	}
	if req.Motto != nil {
		u.info.Motto = *req.Motto
	}
	if req.Name != nil {
		u.info.Name = *req.Name
	}
	if req.Gender != nil {
		u.info.Gender = *req.Gender
	}
	if req.PasswordHash != nil {
		hash, err := passwd.LoginHash(*req.PasswordHash)
		if err != nil {
			response.Error(c, err)
			return
		}
		u.loginHash = hash
	}
	response.Text(c, "ok")
}

func (s *Server) gravatar(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "missing field email")
		return
	}
	// A tiny payload keyed by the gravatar hash is enough to tell avatars apart.
	response.Bytes(c, "image/png", []byte("PNG:"+passwd.GravatarHash(email)))
}
