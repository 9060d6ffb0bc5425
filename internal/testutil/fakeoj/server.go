// Package fakeoj is an in-memory judge backend for tests. It speaks the same wire format
// as the real backend; its judge sums the integers of the input instead of running code.
package fakeoj

import (
	"net/http"
	"sync"

	"ojclient/internal/api"
	"ojclient/internal/common/http/middleware"
	"ojclient/internal/judge/report"

	"github.com/gin-gonic/gin"
)

type user struct {
	id        uint32
	info      api.UserInfo
	loginHash string
}

type customTest struct {
	polls  int
	result *report.TaskReport
}

type submission struct {
	meta   report.SubmissionMeta
	raw    map[string]report.SourceFile
	polls  int
	report *report.FullJudgeReport
}

type problem struct {
	meta      api.ProblemMeta
	statement api.ProblemStatement
	assets    map[string][]byte
	fulldata  string
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	// PendingPolls is how many result polls answer null before a job finishes.
	PendingPolls int

	mu          sync.Mutex
	users       map[string]*user
	secret      []byte
	revoked     map[string]struct{}
	customTests map[string]*customTest
	submissions map[uint64]*submission
	problems    map[uint64]*problem
	contests    map[uint64]api.ContestDetail
	registrants map[uint64][]string
	hits        map[string]int
	nextUID     uint32
	nextSID     uint64
	nextPID     uint64

	engine *gin.Engine
}

// New creates a backend seeded with problem 1 ("A + B") and contest 1.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		PendingPolls: 2,
		users:        make(map[string]*user),
		secret:       newSecret(),
		revoked:      make(map[string]struct{}),
		customTests:  make(map[string]*customTest),
		submissions:  make(map[uint64]*submission),
		problems:     make(map[uint64]*problem),
		contests:     make(map[uint64]api.ContestDetail),
		registrants:  make(map[uint64][]string),
		hits:         make(map[string]int),
		nextPID:      1,
	}
	aPlusB := api.ProblemMeta{ID: 1, Title: "A + B", Tags: "math"}
	s.problems[1] = &problem{
		meta: aPlusB,
		statement: api.ProblemStatement{
			Title:     aPlusB.Title,
			Statement: []byte(`{"type":"root","children":[]}`),
			Meta:      []byte(`{"time":1000,"memory":268435456}`),
		},
		assets:   map[string][]byte{"sample.png": {0x89, 'P', 'N', 'G'}},
		fulldata: "traditional, 2 tests",
	}
	s.contests[1] = api.ContestDetail{
		Meta:     api.ContestMeta{ID: 1, Title: "Warmup", StartTime: 1700000000, EndTime: 1700086400, Duration: 7200000},
		Problems: []api.ProblemMeta{aPlusB},
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler, ready for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hits returns how many requests reached method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[api.Signature{Method: method, Path: path}.Key()]
}

// UserCount returns the number of registered users.
func (s *Server) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestContext(), s.count)

	auth := r.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)
	auth.GET("/info", s.requireSession, s.authInfo)

	r.GET("/user", s.userProfile)
	r.GET("/user/edit", s.requireSession, s.userEditGet)
	r.POST("/user/edit", s.requireSession, s.userEditPost)
	r.GET("/user/gravatar", s.gravatar)

	prob := r.Group("/problem")
	prob.GET("/metas", s.problemMetas)
	prob.GET("/statement", s.statement)
	prob.GET("/statement_assets", s.statementAsset)
	prob.GET("/fulldata_meta", s.fulldataMeta)
	prob.POST("/fulldata", s.fulldata)
	prob.POST("/submit", s.requireSession, s.submit)

	r.POST("/custom_test", s.requireSession, s.customTestPost)
	r.GET("/custom_test", s.requireSession, s.customTestGet)

	r.GET("/submission/detail", s.submissionDetail)
	r.GET("/submission/metas", s.submissionMetas)

	ctst := r.Group("/contest")
	ctst.GET("/metas", s.contestMetas)
	ctst.GET("/info", s.contestInfo)
	ctst.GET("/registrants", s.registrantsGet)
	ctst.POST("/registrants", s.requireSession, s.registrantsPost)
	ctst.DELETE("/registrants", s.requireSession, s.registrantsDelete)
	return r
}

func (s *Server) count(c *gin.Context) {
	key := api.Signature{Method: c.Request.Method, Path: c.Request.URL.Path}.Key()
	s.mu.Lock()
	s.hits[key]++
	s.mu.Unlock()
	c.Next()
}
