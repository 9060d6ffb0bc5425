// Package oj is the typed facade over every judge backend endpoint.
package oj

import (
	"context"
	"strings"
	"time"

	"ojclient/internal/api"
	"ojclient/internal/client/dispatch"
	"ojclient/internal/judge/report"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultGravatarCacheSize = 256
	defaultGravatarTTL       = 10 * time.Minute
)

// Config tunes the facade.
type Config struct {
	PollInterval      time.Duration `yaml:"pollInterval"`
	PollMaxAttempts   int           `yaml:"pollMaxAttempts"`
	GravatarCacheSize int           `yaml:"gravatarCacheSize"`
	GravatarTTL       time.Duration `yaml:"gravatarTTL"`
}

// Client issues typed calls through a dispatcher.
type Client struct {
	d        *dispatch.Dispatcher
	cfg      Config
	gravatar *expirable.LRU[string, []byte]
}

// New creates a facade over d.
func New(d *dispatch.Dispatcher, cfg Config) *Client {
	if cfg.GravatarCacheSize <= 0 {
		cfg.GravatarCacheSize = defaultGravatarCacheSize
	}
	if cfg.GravatarTTL <= 0 {
		cfg.GravatarTTL = defaultGravatarTTL
	}
	return &Client{
		d:        d,
		cfg:      cfg,
		gravatar: expirable.NewLRU[string, []byte](cfg.GravatarCacheSize, nil, cfg.GravatarTTL),
	}
}

// Dispatcher returns the underlying dispatcher.
func (c *Client) Dispatcher() *dispatch.Dispatcher {
	return c.d
}

func (c *Client) Register(ctx context.Context, p api.RegisterPayload) (string, error) {
	return dispatch.Call(ctx, c.d, api.Register, p)
}

func (c *Client) Login(ctx context.Context, p api.LoginPayload) (string, error) {
	return dispatch.Call(ctx, c.d, api.Login, p)
}

func (c *Client) Logout(ctx context.Context) (string, error) {
	return dispatch.Call(ctx, c.d, api.Logout, api.NoPayload{})
}

func (c *Client) AuthInfo(ctx context.Context) (api.Identity, error) {
	return dispatch.Call(ctx, c.d, api.AuthInfo, api.NoPayload{})
}

func (c *Client) User(ctx context.Context, username string) (api.UserInfo, error) {
	return dispatch.Call(ctx, c.d, api.User, api.UserQuery{Username: username})
}

func (c *Client) UserEditInfo(ctx context.Context) (api.UserInfo, error) {
	return dispatch.Call(ctx, c.d, api.UserEditInfo, api.NoPayload{})
}

func (c *Client) EditUser(ctx context.Context, u api.UserUpdate) (string, error) {
	return dispatch.Call(ctx, c.d, api.EditUser, u)
}

// Gravatar returns the avatar of email, cached per address unless noCache is set.
func (c *Client) Gravatar(ctx context.Context, email string, noCache bool) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if !noCache {
		if img, ok := c.gravatar.Get(key); ok {
			return img, nil
		}
	}
	img, err := dispatch.Call(ctx, c.d, api.Gravatar, api.GravatarQuery{Email: email, NoCache: noCache})
	if err != nil {
		return nil, err
	}
	c.gravatar.Add(key, img)
	return img, nil
}

func (c *Client) ProblemMetas(ctx context.Context, q api.SearchQuery) ([]api.ProblemMeta, error) {
	return dispatch.Call(ctx, c.d, api.ProblemMetas, q)
}

func (c *Client) Statement(ctx context.Context, id uint64) (api.ProblemStatement, error) {
	return dispatch.Call(ctx, c.d, api.Statement, api.IDQuery{ID: id})
}

func (c *Client) StatementAsset(ctx context.Context, id uint64, name string) ([]byte, error) {
	return dispatch.Call(ctx, c.d, api.StatementAsset, api.AssetQuery{ID: id, Name: name})
}

func (c *Client) FullDataMeta(ctx context.Context, id uint64) (string, error) {
	return dispatch.Call(ctx, c.d, api.FullDataMeta, api.IDQuery{ID: id})
}

// UploadFullData uploads a zipped problem. A zero id creates a new problem.
func (c *Client) UploadFullData(ctx context.Context, id uint64, archive []byte) (uint64, error) {
	ret, err := dispatch.Call(ctx, c.d, api.UploadFullData, api.FullDataForm{ID: id, Archive: archive})
	if err != nil {
		return 0, err
	}
	return ret.ID, nil
}

// Submit sends source files for problem pid, inside contest cid when non-zero.
func (c *Client) Submit(ctx context.Context, pid, cid uint64, files ...api.SourceUpload) (uint64, error) {
	ret, err := dispatch.Call(ctx, c.d, api.SubmitSolution, api.SubmitForm{PID: pid, CID: cid, Files: files})
	if err != nil {
		return 0, err
	}
	return ret.SID, nil
}

// Rejudge asks the backend to judge submission sid again.
func (c *Client) Rejudge(ctx context.Context, sid uint64) (uint64, error) {
	ret, err := dispatch.Call(ctx, c.d, api.SubmitSolution, api.SubmitForm{SID: sid})
	if err != nil {
		return 0, err
	}
	return ret.SID, nil
}

func (c *Client) StartCustomTest(ctx context.Context, form api.CustomTestForm) (string, error) {
	return dispatch.Call(ctx, c.d, api.StartCustomTest, form)
}

func (c *Client) CustomTestResult(ctx context.Context) (report.CustomTestResult, error) {
	return dispatch.Call(ctx, c.d, api.CustomTestResult, api.NoPayload{})
}

func (c *Client) SubmissionDetail(ctx context.Context, sid uint64) (report.SubmissionDetail, error) {
	return dispatch.Call(ctx, c.d, api.SubmissionDetail, api.SubmissionQuery{SID: sid})
}

func (c *Client) SubmissionMetas(ctx context.Context, q api.SubmissionListQuery) ([]report.SubmissionMeta, error) {
	return dispatch.Call(ctx, c.d, api.SubmissionMetas, q)
}

func (c *Client) ContestMetas(ctx context.Context, q api.SearchQuery) ([]api.ContestMeta, error) {
	return dispatch.Call(ctx, c.d, api.ContestMetas, q)
}

func (c *Client) ContestInfo(ctx context.Context, id uint64) (api.ContestDetail, error) {
	return dispatch.Call(ctx, c.d, api.ContestInfo, api.IDQuery{ID: id})
}

func (c *Client) Registrants(ctx context.Context, q api.RegistrantsQuery) ([]api.Registrant, error) {
	return dispatch.Call(ctx, c.d, api.Registrants, q)
}

func (c *Client) RegisterContest(ctx context.Context, cid uint64) (string, error) {
	return dispatch.Call(ctx, c.d, api.RegisterContest, api.ContestRef{CID: cid})
}

func (c *Client) UnregisterContest(ctx context.Context, cid uint64) (string, error) {
	return dispatch.Call(ctx, c.d, api.UnregisterContest, api.ContestRef{CID: cid})
}
