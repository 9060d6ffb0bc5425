package oj

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ojclient/internal/api"
	"ojclient/internal/client/dispatch"
	"ojclient/internal/client/transport"
	"ojclient/internal/judge/report"
	"ojclient/internal/passwd"
	"ojclient/internal/testutil/fakeoj"
	appErr "ojclient/pkg/errors"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

type harness struct {
	backend *fakeoj.Server
	client  *Client
	ctx     context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := fakeoj.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	d := dispatch.New(transport.New(srv.URL, transport.WithTimeout(5*time.Second)))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return &harness{
		backend: backend,
		client:  New(d, Config{PollInterval: 5 * time.Millisecond, PollMaxAttempts: 50}),
		ctx:     ctx,
	}
}

func (h *harness) signUp(t *testing.T, username, password string) {
	t.Helper()
	_, err := h.client.Register(h.ctx, api.RegisterPayload{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: passwd.RegisterHash(password),
	})
	require.NoError(t, err)
}

func TestRegisterLoginAndIdentity(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "alice", "hunter22")

	msg, err := h.client.Login(h.ctx, api.LoginPayload{Username: "alice", PasswordHash: passwd.RegisterHash("hunter22")})
	require.NoError(t, err)
	require.Equal(t, "login success", msg)

	first, err := h.client.AuthInfo(h.ctx)
	require.NoError(t, err)
	second, err := h.client.AuthInfo(h.ctx)
	require.NoError(t, err)
	require.Equal(t, api.Identity{Username: "alice", Email: "alice@example.com"}, first)
	require.Equal(t, first, second)
	require.Equal(t, 2, h.backend.Hits(http.MethodGet, "/auth/info"))

	_, err = h.client.Login(h.ctx, api.LoginPayload{Username: "alice", PasswordHash: passwd.RegisterHash("wrong")})
	require.Equal(t, appErr.KindProtocol, appErr.KindOf(err))
	require.Equal(t, http.StatusUnauthorized, appErr.StatusOf(err))

	_, err = h.client.Logout(h.ctx)
	require.NoError(t, err)
	_, err = h.client.AuthInfo(h.ctx)
	require.Equal(t, http.StatusUnauthorized, appErr.StatusOf(err))
}

func TestSessionIdentityIsStable(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Register(h.ctx, api.RegisterPayload{Email: "test@test.com", Username: "testit", PasswordHash: "hash"})
	require.NoError(t, err)
	_, err = h.client.Login(h.ctx, api.LoginPayload{Username: "testit", PasswordHash: "hash"})
	require.NoError(t, err)

	want := api.Identity{Username: "testit", Email: "test@test.com"}
	for i := 0; i < 2; i++ {
		got, err := h.client.AuthInfo(h.ctx)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestRegisterRejectsMissingField(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Register(h.ctx, api.RegisterPayload{Username: "bobby", PasswordHash: passwd.RegisterHash("pw")})
	require.Error(t, err)
	require.Equal(t, appErr.KindProtocol, appErr.KindOf(err))
	require.Equal(t, http.StatusBadRequest, appErr.StatusOf(err))
	require.Equal(t, 0, h.backend.UserCount())

	h.signUp(t, "bobby", "pw")
	_, err = h.client.Register(h.ctx, api.RegisterPayload{Email: "b@example.com", Username: "bobby", PasswordHash: "x"})
	require.Equal(t, http.StatusConflict, appErr.StatusOf(err))
	require.Equal(t, 1, h.backend.UserCount())
}

func TestProfileEdit(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "carol", "pw")

	motto := "keep going"
	_, err := h.client.EditUser(h.ctx, api.UserUpdate{Motto: &motto})
	require.NoError(t, err)

	mine, err := h.client.UserEditInfo(h.ctx)
	require.NoError(t, err)
	require.Equal(t, motto, mine.Motto)

	public, err := h.client.User(h.ctx, "carol")
	require.NoError(t, err)
	require.Equal(t, mine, public)

	_, err = h.client.User(h.ctx, "nobody")
	require.Equal(t, http.StatusNotFound, appErr.StatusOf(err))
}

func TestGravatarCache(t *testing.T) {
	h := newHarness(t)

	img, err := h.client.Gravatar(h.ctx, "MyEmailAddress@example.com ", false)
	require.NoError(t, err)
	require.Equal(t, "PNG:"+passwd.GravatarHash("myemailaddress@example.com"), string(img))

	again, err := h.client.Gravatar(h.ctx, "myemailaddress@example.com", false)
	require.NoError(t, err)
	require.Equal(t, img, again)
	require.Equal(t, 1, h.backend.Hits(http.MethodGet, "/user/gravatar"))

	_, err = h.client.Gravatar(h.ctx, "myemailaddress@example.com", true)
	require.NoError(t, err)
	require.Equal(t, 2, h.backend.Hits(http.MethodGet, "/user/gravatar"))
}

func TestRunCustomTest(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "dave", "pw")

	res, err := h.client.RunCustomTest(h.ctx, api.CustomTestForm{
		Lang:   report.GnuCpp14O2,
		Source: []byte("int main() { int a, b; std::cin >> a >> b; std::cout << a + b; }"),
		Input:  []byte("1 2"),
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.Meta.Status.IsGood())
	out, ok := res.Artifact("stdout")
	require.True(t, ok)
	require.Equal(t, "3", out.Content)
	require.Equal(t, 1+h.backend.PendingPolls, h.backend.Hits(http.MethodGet, "/custom_test"))

	_, err = h.client.StartCustomTest(h.ctx, api.CustomTestForm{Lang: report.Plain, Source: []byte("x"), Input: []byte("")})
	require.Equal(t, http.StatusBadRequest, appErr.StatusOf(err))
}

func TestRunCustomTestNeedsSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.RunCustomTest(h.ctx, api.CustomTestForm{Lang: report.Python3, Source: []byte("print(3)"), Input: []byte("1 2")})
	require.Equal(t, appErr.KindProtocol, appErr.KindOf(err))
	require.Equal(t, 0, h.backend.Hits(http.MethodGet, "/custom_test"))
}

func TestPollGivesUp(t *testing.T) {
	h := newHarness(t)
	h.backend.PendingPolls = 100
	h.client.cfg.PollMaxAttempts = 3
	h.signUp(t, "erin", "pw")

	_, err := h.client.RunCustomTest(h.ctx, api.CustomTestForm{Lang: report.Python3, Source: []byte("print(3)"), Input: []byte("1 2")})
	require.True(t, appErr.Is(err, appErr.PollExhausted))
	require.Equal(t, 3, h.backend.Hits(http.MethodGet, "/custom_test"))
}

func TestSubmitAndWaitJudged(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "frank", "pw")

	sid, err := h.client.Submit(h.ctx, 1, 0, api.SourceUpload{Name: "source", Lang: report.Rust, Source: []byte("fn main() {}")})
	require.NoError(t, err)
	require.Equal(t, uint64(1), sid)

	detail, err := h.client.WaitJudged(h.ctx, sid, report.PhaseData)
	require.NoError(t, err)
	require.NotNil(t, detail.Report())
	data := detail.Report().Phase(report.PhaseData)
	require.True(t, data.Meta.Status.IsGood())
	require.True(t, data.Detail.Progress().Finished())
	require.Equal(t, "judged 2 tests", detail.Judge[0])
	require.Equal(t, report.Rust, *detail.Info.Meta.Lang)
	require.NotNil(t, detail.Info.Meta.Status)

	metas, err := h.client.SubmissionMetas(h.ctx, api.SubmissionListQuery{ListQuery: api.ListQuery{MaxCount: 10}})
	require.NoError(t, err)
	require.Len(t, metas, 1)
	require.Equal(t, "frank", metas[0].Username)

	again, err := h.client.Rejudge(h.ctx, sid)
	require.NoError(t, err)
	require.Equal(t, sid, again)
	pending, err := h.client.SubmissionDetail(h.ctx, sid)
	require.NoError(t, err)
	require.Nil(t, pending.Report())

	_, err = h.client.Submit(h.ctx, 1, 0, api.SourceUpload{Name: "main", Lang: report.Rust, Source: []byte("fn main() {}")})
	require.Equal(t, http.StatusBadRequest, appErr.StatusOf(err))
	_, err = h.client.Submit(h.ctx, 42, 0, api.SourceUpload{Name: "source", Lang: report.Rust, Source: []byte("")})
	require.Equal(t, http.StatusNotFound, appErr.StatusOf(err))
}

func TestProblemQueries(t *testing.T) {
	h := newHarness(t)

	pattern := "A + B"
	metas, err := h.client.ProblemMetas(h.ctx, api.SearchQuery{ListQuery: api.ListQuery{MaxCount: 5}, Pattern: &pattern})
	require.NoError(t, err)
	require.Len(t, metas, 1)
	require.Equal(t, uint64(1), metas[0].ID)

	st, err := h.client.Statement(h.ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "A + B", st.Title)

	asset, err := h.client.StatementAsset(h.ctx, 1, "sample.png")
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, asset)

	_, err = h.client.StatementAsset(h.ctx, 1, "missing.png")
	require.Equal(t, http.StatusNotFound, appErr.StatusOf(err))

	desc, err := h.client.FullDataMeta(h.ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "traditional, 2 tests", desc)
}

func TestUploadFullDataDir(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "title.txt"), []byte("Echo\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "1.in"), []byte("1 2"), 0o644))

	archive, err := ZipDir(dir)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.ElementsMatch(t, []string{"title.txt", "tests/1.in"}, names)

	id, err := h.client.UploadFullDataDir(h.ctx, 0, dir)
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)

	pattern := "Echo"
	metas, err := h.client.ProblemMetas(h.ctx, api.SearchQuery{ListQuery: api.ListQuery{MaxCount: 5}, Pattern: &pattern})
	require.NoError(t, err)
	require.Len(t, metas, 1)
	require.Equal(t, id, metas[0].ID)

	_, err = h.client.UploadFullDataDir(h.ctx, 99, dir)
	require.Equal(t, http.StatusNotFound, appErr.StatusOf(err))

	_, err = ZipDir(filepath.Join(dir, "absent"))
	require.True(t, appErr.Is(err, appErr.ProblemArchiveFailed))
}

func TestContestRegistration(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "grace", "pw")

	info, err := h.client.ContestInfo(h.ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Warmup", info.Meta.Title)
	require.Len(t, info.Problems, 1)

	for i := 0; i < 2; i++ {
		_, err = h.client.RegisterContest(h.ctx, 1)
		require.NoError(t, err)
	}
	regs, err := h.client.Registrants(h.ctx, api.RegistrantsQuery{ListQuery: api.ListQuery{MaxCount: 10}, ID: 1})
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.Equal(t, "grace", regs[0].Username)

	_, err = h.client.UnregisterContest(h.ctx, 1)
	require.NoError(t, err)
	_, err = h.client.UnregisterContest(h.ctx, 1)
	require.Equal(t, appErr.KindProtocol, appErr.KindOf(err))

	regs, err = h.client.Registrants(h.ctx, api.RegistrantsQuery{ListQuery: api.ListQuery{MaxCount: 10}, ID: 1})
	require.NoError(t, err)
	require.Empty(t, regs)

	_, err = h.client.RegisterContest(h.ctx, 7)
	require.Equal(t, http.StatusNotFound, appErr.StatusOf(err))
}
