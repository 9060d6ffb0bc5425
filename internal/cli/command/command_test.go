package command

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ojclient/internal/api"
	"ojclient/internal/client/dispatch"
	"ojclient/internal/client/oj"
	"ojclient/internal/client/state"
	"ojclient/internal/client/transport"
	"ojclient/internal/judge/report"
	"ojclient/internal/testutil/fakeoj"

	"github.com/stretchr/testify/require"
)

func TestRegistryKeys(t *testing.T) {
	commands := Registry()
	for key, cmd := range commands {
		require.Equal(t, key, cmd.Key())
		require.NotNil(t, cmd.Run, key)
		require.NotEmpty(t, cmd.Summary, key)
	}
	for _, key := range []string{"user login", "problem submit", "submission wait", "custom run", "contest register", "api list"} {
		require.Contains(t, commands, key)
	}
}

func TestParamsCanonicalize(t *testing.T) {
	cmd := Registry()["contest info"]
	p := Params{}
	p.Set("CID", "3")
	p.Canonicalize(cmd.Fields)
	require.Equal(t, "3", p.Get("id"))
	require.False(t, p.Has("cid"))
	require.Equal(t, uint64(3), p.Uint("id"))
	require.Nil(t, p.Optional("missing"))
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(src, []byte("print(3)"), 0o644))

	submit := Registry()["problem submit"]
	testCases := []struct {
		name   string
		params Params
		ok     bool
	}{
		{name: "complete", params: Params{"pid": "1", "lang": "python3", "file": src}, ok: true},
		{name: "missing pid", params: Params{"lang": "python3", "file": src}},
		{name: "bad pid", params: Params{"pid": "one", "lang": "python3", "file": src}},
		{name: "bad lang", params: Params{"pid": "1", "lang": "cobol", "file": src}},
		{name: "file is a directory", params: Params{"pid": "1", "lang": "python3", "file": dir}},
		{name: "missing file", params: Params{"pid": "1", "lang": "python3", "file": filepath.Join(dir, "nope")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := submit.Validate(tc.params)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}

	upload := Registry()["problem upload"]
	require.Error(t, upload.Validate(Params{"dir": src}))
	require.NoError(t, upload.Validate(Params{"dir": dir}))
}

func TestListQuery(t *testing.T) {
	q := listQuery(Params{})
	require.Equal(t, uint8(defaultListCount), q.MaxCount)

	q = listQuery(Params{"max": "1000", "offset": "4"})
	require.Equal(t, uint8(255), q.MaxCount)
	require.Equal(t, uint32(4), q.Offset)

	s := searchQuery(Params{"pattern": ""})
	require.Nil(t, s.Pattern)
	s = searchQuery(Params{"pattern": "sum"})
	require.Equal(t, "sum", *s.Pattern)
}

func TestParseStringList(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, ParseStringList(" a, ,b ,"))
	require.Empty(t, ParseStringList(""))
}

func TestCommandsAgainstBackend(t *testing.T) {
	backend := fakeoj.New()
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	d := dispatch.New(transport.New(srv.URL))
	store := state.New(ctx, d, state.Config{})
	defer store.Close()
	env := Env{
		Client: oj.New(d, oj.Config{PollInterval: 5 * time.Millisecond, PollMaxAttempts: 50}),
		Store:  store,
	}
	commands := Registry()
	run := func(key string, p Params) any {
		t.Helper()
		cmd := commands[key]
		p.Canonicalize(cmd.Fields)
		require.NoError(t, cmd.Validate(p))
		out, err := cmd.Run(ctx, env, p)
		require.NoError(t, err, key)
		return out
	}

	run("user register", Params{"u": "heidi", "email": "heidi@example.com", "p": "s3cret"})
	require.Equal(t, api.Identity{Username: "heidi", Email: "heidi@example.com"}, run("user whoami", Params{}))
	require.NotEmpty(t, store.Messages().List())

	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(src, []byte("int main() {}"), 0o644))
	require.NoError(t, os.WriteFile(in, []byte("20 22"), 0o644))

	res, ok := run("custom run", Params{"lang": "gnu_cpp20_o2", "file": src, "input": in}).(*report.TaskReport)
	require.True(t, ok)
	out, _ := res.Artifact("stdout")
	require.Equal(t, "42", out.Content)

	detail, ok := run("problem submit", Params{"pid": "1", "lang": "gnu_cpp20_o2", "file": src, "wait": "data"}).(*report.SubmissionDetail)
	require.True(t, ok)
	require.NotNil(t, detail.Report().Phase(report.PhaseData))

	metas, ok := run("submission list", Params{"pid": "1"}).([]report.SubmissionMeta)
	require.True(t, ok)
	require.Len(t, metas, 1)

	avatar := filepath.Join(dir, "avatars", "heidi.png")
	require.Contains(t, run("user gravatar", Params{"email": "heidi@example.com", "out": avatar}), "wrote")
	_, err := os.Stat(avatar)
	require.NoError(t, err)

	require.Equal(t, "ok", run("contest register", Params{"cid": "1"}))
	require.Len(t, run("api list", Params{}), len(api.Catalogue()))
}
