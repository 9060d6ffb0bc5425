package repl

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ojclient/internal/cli/command"
	"ojclient/internal/cli/config"
	"ojclient/internal/client/dispatch"
	"ojclient/internal/client/oj"
	"ojclient/internal/client/state"
	"ojclient/internal/client/transport"
	"ojclient/internal/testutil/fakeoj"

	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, input string) (*Session, *bytes.Buffer) {
	t.Helper()
	backend := fakeoj.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.BaseURL = srv.URL
	cfg.PollInterval = 5 * time.Millisecond

	tc := transport.New(cfg.BaseURL)
	d := dispatch.New(tc)
	store := state.New(context.Background(), d, cfg.Messages)
	t.Cleanup(store.Close)
	env := command.Env{Client: oj.New(d, cfg.Client()), Store: store}

	var out bytes.Buffer
	return New(tc, env, command.Registry(), cfg, strings.NewReader(input), &out), &out
}

func TestExecSystemCommands(t *testing.T) {
	s, out := newSession(t, "")
	ctx := context.Background()

	require.True(t, s.Exec(ctx, "quit"))
	require.False(t, s.Exec(ctx, "set timeout 3s"))
	require.False(t, s.Exec(ctx, "set header X-Trace abc"))
	require.False(t, s.Exec(ctx, "show config"))
	require.False(t, s.Exec(ctx, "show cookies"))

	text := out.String()
	require.Contains(t, text, "timeout set to 3s")
	require.Contains(t, text, "racePolicy: last-settled-wins")
	require.Contains(t, text, "X-Trace")
	require.Contains(t, text, "cookies: <empty>")
}

func TestExecCommands(t *testing.T) {
	s, out := newSession(t, "")
	ctx := context.Background()

	s.Exec(ctx, `user register username=judy email=judy@example.com password="two words"`)
	s.Exec(ctx, "user whoami")
	s.Exec(ctx, "show cookies")
	s.Exec(ctx, "show messages")
	s.Exec(ctx, "problem statement id=99")
	s.Exec(ctx, "nothing here")

	text := out.String()
	require.Contains(t, text, `"username": "judy"`)
	require.Contains(t, text, "id=")
	require.Contains(t, text, "[info] registered as judy")
	require.Contains(t, text, "protocol error (HTTP 404)")
	require.Contains(t, text, "unknown command: nothing here")
}

func TestRunPromptsForMissingFields(t *testing.T) {
	s, out := newSession(t, "user info\njudy\nexit\n")
	s.Run(context.Background())

	text := out.String()
	require.Contains(t, text, "username:")
	require.Contains(t, text, "protocol error (HTTP 404)")
	require.True(t, strings.HasSuffix(text, "bye\n"))
}
