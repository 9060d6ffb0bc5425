package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	appErr "ojclient/pkg/errors"
	"ojclient/pkg/utils/contextkey"

	"github.com/stretchr/testify/require"
)

type captured struct {
	req  *http.Request
	body []byte
}

func TestDoSendsRequestAndKeepsCookies(t *testing.T) {
	seen := make(chan captured, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen <- captured{req: r, body: body}
		if r.URL.Path == "/auth/login" {
			http.SetCookie(w, &http.Cookie{Name: "id", Value: "token", Path: "/"})
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithHeader("X-Client", "ojcli"))
	ctx := context.WithValue(context.Background(), contextkey.RequestID, "req-1")

	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", ContentType: "application/json", Body: []byte(`{}`)})
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.False(t, resp.OK())
	require.Equal(t, "short and stout", string(resp.Body))

	got := <-seen
	require.Equal(t, "ojcli", got.req.Header.Get("X-Client"))
	require.Equal(t, "req-1", got.req.Header.Get("X-Request-ID"))
	require.Equal(t, "application/json", got.req.Header.Get("Content-Type"))
	require.Equal(t, `{}`, string(got.body))

	require.Len(t, c.Cookies(), 1)

	_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/user", Query: url.Values{"username": {"a b"}}})
	require.NoError(t, err)
	got = <-seen
	require.Equal(t, "a b", got.req.URL.Query().Get("username"))
	cookie, err := got.req.Cookie("id")
	require.NoError(t, err)
	require.Equal(t, "token", cookie.Value)
	require.NotEmpty(t, got.req.Header.Get("X-Request-ID"))
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow"})
	require.Error(t, err)
	require.True(t, appErr.Is(err, appErr.TransportTimeout))
	require.Equal(t, appErr.KindTransport, appErr.KindOf(err))
}

func TestDoUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr).Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	require.Equal(t, appErr.KindTransport, appErr.KindOf(err))
}

func TestSettings(t *testing.T) {
	c := New("http://a/")
	require.Equal(t, "http://a", c.BaseURL())
	c.SetBaseURL("http://b//")
	require.Equal(t, "http://b", c.BaseURL())

	c.SetTimeout(0)
	require.Equal(t, DefaultTimeout, c.Timeout())
	c.SetTimeout(time.Second)
	require.Equal(t, time.Second, c.Timeout())

	c.SetHeader("X-A", "1")
	headers := c.Headers()
	headers["X-B"] = "2"
	require.Equal(t, map[string]string{"X-A": "1"}, c.Headers())
	c.SetHeader("X-A", "")
	require.Empty(t, c.Headers())
}
