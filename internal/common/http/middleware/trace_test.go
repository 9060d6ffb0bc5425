package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ojclient/pkg/utils/contextkey"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newEngine(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestContext())
	r.GET("/ping", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(contextkey.RequestID).(string)
		if id != RequestID(c) {
			c.Status(http.StatusInternalServerError)
			return
		}
		*seen = id
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRequestContextKeepsCallerID(t *testing.T) {
	var seen string
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	newEngine(&seen).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "req-42", seen)
	require.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRequestContextAssignsID(t *testing.T) {
	var seen string
	w := httptest.NewRecorder()
	newEngine(&seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, seen)
	require.Equal(t, seen, w.Header().Get(RequestIDHeader))
}
