package fakeoj

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"time"

	"ojclient/pkg/errors"
	"ojclient/pkg/utils/contextkey"
	"ojclient/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookie = "id"
	sessionTTL    = time.Hour
	issuer        = "fakeoj"
)

// The session cookie is a signed token naming the user; logout revokes its id.
type sessionClaims struct {
	jwt.RegisteredClaims
}

func newSecret() []byte {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("fakeoj: read random secret: %v", err))
	}
	return secret
}

func (s *Server) issueToken(username string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			ID:        uuid.NewString(),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrapf(err, errors.InternalServerError, "sign session failed: %v", err)
	}
	return raw, nil
}

func (s *Server) parseToken(raw string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New(errors.SessionInvalid).WithMessage("session expired")
		}
		return nil, errors.New(errors.SessionInvalid).WithMessage("invalid session")
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, errors.New(errors.SessionInvalid).WithMessage("invalid session")
	}
	return claims, nil
}

func (s *Server) requireSession(c *gin.Context) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil {
		response.AbortWithError(c, errors.New(errors.Unauthorized).WithMessage("unauthorized"))
		return
	}
	claims, err := s.parseToken(raw)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	_, exists := s.users[claims.Subject]
	s.mu.Unlock()
	if revoked || !exists {
		response.AbortWithError(c, errors.New(errors.SessionInvalid).WithMessage("session expired"))
		return
	}
	c.Set("username", claims.Subject)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), contextkey.Username, claims.Subject))
	c.Next()
}

func (s *Server) openSession(c *gin.Context, username string) error {
	token, err := s.issueToken(username)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookie, token, int(sessionTTL/time.Second), "/", "", false, true)
	return nil
}

func (s *Server) closeSession(c *gin.Context) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil {
		return
	}
	if claims, err := s.parseToken(raw); err == nil {
		s.mu.Lock()
		s.revoked[claims.ID] = struct{}{}
		s.mu.Unlock()
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

func sessionUser(c *gin.Context) string {
	return c.GetString("username")
}
