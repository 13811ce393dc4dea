package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jayedsikder/commerceflow-api/internal/identity"
)

const userKey = "session.user"

type Session struct {
	provider identity.Provider
}

func NewSession(provider identity.Provider) *Session {
	return &Session{provider: provider}
}

// Require rejects requests without a live session. Checkout is gated on
// exactly this: a session being present, nothing more.
func (s *Session) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.resolve(c)
		if !ok {
			unauth(c, "invalid_token", "missing or expired session")
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// Optional resolves the session when present but never rejects. Used by
// the confirmation page, which the gateway redirect may hit without
// credentials.
func (s *Session) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := s.resolve(c); ok {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

func (s *Session) resolve(c *gin.Context) (*identity.User, bool) {
	token := BearerToken(c)
	if token == "" {
		return nil, false
	}
	user, err := s.provider.CurrentUser(c.Request.Context(), token)
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

// BearerToken extracts the raw token from the Authorization header,
// empty when absent.
func BearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// SessionUser returns the authenticated user set by Require/Optional.
func SessionUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return nil
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}
