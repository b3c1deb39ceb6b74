package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pcparts-backend/internal/domain"
)

const userCtxKey = "currentUser"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authRequired resolves the bearer token to a user and aborts with 401 when
// it cannot.
func authRequired(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			fail(c, http.StatusUnauthorized, "authorization required")
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(userCtxKey, u)
		c.Next()
	}
}

// authOptional resolves a bearer token when present but lets anonymous
// requests through. Guest checkout depends on this.
func authOptional(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(userCtxKey, u)
		c.Next()
	}
}

// staffRequired gates admin surfaces. Must run after authRequired.
func staffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil || !u.IsStaff() {
			fail(c, http.StatusForbidden, "staff access required")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
