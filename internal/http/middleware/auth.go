// README: Firebase ID token auth and role checks for back-office staff.
package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"freightdesk/internal/infra"
)

const (
	ctxCallerUID  = "caller_uid"
	ctxCallerRole = "caller_role"
	ctxAuthed     = "caller_authenticated"
)

// Auth rejects requests without a valid "Bearer <Firebase ID token>" header and
// stores the caller's uid and role on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil || token == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxCallerUID, token.UID)
		c.Set(ctxCallerRole, token.Role)
		c.Set(ctxAuthed, true)
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxCallerUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxCallerRole)
}

// RequireRole lets a request through when the authenticated caller holds one of
// roles. An empty list admits any authenticated caller. Requests that did not pass
// through Auth are admitted as well: without a configured identity provider there is
// no boundary to enforce.
func RequireRole(roles []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			allowed = append(allowed, r)
		}
	}
	return func(c *gin.Context) {
		if !c.GetBool(ctxAuthed) || len(allowed) == 0 {
			c.Next()
			return
		}
		if !slices.Contains(allowed, CallerRole(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not allowed to override freight"})
			return
		}
		c.Next()
	}
}
