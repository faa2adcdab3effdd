package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/errors"
	"github.com/jwalitptl/care-portal/pkg/httputil"
)

const ContextIdentity = "identity"

type AuthMiddleware struct {
	tokens *auth.JWTManager
}

func NewAuthMiddleware(tokens *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and stores the caller's identity on both
// the gin context and the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, errors.Unauthenticated(stderrors.New("missing authorization header")))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, errors.Unauthenticated(stderrors.New("invalid authorization format")))
			return
		}

		identity, err := m.tokens.Verify(parts[1])
		if err != nil {
			httputil.RespondWithError(c, errors.Unauthenticated(err))
			return
		}

		c.Set(ContextIdentity, *identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), *identity))
		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			httputil.RespondWithError(c, errors.Unauthenticated(nil))
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, errors.Forbidden("your role cannot access this resource"))
	}
}

func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}
