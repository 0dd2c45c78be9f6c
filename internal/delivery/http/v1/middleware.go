package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
)

const callerCtxKey = "caller"

// HandleAuthMiddleware extracts the bearer token, resolves it to a
// user and attaches the identity to the request context. A missing
// or unresolvable token short-circuits the request with 401 before
// any task logic runs.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Warn().Msg("authorization header required")
		abortUnauthenticated(c)
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Warn().Msg("invalid authorization header")
		abortUnauthenticated(c)
		return
	}

	caller, err := h.auth.Authenticate(c, parts[1])
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to resolve bearer token")
		abortUnauthenticated(c)
		return
	}

	c.Set(callerCtxKey, caller)
	c.Next()
}

func callerFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(callerCtxKey)
	if !exists {
		return nil, false
	}
	caller, ok := value.(*models.User)
	return caller, ok
}
