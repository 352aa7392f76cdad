package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kanzaki/taskproof/internal/constants"
	apierrors "github.com/kanzaki/taskproof/internal/errors"
	"github.com/kanzaki/taskproof/internal/utils"
)

// RequireAuth validates the Authorization: Bearer header and stores the
// asserted username in the request context.
func RequireAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			apierrors.Unauthorized(c, "Authorization header must be in the format 'Bearer {token}'")
			c.Abort()
			return
		}

		username, err := tokens.Verify(tokenParts[1])
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				apierrors.TokenExpired(c)
			} else {
				apierrors.Unauthorized(c, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUsername, username)
		c.Next()
	}
}

// GetUsername retrieves the authenticated username from context
func GetUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyUsername)
	if !exists {
		return "", false
	}

	username, ok := value.(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}
