package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kanzaki/taskproof/internal/dto"
	apierrors "github.com/kanzaki/taskproof/internal/errors"
	"github.com/kanzaki/taskproof/internal/middleware"
	"github.com/kanzaki/taskproof/internal/services"
)

// UserHandler serves profile and leaderboard reads.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the caller's profile, or another user's when a
// username query param is given.
func (h *UserHandler) GetProfile(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if other := c.Query("username"); other != "" {
		username = other
	}

	user, err := h.userService.GetProfile(username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Leaderboard returns all users ordered by score descending. An empty
// deployment yields an empty array, not an error.
func (h *UserHandler) Leaderboard(c *gin.Context) {
	users, err := h.userService.Leaderboard()
	if err != nil {
		apierrors.InternalError(c, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": dto.ToLeaderboard(users)})
}
