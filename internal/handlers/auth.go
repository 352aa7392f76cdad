package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kanzaki/taskproof/internal/constants"
	"github.com/kanzaki/taskproof/internal/dto"
	apierrors "github.com/kanzaki/taskproof/internal/errors"
	"github.com/kanzaki/taskproof/internal/services"
	"github.com/kanzaki/taskproof/internal/storage"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	sink        storage.ArtifactSink
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sink storage.ArtifactSink) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sink:        sink,
	}
}

// Register creates a new user. Accepts JSON, or multipart form data when
// an avatar file is attached.
func (h *AuthHandler) Register(c *gin.Context) {
	input, ok := h.bindSignup(c)
	if !ok {
		return
	}

	user, err := h.authService.Signup(input)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.ToUserDTO(*user),
	})
}

// Logout acknowledges the request. Bearer tokens are stateless and
// cannot be revoked server-side; clients discard theirs.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out. Discard your token; it expires on its own.",
	})
}

// bindSignup extracts signup fields from either encoding, storing the
// avatar through the sink when one is uploaded.
func (h *AuthHandler) bindSignup(c *gin.Context) (services.SignupInput, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		type SignupRequest struct {
			Username  string `json:"username" binding:"required,min=3,max=50"`
			Password  string `json:"password" binding:"required"`
			Email     string `json:"email" binding:"omitempty,email"`
			AvatarURL string `json:"avatar_url"`
		}

		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return services.SignupInput{}, false
		}

		return services.SignupInput{
			Username:  req.Username,
			Password:  req.Password,
			Email:     req.Email,
			AvatarURL: req.AvatarURL,
		}, true
	}

	input := services.SignupInput{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
		Email:    c.PostForm("email"),
	}

	fileHeader, err := c.FormFile(constants.AvatarFormField)
	if err != nil {
		// Avatar is optional; only an attached-but-unreadable file is an error.
		if !errors.Is(err, http.ErrMissingFile) {
			apierrors.BadRequest(c, "Invalid avatar upload")
			return services.SignupInput{}, false
		}
		return input, true
	}

	file, ok := openImageUpload(c, fileHeader)
	if !ok {
		return services.SignupInput{}, false
	}
	defer file.Close()

	ref, err := h.sink.Put(fileHeader.Filename, file)
	if err != nil {
		apierrors.OperationFailed(c, "Failed to store avatar")
		return services.SignupInput{}, false
	}

	input.AvatarURL = ref
	return input, true
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword),
		errors.Is(err, services.ErrFailedToCreateUser),
		errors.Is(err, services.ErrFailedToIssueToken):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
