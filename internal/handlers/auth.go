package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/dto"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/middleware"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Join registers a new user.
func (h *AuthHandler) Join(c *gin.Context) {
	type JoinRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required,min=1,max=50"`
		Password string `json:"password" binding:"required"`
	}

	var req JoinRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Join(c.Request.Context(), services.JoinInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Created(c, "User registered", dto.ToUserDTO(*user))
}

// Login authenticates a user and issues a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Success(c, "Login successful", tokens)
}

// Validate returns the user behind the presented access token.
func (h *AuthHandler) Validate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Success(c, "Token is valid", dto.ToUserDTO(*user))
}

// Logout forgets the caller's refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req refreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID, req.RefreshToken); err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Success(c, "Logged out successfully", nil)
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Success(c, "Token refreshed", gin.H{"accessToken": access})
}

// bindJSON binds the body and answers 400 naming the offending fields.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var fe validation.FieldErrors
		if fe.AddValidation(err) {
			apierrors.BadRequestFields(c, fe.Message(), fe.Fields())
		} else {
			apierrors.BadRequest(c, "Invalid request body")
		}
		return false
	}
	return true
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequestFields(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength), []string{"password"})
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrRefreshTokenMismatch):
		apierrors.Unauthorized(c, "Invalid or expired token")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword),
		errors.Is(err, services.ErrNeedTokenSecret):
		_ = c.Error(err)
		apierrors.InternalError(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "Internal server error")
	}
}
