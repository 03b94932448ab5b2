package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/middleware"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// AuthResponse is the session user with its token, flattened.
type AuthResponse struct {
	models.User
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newAuthResponse(r *services.LoginResult) AuthResponse {
	return AuthResponse{User: r.User, Token: r.Token, ExpiresAt: r.ExpiresAt}
}

func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "auth_controller")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func (ac *AuthController) Register(c *gin.Context) {
	var req services.UserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "auth_controller")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (ac *AuthController) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := ac.auth.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err, "auth_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.auth.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err, "auth_controller")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) Refresh(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := ac.auth.Refresh(c.Request.Context(), claims)
	if err != nil {
		respondError(c, err, "auth_controller")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordInput
	if !bindJSON(c, &req) {
		return
	}

	if err := ac.auth.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), req); err != nil {
		respondError(c, err, "auth_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
