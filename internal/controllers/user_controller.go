package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/services"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// GetUsers lists users, optionally restricted to one role.
func (uc *UserController) GetUsers(c *gin.Context) {
	filter := repository.UserFilter{Role: models.UserRole(c.Query("role"))}

	users, err := uc.users.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "user_controller")
		return
	}

	c.JSON(http.StatusOK, users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	user, err := uc.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "user_controller")
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUser is the admin path for opening an account on someone's behalf.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req services.UserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "user_controller")
		return
	}

	c.JSON(http.StatusCreated, user)
}
