package controllers

import (
	"net/http"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// UserController handles staff account administration
type UserController struct {
	authService services.AuthService
}

// NewUserController creates a new UserController
func NewUserController(authService services.AuthService) *UserController {
	return &UserController{
		authService: authService,
	}
}

// CreateUser creates a staff account
// @Summary Create a staff user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Staff account"
// @Success 201 {object} models.User
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("User created successfully", map[string]interface{}{
		"user": user,
	}))
}
