package controllers

import (
	"net/http"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionCookie configures the cookie that carries the access token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	cookie      SessionCookie
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, cookie SessionCookie, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	if c.cookie.Name == "" {
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, token, maxAge, "/", "", c.cookie.Secure, true)
}

func (c *AuthController) respondWithSession(ctx *gin.Context, resp *dto.AuthResponse) {
	c.setSessionCookie(ctx, resp.Token.AccessToken, resp.Token.ExpiresIn)
	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Login successful", map[string]interface{}{
		"token":     resp.Token,
		"principal": resp.Principal,
	}))
}

// StaffLogin handles staff login
// @Summary Staff login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StaffLoginRequest true "Email and password"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Router /auth/staff/login [post]
func (c *AuthController) StaffLogin(ctx *gin.Context) {
	var req dto.StaffLoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.StaffLogin(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Staff login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondWithSession(ctx, resp)
}

// StudentLogin handles student login with matric number
// @Summary Student login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StudentLoginRequest true "Matric number and password"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/student/login [post]
func (c *AuthController) StudentLogin(ctx *gin.Context) {
	var req dto.StudentLoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.StudentLogin(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("matricNumber", req.MatricNumber).Msg("Student login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondWithSession(ctx, resp)
}

// Logout clears the session cookie. Bearer tokens simply expire.
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} dto.Envelope
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	c.setSessionCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Logged out", nil))
}

// Me returns the signed-in principal
// @Summary Current principal
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PrincipalResponse
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"principal": services.ToPrincipalResponse(principal),
	}))
}
