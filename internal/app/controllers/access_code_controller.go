package controllers

import (
	"net/http"
	"strings"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AccessCodeController handles showcase projects and the codes that unlock them
type AccessCodeController struct {
	accessCodeService services.AccessCodeService
}

// NewAccessCodeController creates a new AccessCodeController
func NewAccessCodeController(accessCodeService services.AccessCodeService) *AccessCodeController {
	return &AccessCodeController{
		accessCodeService: accessCodeService,
	}
}

// CreateAccessCode handles access code creation
// @Summary Create an access code
// @Tags access-codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAccessCodeRequest true "Code and granted projects"
// @Success 201 {object} models.AccessCode
// @Router /access-codes [post]
func (c *AccessCodeController) CreateAccessCode(ctx *gin.Context) {
	var req dto.CreateAccessCodeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	code, err := c.accessCodeService.CreateAccessCode(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("Access code created", map[string]interface{}{
		"accessCode": code,
	}))
}

// DeactivateAccessCode disables a code
// @Summary Deactivate an access code
// @Tags access-codes
// @Produce json
// @Security BearerAuth
// @Param code path string true "Access code"
// @Success 200 {object} dto.Envelope
// @Router /access-codes/{code}/deactivate [patch]
func (c *AccessCodeController) DeactivateAccessCode(ctx *gin.Context) {
	if err := c.accessCodeService.DeactivateAccessCode(ctx.Request.Context(), ctx.Param("code")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Access code deactivated", nil))
}

// CreateProject adds a showcase project
// @Summary Create a showcase project
// @Tags access-codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProjectRequest true "Project"
// @Success 201 {object} models.Project
// @Router /projects [post]
func (c *AccessCodeController) CreateProject(ctx *gin.Context) {
	var req dto.CreateProjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	project, err := c.accessCodeService.CreateProject(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("Project created", map[string]interface{}{
		"project": project,
	}))
}

// Preview lists the projects a code grants without consuming a use
// @Summary Preview showcase projects
// @Tags showcase
// @Produce json
// @Param code query string true "Access code"
// @Success 200 {object} dto.ShowcaseResponse
// @Failure 404 {object} dto.ErrorResponse "Invalid or expired access code"
// @Router /showcase [get]
func (c *AccessCodeController) Preview(ctx *gin.Context) {
	code := strings.TrimSpace(ctx.Query("code"))
	if code == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "code is required").
			WithField("code").
			WithSeverity(dto.ErrorSeverityWarning)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	projects, err := c.accessCodeService.Preview(ctx.Request.Context(), code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"projects": projects,
	}))
}

// Redeem consumes one use of a code and returns its projects
// @Summary Redeem an access code
// @Tags showcase
// @Accept json
// @Produce json
// @Param request body dto.RedeemAccessCodeRequest true "Access code"
// @Success 200 {object} dto.ShowcaseResponse
// @Failure 404 {object} dto.ErrorResponse "Invalid or expired access code"
// @Router /showcase/redeem [post]
func (c *AccessCodeController) Redeem(ctx *gin.Context) {
	var req dto.RedeemAccessCodeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	projects, err := c.accessCodeService.Redeem(ctx.Request.Context(), req.Code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Access granted", map[string]interface{}{
		"projects": projects,
	}))
}
