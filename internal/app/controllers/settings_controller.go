package controllers

import (
	"net/http"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SettingsController handles the active academic session
type SettingsController struct {
	settingsService services.SettingsService
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settingsService services.SettingsService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
	}
}

// GetActiveSession returns the active session and semester
// @Summary Get active academic session
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AcademicSession
// @Failure 404 {object} dto.ErrorResponse "No session configured"
// @Router /settings/academic-session [get]
func (c *SettingsController) GetActiveSession(ctx *gin.Context) {
	session, err := c.settingsService.GetActiveSession(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"academicSession": session,
	}))
}

// UpdateActiveSession sets the active session and semester
// @Summary Set active academic session
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateAcademicSessionRequest true "Session, semester and optional expected version"
// @Success 200 {object} models.AcademicSession
// @Failure 409 {object} dto.ErrorResponse "Version mismatch"
// @Router /settings/academic-session [put]
func (c *SettingsController) UpdateActiveSession(ctx *gin.Context) {
	var req dto.UpdateAcademicSessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	session, err := c.settingsService.UpdateActiveSession(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Academic session updated", map[string]interface{}{
		"academicSession": session,
	}))
}

// GetAdmissionSettings returns the configured approval threshold
// @Summary Get admission settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AdmissionSettingsResponse
// @Router /settings/admission [get]
func (c *SettingsController) GetAdmissionSettings(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"admission": c.settingsService.AdmissionSettings(),
	}))
}
