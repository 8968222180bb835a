// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strings"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/acesped/portal/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// AdmissionController handles application intake and the admission decision flow
type AdmissionController struct {
	admissionService services.AdmissionService
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService services.AdmissionService) *AdmissionController {
	return &AdmissionController{
		admissionService: admissionService,
	}
}

// SubmitApplication handles the public application form
// @Summary Submit an application
// @Tags applications
// @Accept json
// @Produce json
// @Param request body dto.SubmitApplicationRequest true "Applicant details"
// @Success 201 {object} dto.SubmitApplicationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Already applied for this session"
// @Router /applications [post]
func (c *AdmissionController) SubmitApplication(ctx *gin.Context) {
	var req dto.SubmitApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.SubmitApplication(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("Application submitted successfully", map[string]interface{}{
		"applicationNumber": app.ApplicationNumber,
		"status":            app.Status,
	}))
}

// GetApplicationStatus lets an applicant look up their own application
// @Summary Look up application status
// @Tags applications
// @Produce json
// @Param applicationNumber query string true "Application number"
// @Param email query string true "Email used on the application"
// @Success 200 {object} dto.ApplicationStatusResponse
// @Failure 404 {object} dto.ErrorResponse "No matching application"
// @Router /applications/status [get]
func (c *AdmissionController) GetApplicationStatus(ctx *gin.Context) {
	var query dto.ApplicationStatusQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	app, err := c.admissionService.GetApplicationStatus(ctx.Request.Context(), query.ApplicationNumber, query.Email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"application": dto.ApplicationStatusResponse{
			ApplicationNumber: app.ApplicationNumber,
			AdmissionSession:  app.AdmissionSession,
			Status:            app.Status,
			StatusUpdatedAt:   app.StatusUpdatedAt,
		},
	}))
}

// ListApplications returns a page of applications for reviewers
// @Summary List applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param admissionSession query string false "e.g. 2025/2026"
// @Param page query int false "1-based page"
// @Param size query int false "page size"
// @Success 200 {object} dto.ApplicationListResponse
// @Router /applications [get]
func (c *AdmissionController) ListApplications(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx)
	filter := dto.ApplicationFilter{
		Status:           models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(ctx.Query("status")))),
		AdmissionSession: strings.TrimSpace(ctx.Query("admissionSession")),
		Page:             page.Number,
		Size:             page.Size,
	}

	apps, pagination, err := c.admissionService.ListApplications(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"applications": apps,
		"pagination":   pagination,
	}))
}

// RecordExercise stores the admission exercise components for an application
// @Summary Record admission exercise score
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationNumber path string true "Application number"
// @Param request body dto.RecordExerciseRequest true "Component scores"
// @Success 200 {object} models.AdmissionExercise
// @Router /admissions/{applicationNumber}/exercise [put]
func (c *AdmissionController) RecordExercise(ctx *gin.Context) {
	var req dto.RecordExerciseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	exercise, err := c.admissionService.RecordExerciseScore(ctx.Request.Context(), principal, ctx.Param("applicationNumber"), req.Components)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Admission exercise recorded", map[string]interface{}{
		"exercise": exercise,
	}))
}

// GetExercise returns the recorded exercise for an application
// @Summary Get admission exercise
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param applicationNumber path string true "Application number"
// @Success 200 {object} models.AdmissionExercise
// @Failure 404 {object} dto.ErrorResponse "No exercise recorded"
// @Router /admissions/{applicationNumber}/exercise [get]
func (c *AdmissionController) GetExercise(ctx *gin.Context) {
	exercise, err := c.admissionService.GetExercise(ctx.Request.Context(), ctx.Param("applicationNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"exercise": exercise,
	}))
}

// SetStatus approves or rejects an application
// @Summary Decide an application
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationNumber path string true "Application number"
// @Param request body dto.SetApplicationStatusRequest true "APPROVED or REJECTED"
// @Success 200 {object} models.Application
// @Failure 400 {object} dto.ErrorResponse "Threshold not met or already decided"
// @Router /admissions/{applicationNumber}/status [patch]
func (c *AdmissionController) SetStatus(ctx *gin.Context) {
	var req dto.SetApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	status := models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	app, err := c.admissionService.SetApplicationStatus(ctx.Request.Context(), principal, ctx.Param("applicationNumber"), status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Application status updated", map[string]interface{}{
		"application": app,
	}))
}

// SendInterviewInvitation emails a pending applicant their interview date
// @Summary Send interview invitation
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationNumber path string true "Application number"
// @Param request body dto.InterviewInvitationRequest false "Venue"
// @Success 200 {object} dto.InterviewInvitationResponse
// @Router /admissions/{applicationNumber}/interview-invitation [post]
func (c *AdmissionController) SendInterviewInvitation(ctx *gin.Context) {
	var req dto.InterviewInvitationRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.SendInterviewInvitation(ctx.Request.Context(), ctx.Param("applicationNumber"), req.Venue)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.InterviewInvitationResponse{ApplicationNumber: app.ApplicationNumber}
	if app.InterviewScheduledFor != nil {
		resp.InterviewDate = *app.InterviewScheduledFor
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Interview invitation sent", map[string]interface{}{
		"invitation": resp,
	}))
}
