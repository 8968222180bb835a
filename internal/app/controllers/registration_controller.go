package controllers

import (
	"net/http"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegistrationController handles course registration, results and GPA
type RegistrationController struct {
	registrationService services.RegistrationService
	resultService       services.ResultService
}

// NewRegistrationController creates a new RegistrationController
func NewRegistrationController(registrationService services.RegistrationService, resultService services.ResultService) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
		resultService:       resultService,
	}
}

// Register enrols a student in a course for a session and semester
// @Summary Register for a course
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterCourseRequest true "Course and term"
// @Success 201 {object} models.Registration
// @Failure 409 {object} dto.ErrorResponse "Already registered for this term"
// @Router /registrations [post]
func (c *RegistrationController) Register(ctx *gin.Context) {
	var req dto.RegisterCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	reg, err := c.registrationService.Register(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("Course registered successfully", map[string]interface{}{
		"registration": reg,
	}))
}

// Withdraw withdraws an ungraded registration
// @Summary Withdraw a registration
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} models.Registration
// @Router /registrations/{id}/withdraw [patch]
func (c *RegistrationController) Withdraw(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	reg, err := c.registrationService.Withdraw(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Registration withdrawn", map[string]interface{}{
		"registration": reg,
	}))
}

// RecordResult stores a score and grade on a registration
// @Summary Record a result
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Param request body dto.RecordResultRequest true "Score and optional grade"
// @Success 200 {object} models.Registration
// @Router /registrations/{id}/result [put]
func (c *RegistrationController) RecordResult(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.RecordResultRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	reg, err := c.resultService.RecordResult(ctx.Request.Context(), principal, id, req.Score, req.Grade)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Result recorded", map[string]interface{}{
		"registration": reg,
	}))
}

// ListForStudent returns every registration a student holds
// @Summary List a student's registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.RegistrationListResponse
// @Router /students/{id}/registrations [get]
func (c *RegistrationController) ListForStudent(ctx *gin.Context) {
	studentID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	regs, err := c.registrationService.ListForStudent(ctx.Request.Context(), principal, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"registrations": regs,
	}))
}

// GetCGPA returns the cumulative GPA and, when session and semester are
// given, the GPA for that term
// @Summary Get CGPA
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param session query string false "e.g. 2025/2026"
// @Param semester query string false "First or Second"
// @Success 200 {object} dto.CGPAResponse
// @Router /students/{id}/cgpa [get]
func (c *RegistrationController) GetCGPA(ctx *gin.Context) {
	studentID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	cgpa, err := c.resultService.ComputeCGPA(ctx.Request.Context(), principal, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.CGPAResponse{StudentID: studentID, CGPA: cgpa}
	session, semester := ctx.Query("session"), ctx.Query("semester")
	if session != "" || semester != "" {
		gpa, err := c.resultService.ComputeGPA(ctx.Request.Context(), principal, studentID, session, semester)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		resp.Session, resp.Semester, resp.GPA = session, semester, &gpa
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"result": resp,
	}))
}
