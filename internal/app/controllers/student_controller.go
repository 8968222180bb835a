package controllers

import (
	"net/http"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// StudentController handles conversion, graduation and the student's own profile
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// ConvertToStudent creates a student account from an approved application
// @Summary Convert application to student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 201 {object} dto.ConvertToStudentResponse
// @Failure 400 {object} dto.ErrorResponse "Application not approved"
// @Failure 409 {object} dto.ErrorResponse "Already converted"
// @Router /applications/{id}/convert [post]
func (c *StudentController) ConvertToStudent(ctx *gin.Context) {
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.studentService.ConvertToStudent(ctx.Request.Context(), applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	payload := map[string]interface{}{"student": resp.Student}
	if resp.Programme != nil {
		payload["programme"] = resp.Programme
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("Student created successfully", payload))
}

// Graduate marks the student converted from an application as graduated
// @Summary Graduate a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.GraduateResponse
// @Failure 400 {object} dto.ErrorResponse "Already graduated"
// @Router /applications/{id}/graduate [post]
func (c *StudentController) Graduate(ctx *gin.Context) {
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.studentService.Graduate(ctx.Request.Context(), applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Student graduated successfully", map[string]interface{}{
		"student":             resp.Student,
		"completedProgrammes": resp.CompletedProgrammes,
	}))
}

// GetMe returns the signed-in student's record
// @Summary Get own student record
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Student
// @Router /students/me [get]
func (c *StudentController) GetMe(ctx *gin.Context) {
	principal, _ := middleware.GetPrincipal(ctx)
	student, err := c.studentService.GetStudent(ctx.Request.Context(), principal.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"student": student,
	}))
}

// UpdatePersonalInfo lets a student confirm their own details
// @Summary Confirm personal information
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdatePersonalInfoRequest true "Personal details"
// @Success 200 {object} models.Student
// @Router /students/me/personal-info [put]
func (c *StudentController) UpdatePersonalInfo(ctx *gin.Context) {
	var req dto.UpdatePersonalInfoRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	principal, _ := middleware.GetPrincipal(ctx)
	student, err := c.studentService.UpdatePersonalInfo(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Personal information updated", map[string]interface{}{
		"student": student,
	}))
}
