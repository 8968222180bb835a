package controllers

import (
	"net/http"
	"strconv"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AcademicController handles the programme and course catalogue
type AcademicController struct {
	academicService services.AcademicService
}

// NewAcademicController creates a new AcademicController
func NewAcademicController(academicService services.AcademicService) *AcademicController {
	return &AcademicController{
		academicService: academicService,
	}
}

// CreateProgram handles programme creation
// @Summary Create a programme
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProgramRequest true "Programme"
// @Success 201 {object} models.Program
// @Failure 409 {object} dto.ErrorResponse "Programme code taken"
// @Router /programs [post]
func (c *AcademicController) CreateProgram(ctx *gin.Context) {
	var req dto.CreateProgramRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	program, err := c.academicService.CreateProgram(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("Program created successfully", map[string]interface{}{
		"program": program,
	}))
}

// ListPrograms returns every programme
// @Summary List programmes
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Program
// @Router /programs [get]
func (c *AcademicController) ListPrograms(ctx *gin.Context) {
	programs, err := c.academicService.ListPrograms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"programs": programs,
	}))
}

// CreateCourse handles course creation
// @Summary Create a course
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course
// @Router /courses [post]
func (c *AcademicController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.academicService.CreateCourse(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessEnvelope("Course created successfully", map[string]interface{}{
		"course": course,
	}))
}

// ListCourses returns courses, optionally for one programme
// @Summary List courses
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Param programId query int false "Programme ID"
// @Success 200 {array} models.Course
// @Router /courses [get]
func (c *AcademicController) ListCourses(ctx *gin.Context) {
	var programID *int64
	if raw := ctx.Query("programId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid programId").
				WithField("programId").
				WithSeverity(dto.ErrorSeverityWarning)
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		programID = &id
	}

	courses, err := c.academicService.ListCourses(ctx.Request.Context(), programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("", map[string]interface{}{
		"courses": courses,
	}))
}

// AssignLecturer attaches a lecturer to a course
// @Summary Assign a lecturer
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.AssignLecturerRequest true "Lecturer"
// @Success 200 {object} models.Course
// @Router /courses/{id}/lecturers [post]
func (c *AcademicController) AssignLecturer(ctx *gin.Context) {
	courseID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignLecturerRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.academicService.AssignLecturer(ctx.Request.Context(), courseID, req.LecturerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessEnvelope("Lecturer assigned", map[string]interface{}{
		"course": course,
	}))
}
