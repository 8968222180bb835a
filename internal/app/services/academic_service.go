package services

import (
	"context"
	"errors"
	"strings"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// AcademicService manages the program and course catalogue.
type AcademicService interface {
	CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*models.Program, error)
	ListPrograms(ctx context.Context) ([]*models.Program, error)
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error)
	ListCourses(ctx context.Context, programID *int64) ([]*models.Course, error)
	AssignLecturer(ctx context.Context, courseID, lecturerID int64) (*models.Course, error)
}

type academicServiceImpl struct {
	repos  *repositories.Repositories
	logger zerolog.Logger
}

// NewAcademicService creates a new academic service instance
func NewAcademicService(repos *repositories.Repositories, logger zerolog.Logger) AcademicService {
	return &academicServiceImpl{repos: repos, logger: logger}
}

// isValidCode checks for upper-case letters, digits and dashes.
func isValidCode(code string) bool {
	if code == "" {
		return false
	}
	for _, char := range code {
		if !((char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-') {
			return false
		}
	}
	return true
}

func (s *academicServiceImpl) CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*models.Program, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !isValidCode(code) {
		return nil, apperrors.NewValidationError("code must contain only letters, digits and dashes")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if req.HeadOfProgramID != nil {
		if err := s.requireStaff(ctx, *req.HeadOfProgramID, models.RoleHeadOfProgram); err != nil {
			return nil, err
		}
	}

	program := &models.Program{
		Code:            code,
		Name:            name,
		Service:         strings.TrimSpace(req.Service),
		HeadOfProgramID: req.HeadOfProgramID,
	}
	if err := s.repos.Programs.Create(ctx, program); err != nil {
		if errors.Is(err, repositories.ErrProgramCodeTaken) {
			return nil, apperrors.NewDuplicateError("program code " + code + " already exists")
		}
		return nil, internal("create program", err)
	}
	return program, nil
}

func (s *academicServiceImpl) ListPrograms(ctx context.Context) ([]*models.Program, error) {
	programs, err := s.repos.Programs.List(ctx)
	if err != nil {
		return nil, internal("list programs", err)
	}
	return programs, nil
}

func (s *academicServiceImpl) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !isValidCode(code) {
		return nil, apperrors.NewValidationError("code must contain only letters, digits and dashes")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if req.CreditHours <= 0 {
		return nil, apperrors.NewValidationError("creditHours must be positive")
	}
	if _, err := s.repos.Programs.GetByID(ctx, req.ProgramID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("program not found")
		}
		return nil, internal("get program", err)
	}

	course := &models.Course{
		ProgramID:   req.ProgramID,
		Code:        code,
		Title:       title,
		CreditHours: req.CreditHours,
	}
	if err := s.repos.Courses.Create(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrCourseCodeTaken) {
			return nil, apperrors.NewDuplicateError("course code " + code + " already exists")
		}
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("program not found")
		}
		return nil, internal("create course", err)
	}
	return course, nil
}

func (s *academicServiceImpl) ListCourses(ctx context.Context, programID *int64) ([]*models.Course, error) {
	courses, err := s.repos.Courses.List(ctx, programID)
	if err != nil {
		return nil, internal("list courses", err)
	}
	return courses, nil
}

// AssignLecturer adds a lecturer to a course. Assigning twice is a no-op.
func (s *academicServiceImpl) AssignLecturer(ctx context.Context, courseID, lecturerID int64) (*models.Course, error) {
	if _, err := s.repos.Courses.GetByID(ctx, courseID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("course not found")
		}
		return nil, internal("get course", err)
	}
	if err := s.requireStaff(ctx, lecturerID, models.RoleLecturer); err != nil {
		return nil, err
	}
	if err := s.repos.Courses.AssignLecturer(ctx, courseID, lecturerID); err != nil {
		return nil, internal("assign lecturer", err)
	}
	s.logger.Info().Int64("courseID", courseID).Int64("lecturerID", lecturerID).Msg("Lecturer assigned")
	return s.repos.Courses.GetByID(ctx, courseID)
}

func (s *academicServiceImpl) requireStaff(ctx context.Context, userID int64, role models.Role) error {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NewResourceNotFoundError("user not found")
		}
		return internal("get user", err)
	}
	if user.Role != role {
		return apperrors.NewValidationError("user " + user.Email + " is not a " + strings.ToLower(strings.ReplaceAll(string(role), "_", " ")))
	}
	return nil
}
