package services

import (
	"context"
	"errors"
	"strings"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/helpers"
	"github.com/acesped/portal/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// errInvalidAccessCode is the only failure a caller of the public showcase
// sees, whatever the reason.
var errInvalidAccessCode = apperrors.NewResourceNotFoundError("invalid or expired access code")

// AccessCodeService gates the project showcase. Validate never consumes a
// use; IncrementUsage and Redeem each consume exactly one.
type AccessCodeService interface {
	Validate(ctx context.Context, code string) ([]int64, error)
	IncrementUsage(ctx context.Context, code string) (bool, error)
	Preview(ctx context.Context, code string) ([]*models.Project, error)
	Redeem(ctx context.Context, code string) ([]*models.Project, error)
	CreateAccessCode(ctx context.Context, principal auth.Principal, req *dto.CreateAccessCodeRequest) (*models.AccessCode, error)
	DeactivateAccessCode(ctx context.Context, code string) error
	CreateProject(ctx context.Context, req *dto.CreateProjectRequest) (*models.Project, error)
}

type accessCodeServiceImpl struct {
	repos  *repositories.Repositories
	logger zerolog.Logger
}

// NewAccessCodeService creates a new access code service instance
func NewAccessCodeService(repos *repositories.Repositories, logger zerolog.Logger) AccessCodeService {
	return &accessCodeServiceImpl{repos: repos, logger: logger}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate returns the project IDs the code opens, or nil when it is
// missing, inactive or exhausted.
func (s *accessCodeServiceImpl) Validate(ctx context.Context, code string) ([]int64, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, nil
	}
	ac, err := s.repos.AccessCodes.GetByCode(ctx, code)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, internal("get access code", err)
	}
	if !ac.GrantsAccess() {
		return nil, nil
	}
	return ac.AccessTo, nil
}

// IncrementUsage consumes one use. It reports false for an invalid or
// exhausted code.
func (s *accessCodeServiceImpl) IncrementUsage(ctx context.Context, code string) (bool, error) {
	code = normalizeCode(code)
	if code == "" {
		return false, nil
	}
	_, ok, err := s.repos.AccessCodes.IncrementUsage(ctx, code)
	if err != nil {
		return false, internal("increment access code usage", err)
	}
	return ok, nil
}

func (s *accessCodeServiceImpl) projects(ctx context.Context, ids []int64) ([]*models.Project, error) {
	projects, err := s.repos.Projects.ListByIDs(ctx, ids)
	if err != nil {
		return nil, internal("list projects", err)
	}
	return projects, nil
}

// Preview lists what a code opens without consuming a use.
func (s *accessCodeServiceImpl) Preview(ctx context.Context, code string) ([]*models.Project, error) {
	ids, err := s.Validate(ctx, code)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		metrics.AccessCodeRedemptions.WithLabelValues("rejected").Inc()
		return nil, errInvalidAccessCode
	}
	return s.projects(ctx, ids)
}

// Redeem consumes one use and returns the projects the code opens.
func (s *accessCodeServiceImpl) Redeem(ctx context.Context, code string) ([]*models.Project, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, apperrors.NewValidationError("code is required")
	}
	ids, ok, err := s.repos.AccessCodes.IncrementUsage(ctx, code)
	if err != nil {
		return nil, internal("redeem access code", err)
	}
	if !ok {
		metrics.AccessCodeRedemptions.WithLabelValues("rejected").Inc()
		return nil, errInvalidAccessCode
	}
	metrics.AccessCodeRedemptions.WithLabelValues("redeemed").Inc()
	return s.projects(ctx, ids)
}

func (s *accessCodeServiceImpl) CreateAccessCode(ctx context.Context, principal auth.Principal, req *dto.CreateAccessCodeRequest) (*models.AccessCode, error) {
	if len(req.AccessTo) == 0 {
		return nil, apperrors.NewValidationError("accessTo must name at least one project")
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		return nil, apperrors.NewValidationError("maxUses must be at least 1")
	}
	projects, err := s.repos.Projects.ListByIDs(ctx, req.AccessTo)
	if err != nil {
		return nil, internal("list projects", err)
	}
	if len(projects) != len(uniqueIDs(req.AccessTo)) {
		return nil, apperrors.NewValidationError("accessTo names a project that does not exist")
	}

	code := normalizeCode(req.Code)
	generated := code == ""
	if generated {
		if code, err = helpers.RandomBase36(8); err != nil {
			return nil, internal("generate access code", err)
		}
	}
	createdBy := principal.ID
	ac := &models.AccessCode{
		Code:      code,
		AccessTo:  uniqueIDs(req.AccessTo),
		IsActive:  true,
		MaxUses:   req.MaxUses,
		CreatedBy: &createdBy,
	}
	if err := s.repos.AccessCodes.Create(ctx, ac); err != nil {
		if errors.Is(err, repositories.ErrAccessCodeTaken) {
			return nil, apperrors.NewDuplicateError("access code " + code + " already exists")
		}
		return nil, internal("create access code", err)
	}
	s.logger.Info().Str("code", ac.Code).Bool("generated", generated).Msg("Access code created")
	return ac, nil
}

func (s *accessCodeServiceImpl) DeactivateAccessCode(ctx context.Context, code string) error {
	code = normalizeCode(code)
	changed, err := s.repos.AccessCodes.SetActive(ctx, code, false)
	if err != nil {
		return internal("deactivate access code", err)
	}
	if !changed {
		return apperrors.NewResourceNotFoundError("access code not found")
	}
	s.logger.Info().Str("code", code).Msg("Access code deactivated")
	return nil
}

func (s *accessCodeServiceImpl) CreateProject(ctx context.Context, req *dto.CreateProjectRequest) (*models.Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	p := &models.Project{Title: title, Summary: strings.TrimSpace(req.Summary), URL: req.URL}
	if err := s.repos.Projects.Create(ctx, p); err != nil {
		return nil, internal("create project", err)
	}
	return p, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
