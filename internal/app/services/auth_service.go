package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

var errBadCredentials = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid credentials")

// AuthService signs staff and students in and creates staff accounts.
type AuthService interface {
	StaffLogin(ctx context.Context, req *dto.StaffLoginRequest) (*dto.AuthResponse, error)
	StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.AuthResponse, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
}

type authServiceImpl struct {
	repos      *repositories.Repositories
	jwtService *auth.JWTService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(repos *repositories.Repositories, jwtService *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authServiceImpl{repos: repos, jwtService: jwtService, logger: logger, now: time.Now}
}

// ToPrincipalResponse renders a principal for /auth/me and login replies.
func ToPrincipalResponse(p auth.Principal) dto.PrincipalResponse {
	return dto.PrincipalResponse{ID: p.ID, Kind: string(p.Kind), Role: p.Role, Email: p.Email}
}

func (s *authServiceImpl) issue(p auth.Principal) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(p)
	if err != nil {
		return nil, internal("generate token", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		Principal: ToPrincipalResponse(p),
	}, nil
}

// StaffLogin authenticates a users row by email and password.
func (s *authServiceImpl) StaffLogin(ctx context.Context, req *dto.StaffLoginRequest) (*dto.AuthResponse, error) {
	addr := helpers.NormalizeEmail(req.Email)
	if addr == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	user, err := s.repos.Users.GetByEmail(ctx, addr)
	if err != nil {
		if isNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, internal("get user", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "this account has been disabled")
	}

	if err := s.repos.Users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("Staff signed in")
	return s.issue(auth.Principal{ID: user.ID, Kind: auth.KindStaff, Role: user.Role, Email: user.Email})
}

// StudentLogin authenticates a student by matric number and password.
// Suspended and withdrawn students are refused.
func (s *authServiceImpl) StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.AuthResponse, error) {
	matric := strings.ToUpper(strings.TrimSpace(req.MatricNumber))
	if matric == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("matricNumber and password are required")
	}

	student, err := s.repos.Students.GetByMatricNumber(ctx, matric)
	if err != nil {
		if isNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, internal("get student", err)
	}
	if !auth.CheckPassword(student.Password, req.Password) {
		return nil, errBadCredentials
	}
	switch student.Status {
	case models.StudentSuspended, models.StudentWithdrawn:
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "this account has been disabled")
	case models.StudentActive, models.StudentGraduated:
	}

	s.logger.Info().Int64("studentID", student.ID).Msg("Student signed in")
	return s.issue(auth.Principal{ID: student.ID, Kind: auth.KindStudent, Role: models.RoleStudent, Email: student.Email})
}

// CreateUser adds a staff account.
func (s *authServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil || !role.IsStaff() {
		return nil, apperrors.NewValidationError("role must be a staff role")
	}
	addr := helpers.NormalizeEmail(req.Email)
	if addr == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters long")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	user := &models.User{
		Email:     addr,
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
		IsActive:  true,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, apperrors.NewDuplicateError("a user with this email already exists")
		}
		return nil, internal("create user", err)
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("Staff user created")
	return user, nil
}
