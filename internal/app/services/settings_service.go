package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// SettingsService owns the active academic session and publishes the
// admission rules.
type SettingsService interface {
	// CurrentSession reports the active session, ok=false when none is set.
	CurrentSession(ctx context.Context) (session *models.AcademicSession, ok bool, err error)
	GetActiveSession(ctx context.Context) (*models.AcademicSession, error)
	UpdateActiveSession(ctx context.Context, principal auth.Principal, req *dto.UpdateAcademicSessionRequest) (*models.AcademicSession, error)
	AdmissionSettings() dto.AdmissionSettingsResponse
}

type settingsServiceImpl struct {
	repos  *repositories.Repositories
	config AdmissionConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewSettingsService creates a new settings service instance
func NewSettingsService(repos *repositories.Repositories, config AdmissionConfig, logger zerolog.Logger) SettingsService {
	return &settingsServiceImpl{repos: repos, config: config, logger: logger, now: time.Now}
}

type sessionValue struct {
	Session  string          `json:"session"`
	Semester models.Semester `json:"semester"`
}

func decodeSession(setting *models.SystemSetting) (*models.AcademicSession, error) {
	var v sessionValue
	if err := json.Unmarshal([]byte(setting.Value), &v); err != nil {
		return nil, err
	}
	return &models.AcademicSession{
		Session:   v.Session,
		Semester:  v.Semester,
		Version:   setting.Version,
		UpdatedAt: setting.UpdatedAt,
	}, nil
}

func (s *settingsServiceImpl) CurrentSession(ctx context.Context) (*models.AcademicSession, bool, error) {
	setting, err := s.repos.Settings.Get(ctx, models.ActiveSessionKey)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, internal("get active session", err)
	}
	session, err := decodeSession(setting)
	if err != nil {
		s.logger.Error().Err(err).Str("value", setting.Value).Msg("Stored academic session is unreadable")
		return nil, false, internal("decode active session", err)
	}
	return session, true, nil
}

func (s *settingsServiceImpl) GetActiveSession(ctx context.Context) (*models.AcademicSession, error) {
	session, ok, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("no active academic session has been set")
	}
	return session, nil
}

// UpdateActiveSession writes the session. With ExpectedVersion set, a write
// against a stale version is a ConflictError; without it the last write wins.
func (s *settingsServiceImpl) UpdateActiveSession(ctx context.Context, principal auth.Principal, req *dto.UpdateAcademicSessionRequest) (*models.AcademicSession, error) {
	if !validation.ValidAcademicSession(req.Session) {
		return nil, apperrors.NewValidationError("session must look like 2025/2026")
	}
	semester, err := models.ParseSemester(req.Semester)
	if err != nil {
		return nil, apperrors.NewValidationError("semester must be First or Second")
	}

	value, err := json.Marshal(sessionValue{Session: req.Session, Semester: semester})
	if err != nil {
		return nil, internal("encode active session", err)
	}
	var updatedBy *int64
	if !principal.IsStudent() && principal.ID > 0 {
		id := principal.ID
		updatedBy = &id
	}

	setting, err := s.repos.Settings.Put(ctx, models.ActiveSessionKey, string(value), req.ExpectedVersion, updatedBy, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrVersionMismatch) {
			return nil, apperrors.NewConflictError("the academic session was changed by someone else; reload and try again")
		}
		return nil, internal("save active session", err)
	}
	s.logger.Info().
		Str("session", req.Session).
		Str("semester", string(semester)).
		Int64("version", setting.Version).
		Msg("Active academic session updated")
	return decodeSession(setting)
}

func (s *settingsServiceImpl) AdmissionSettings() dto.AdmissionSettingsResponse {
	return dto.AdmissionSettingsResponse{MinApprovalScore: s.config.MinApprovalScore}
}
