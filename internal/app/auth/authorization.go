package auth

import (
	"context"
	"errors"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/logger"
)

// rolePermissions is the single role → permission table. Roles absent from a
// permission's list never get it, whatever the route says.
var rolePermissions = map[models.Role][]models.Permission{
	models.RoleSuperAdmin: {
		models.PermApplicationReview,
		models.PermApplicationDecide,
		models.PermStudentManage,
		models.PermStudentView,
		models.PermRegistrationManage,
		models.PermResultRecord,
		models.PermCatalogueManage,
		models.PermSettingsManage,
		models.PermAccessCodeManage,
		models.PermUsersManage,
	},
	models.RoleCenterLeader: {
		models.PermApplicationReview,
		models.PermApplicationDecide,
		models.PermStudentManage,
		models.PermStudentView,
		models.PermRegistrationManage,
		models.PermResultRecord,
		models.PermCatalogueManage,
		models.PermSettingsManage,
		models.PermAccessCodeManage,
		models.PermUsersManage,
	},
	models.RoleDeputyCenterLeader: {
		models.PermApplicationReview,
		models.PermApplicationDecide,
		models.PermStudentManage,
		models.PermStudentView,
		models.PermRegistrationManage,
		models.PermResultRecord,
		models.PermCatalogueManage,
		models.PermAccessCodeManage,
	},
	models.RoleAcademicProgramCoordinator: {
		models.PermApplicationReview,
		models.PermApplicationDecide,
		models.PermStudentManage,
		models.PermStudentView,
		models.PermRegistrationManage,
		models.PermResultRecord,
		models.PermCatalogueManage,
		models.PermSettingsManage,
	},
	models.RoleHeadOfProgram: {
		models.PermApplicationReview,
		models.PermStudentView,
		models.PermRegistrationManage,
		models.PermResultRecord,
	},
	models.RoleLecturer: {
		models.PermStudentView,
		models.PermResultRecord,
	},
	models.RoleStudent: {},
}

// HasPermission reports whether role grants perm.
func HasPermission(role models.Role, perm models.Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsFor returns a copy of the permissions granted to role.
func PermissionsFor(role models.Role) []models.Permission {
	perms := rolePermissions[role]
	out := make([]models.Permission, len(perms))
	copy(out, perms)
	return out
}

// AuthorizationService answers the checks that need more than the role
// table: student self-service and lecturer course ownership.
type AuthorizationService struct {
	courseRepo repositories.ICourseRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(courseRepo repositories.ICourseRepository) *AuthorizationService {
	return &AuthorizationService{courseRepo: courseRepo}
}

// Require fails with a ForbiddenError unless the principal holds perm.
func (s *AuthorizationService) Require(p auth.Principal, perm models.Permission) error {
	if p.IsStudent() || !HasPermission(p.Role, perm) {
		return apperrors.NewForbiddenError("you don't have permission for this action")
	}
	return nil
}

// RequireSelfOr lets a student act on their own record and staff holding
// perm act on anyone's.
func (s *AuthorizationService) RequireSelfOr(p auth.Principal, studentID int64, perm models.Permission) error {
	if p.IsStudent() {
		if p.IsStudentID(studentID) {
			return nil
		}
		return apperrors.NewForbiddenError("students may only access their own records")
	}
	return s.Require(p, perm)
}

// CanRecordResult checks result:record and, for lecturers, that they teach
// the course.
func (s *AuthorizationService) CanRecordResult(ctx context.Context, p auth.Principal, courseID int64) error {
	if err := s.Require(p, models.PermResultRecord); err != nil {
		return err
	}
	if p.Role != models.RoleLecturer {
		return nil
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewResourceNotFoundError("course not found")
		}
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error getting course in CanRecordResult")
		return err
	}
	if !course.TaughtBy(p.ID) {
		return apperrors.NewForbiddenError("lecturers may only record results for courses they teach")
	}
	return nil
}
