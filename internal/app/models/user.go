package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the portal role carried by a principal.
type Role string

const (
	RoleSuperAdmin                 Role = "SUPER_ADMIN"
	RoleCenterLeader               Role = "CENTER_LEADER"
	RoleDeputyCenterLeader         Role = "DEPUTY_CENTER_LEADER"
	RoleAcademicProgramCoordinator Role = "ACADEMIC_PROGRAM_COORDINATOR"
	RoleHeadOfProgram              Role = "HEAD_OF_PROGRAM"
	RoleLecturer                   Role = "LECTURER"
	RoleStudent                    Role = "STUDENT"
)

// StaffRoles are the roles a users row may hold.
var StaffRoles = []Role{
	RoleSuperAdmin,
	RoleCenterLeader,
	RoleDeputyCenterLeader,
	RoleAcademicProgramCoordinator,
	RoleHeadOfProgram,
	RoleLecturer,
}

func (r Role) Valid() bool {
	return r == RoleStudent || r.IsStaff()
}

func (r Role) IsStaff() bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

func ParseRole(v string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(v)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", v)
	}
	return r, nil
}

// Permission names one guarded capability.
type Permission string

const (
	PermApplicationReview  Permission = "application:review"
	PermApplicationDecide  Permission = "application:decide"
	PermStudentManage      Permission = "student:manage"
	PermStudentView        Permission = "student:view"
	PermRegistrationManage Permission = "registration:manage"
	PermResultRecord       Permission = "result:record"
	PermCatalogueManage    Permission = "catalogue:manage"
	PermSettingsManage     Permission = "settings:manage"
	PermAccessCodeManage   Permission = "accesscode:manage"
	PermUsersManage        Permission = "users:manage"
)

// User is a staff account from the 'users' table. Lecturers are users with
// RoleLecturer.
type User struct {
	ID          int64      `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	Role        Role       `json:"role" db:"role"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
