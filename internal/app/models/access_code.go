package models

import "time"

// AccessCode gates visibility of a set of showcase projects.
type AccessCode struct {
	ID         int64     `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	AccessTo   []int64   `json:"accessTo" db:"access_to"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	MaxUses    *int      `json:"maxUses,omitempty" db:"max_uses"`
	UsageCount int       `json:"usageCount" db:"usage_count"`
	CreatedBy  *int64    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// GrantsAccess reports whether the code is active and not exhausted.
func (a *AccessCode) GrantsAccess() bool {
	if !a.IsActive {
		return false
	}
	return a.MaxUses == nil || a.UsageCount < *a.MaxUses
}

// Project is a showcase entry.
type Project struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Summary   string    `json:"summary" db:"summary"`
	URL       *string   `json:"url,omitempty" db:"url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SystemSetting is a versioned key/value row.
type SystemSetting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	Version   int64     `json:"version" db:"version"`
	UpdatedBy *int64    `json:"updatedBy,omitempty" db:"updated_by"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ActiveSessionKey holds the process-wide academic session/semester pair.
const ActiveSessionKey = "active_academic_session"

// AcademicSession is the decoded value of the active session setting.
type AcademicSession struct {
	Session   string    `json:"session"`
	Semester  Semester  `json:"semester"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}
