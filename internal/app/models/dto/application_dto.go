package dto

import (
	"time"

	"github.com/acesped/portal/internal/app/models"
)

// SubmitApplicationRequest is the public intake form.
type SubmitApplicationRequest struct {
	FirstName            string  `json:"firstName" binding:"required,max=100"`
	LastName             string  `json:"lastName" binding:"max=100"`
	Email                string  `json:"email" binding:"required,email"`
	Phone                *string `json:"phone" binding:"omitempty,max=30"`
	Gender               *string `json:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	Nationality          *string `json:"nationality" binding:"omitempty,max=100"`
	HighestQualification *string `json:"highestQualification" binding:"omitempty,max=200"`
	ProgramID            *int64  `json:"programId" binding:"omitempty,min=1"`
	AdmissionSession     string  `json:"admissionSession" binding:"required,academic_session"`
}

type SubmitApplicationResponse struct {
	ApplicationNumber string                   `json:"applicationNumber"`
	Status            models.ApplicationStatus `json:"status"`
}

// ApplicationStatusQuery is the public status lookup. Both fields must match.
type ApplicationStatusQuery struct {
	ApplicationNumber string `form:"applicationNumber" binding:"required"`
	Email             string `form:"email" binding:"required,email"`
}

type ApplicationStatusResponse struct {
	ApplicationNumber string                   `json:"applicationNumber"`
	AdmissionSession  string                   `json:"admissionSession"`
	Status            models.ApplicationStatus `json:"status"`
	StatusUpdatedAt   *time.Time               `json:"statusUpdatedAt,omitempty"`
}

// ApplicationFilter narrows the staff listing.
type ApplicationFilter struct {
	Status           models.ApplicationStatus
	AdmissionSession string
	Page             int
	Size             int
}

type ApplicationListResponse struct {
	Applications []*models.Application `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// RecordExerciseRequest carries the scored components, e.g.
// {"interview": 30, "written": 45}.
type RecordExerciseRequest struct {
	Components map[string]float64 `json:"components" binding:"required,min=1"`
}

type SetApplicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type InterviewInvitationRequest struct {
	Venue string `json:"venue" binding:"max=200"`
}

type InterviewInvitationResponse struct {
	ApplicationNumber string    `json:"applicationNumber"`
	InterviewDate     time.Time `json:"interviewDate"`
}
