package models

import "time"

// Application is a prospective student's admission application.
type Application struct {
	ID                    int64             `json:"id" db:"id"`
	ApplicationNumber     string            `json:"applicationNumber" db:"application_number"`
	FirstName             string            `json:"firstName" db:"first_name"`
	LastName              string            `json:"lastName" db:"last_name"`
	Email                 string            `json:"email" db:"email"`
	Phone                 *string           `json:"phone,omitempty" db:"phone"`
	Gender                *string           `json:"gender,omitempty" db:"gender"`
	Nationality           *string           `json:"nationality,omitempty" db:"nationality"`
	HighestQualification  *string           `json:"highestQualification,omitempty" db:"highest_qualification"`
	ProgramID             *int64            `json:"programId,omitempty" db:"program_id"`
	AdmissionSession      string            `json:"admissionSession" db:"admission_session"`
	Status                ApplicationStatus `json:"status" db:"status"`
	ReviewedBy            *int64            `json:"reviewedBy,omitempty" db:"reviewed_by"`
	StatusUpdatedAt       *time.Time        `json:"statusUpdatedAt,omitempty" db:"status_updated_at"`
	InterviewScheduledFor *time.Time        `json:"interviewScheduledFor,omitempty" db:"interview_scheduled_for"`
	CreatedAt             time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time         `json:"updatedAt" db:"updated_at"`
}

func (a *Application) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// AdmissionExercise holds the scored components of an applicant's interview
// or entrance exam.
type AdmissionExercise struct {
	ID                int64              `json:"id" db:"id"`
	ApplicationNumber string             `json:"applicationNumber" db:"application_number"`
	Components        map[string]float64 `json:"components" db:"components"`
	Total             float64            `json:"total" db:"total"`
	RecordedBy        *int64             `json:"recordedBy,omitempty" db:"recorded_by"`
	CreatedAt         time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" db:"updated_at"`
}

// SumComponents returns the total of all component scores.
func SumComponents(components map[string]float64) float64 {
	var total float64
	for _, v := range components {
		total += v
	}
	return total
}
