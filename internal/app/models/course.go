package models

import "time"

// Program is an academic programme run under a service line.
type Program struct {
	ID              int64     `json:"id" db:"id"`
	Code            string    `json:"code" db:"code"`
	Name            string    `json:"name" db:"name"`
	Service         string    `json:"service" db:"service"`
	HeadOfProgramID *int64    `json:"headOfProgramId,omitempty" db:"head_of_program_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Course belongs to exactly one program. CreditHours weights it in GPA.
type Course struct {
	ID          int64     `json:"id" db:"id"`
	ProgramID   int64     `json:"programId" db:"program_id"`
	Code        string    `json:"code" db:"code"`
	Title       string    `json:"title" db:"title"`
	CreditHours int       `json:"creditHours" db:"credit_hours"`
	LecturerIDs []int64   `json:"lecturerIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// TaughtBy reports whether the lecturer is assigned to the course.
func (c *Course) TaughtBy(lecturerID int64) bool {
	for _, id := range c.LecturerIDs {
		if id == lecturerID {
			return true
		}
	}
	return false
}

// Registration is a student's enrolment in a course for one session and
// semester.
type Registration struct {
	ID               int64              `json:"id" db:"id"`
	StudentID        int64              `json:"studentId" db:"student_id"`
	CourseID         int64              `json:"courseId" db:"course_id"`
	Session          string             `json:"session" db:"session"`
	Semester         Semester           `json:"semester" db:"semester"`
	Status           RegistrationStatus `json:"status" db:"status"`
	Score            *float64           `json:"score,omitempty" db:"score"`
	Grade            *Grade             `json:"grade,omitempty" db:"grade"`
	ResultRecordedBy *int64             `json:"resultRecordedBy,omitempty" db:"result_recorded_by"`
	ResultRecordedAt *time.Time         `json:"resultRecordedAt,omitempty" db:"result_recorded_at"`
	CreatedAt        time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time          `json:"updatedAt" db:"updated_at"`
}

// GradedRegistration is a registration joined with its course's credit
// hours, the input to GPA computation.
type GradedRegistration struct {
	RegistrationID int64
	CourseID       int64
	Session        string
	Semester       Semester
	CreditHours    int
	Grade          *Grade
}
