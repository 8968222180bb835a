package dto

import "github.com/acesped/portal/internal/app/models"

type ConvertToStudentResponse struct {
	Student   *models.Student          `json:"student"`
	Programme *models.StudentProgramme `json:"programme,omitempty"`
}

type GraduateResponse struct {
	Student             *models.Student `json:"student"`
	CompletedProgrammes int             `json:"completedProgrammes"`
}

// UpdatePersonalInfoRequest is the student's confirmation of their own
// details, replacing what was copied from the application.
type UpdatePersonalInfoRequest struct {
	FirstName string  `json:"firstName" binding:"required,max=100"`
	LastName  string  `json:"lastName" binding:"required,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
}

// RegisterCourseRequest registers a student for a course. Students omit
// StudentID; staff must supply it. Session and semester default to the
// active academic session.
type RegisterCourseRequest struct {
	StudentID int64  `json:"studentId" binding:"omitempty,min=1"`
	CourseID  int64  `json:"courseId" binding:"required,min=1"`
	Session   string `json:"session" binding:"omitempty,academic_session"`
	Semester  string `json:"semester" binding:"omitempty,semester"`
}

type RegistrationListResponse struct {
	Registrations []*models.Registration `json:"registrations"`
}

// RecordResultRequest stores a score and optional letter grade. An omitted
// grade is derived from the score.
type RecordResultRequest struct {
	Score *float64 `json:"score" binding:"required,gte=0,lte=100"`
	Grade string   `json:"grade" binding:"omitempty,grade"`
}

type CGPAResponse struct {
	StudentID int64   `json:"studentId"`
	CGPA      string  `json:"cgpa"`
	Session   string  `json:"session,omitempty"`
	Semester  string  `json:"semester,omitempty"`
	GPA       *string `json:"gpa,omitempty"`
}
