package models

import "time"

// Student is created exactly once from an approved application.
type Student struct {
	ID                    int64         `json:"id" db:"id"`
	ApplicationID         *int64        `json:"applicationId,omitempty" db:"application_id"`
	MatricNumber          string        `json:"matricNumber" db:"matric_number"`
	FirstName             string        `json:"firstName" db:"first_name"`
	LastName              string        `json:"lastName" db:"last_name"`
	Email                 string        `json:"email" db:"email"`
	Phone                 *string       `json:"phone,omitempty" db:"phone"`
	PersonalInfoConfirmed bool          `json:"personalInfoConfirmed" db:"personal_info_confirmed"`
	Password              string        `json:"-" db:"password"`
	Status                StudentStatus `json:"status" db:"status"`
	GraduatedAt           *time.Time    `json:"graduatedAt,omitempty" db:"graduated_at"`
	CreatedAt             time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time     `json:"updatedAt" db:"updated_at"`
}

// StudentProgramme links a student to a program.
type StudentProgramme struct {
	ID                 int64           `json:"id" db:"id"`
	StudentID          int64           `json:"studentId" db:"student_id"`
	ProgramID          int64           `json:"programId" db:"program_id"`
	Status             ProgrammeStatus `json:"status" db:"status"`
	SupervisorID       *int64          `json:"supervisorId,omitempty" db:"supervisor_id"`
	InternalExaminerID *int64          `json:"internalExaminerId,omitempty" db:"internal_examiner_id"`
	ExternalExaminerID *int64          `json:"externalExaminerId,omitempty" db:"external_examiner_id"`
	StartDate          time.Time       `json:"startDate" db:"start_date"`
	EndDate            *time.Time      `json:"endDate,omitempty" db:"end_date"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
}
