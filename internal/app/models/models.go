package models

import (
	"fmt"
	"strings"
)

// ApplicationStatus is the admission decision state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a status a reviewer may set.
func (s ApplicationStatus) IsDecision() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// ParseApplicationStatus accepts any letter case.
func ParseApplicationStatus(v string) (ApplicationStatus, error) {
	s := ApplicationStatus(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown application status %q", v)
	}
	return s, nil
}

// StudentStatus is the enrolment state of a student.
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentGraduated StudentStatus = "GRADUATED"
	StudentWithdrawn StudentStatus = "WITHDRAWN"
	StudentSuspended StudentStatus = "SUSPENDED"
)

func (s StudentStatus) Valid() bool {
	switch s {
	case StudentActive, StudentGraduated, StudentWithdrawn, StudentSuspended:
		return true
	}
	return false
}

// ProgrammeStatus is the state of a student's enrolment in one program.
type ProgrammeStatus string

const (
	ProgrammeAdmitted   ProgrammeStatus = "ADMITTED"
	ProgrammeRegistered ProgrammeStatus = "REGISTERED"
	ProgrammeInProgress ProgrammeStatus = "IN_PROGRESS"
	ProgrammeCompleted  ProgrammeStatus = "COMPLETED"
	ProgrammeWithdrawn  ProgrammeStatus = "WITHDRAWN"
)

func (s ProgrammeStatus) Valid() bool {
	switch s {
	case ProgrammeAdmitted, ProgrammeRegistered, ProgrammeInProgress, ProgrammeCompleted, ProgrammeWithdrawn:
		return true
	}
	return false
}

// IsOpen reports whether the programme is still running and would be closed
// by graduation.
func (s ProgrammeStatus) IsOpen() bool {
	switch s {
	case ProgrammeAdmitted, ProgrammeRegistered, ProgrammeInProgress:
		return true
	case ProgrammeCompleted, ProgrammeWithdrawn:
		return false
	}
	return false
}

// OpenProgrammeStatuses lists the statuses graduation moves to COMPLETED.
var OpenProgrammeStatuses = []ProgrammeStatus{ProgrammeAdmitted, ProgrammeRegistered, ProgrammeInProgress}

// RegistrationStatus is the state of a course registration.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "REGISTERED"
	RegistrationWithdrawn  RegistrationStatus = "WITHDRAWN"
)

func (s RegistrationStatus) Valid() bool {
	return s == RegistrationRegistered || s == RegistrationWithdrawn
}

// Semester of an academic session.
type Semester string

const (
	SemesterFirst  Semester = "First"
	SemesterSecond Semester = "Second"
)

func (s Semester) Valid() bool {
	return s == SemesterFirst || s == SemesterSecond
}

// ParseSemester accepts "first"/"FIRST"/"First" and the same for Second.
func ParseSemester(v string) (Semester, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "first":
		return SemesterFirst, nil
	case "second":
		return SemesterSecond, nil
	}
	return "", fmt.Errorf("unknown semester %q", v)
}

// Grade is a letter grade on the five-point scale.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

// Points returns the grade point of g and false for anything off the scale.
func (g Grade) Points() (float64, bool) {
	switch g {
	case GradeA:
		return 5, true
	case GradeB:
		return 4, true
	case GradeC:
		return 3, true
	case GradeD:
		return 2, true
	case GradeE:
		return 1, true
	case GradeF:
		return 0, true
	}
	return 0, false
}

func (g Grade) Valid() bool {
	_, ok := g.Points()
	return ok
}

// ParseGrade upper-cases and trims v before checking it.
func ParseGrade(v string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(v)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown grade %q", v)
	}
	return g, nil
}

// GradeForScore maps a percentage score to its letter grade.
func GradeForScore(score float64) Grade {
	switch {
	case score >= 70:
		return GradeA
	case score >= 60:
		return GradeB
	case score >= 50:
		return GradeC
	case score >= 45:
		return GradeD
	case score >= 40:
		return GradeE
	default:
		return GradeF
	}
}
