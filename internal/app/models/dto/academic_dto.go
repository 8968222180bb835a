package dto

type CreateProgramRequest struct {
	Code            string `json:"code" binding:"required,max=20"`
	Name            string `json:"name" binding:"required,max=200"`
	Service         string `json:"service" binding:"required,max=100"`
	HeadOfProgramID *int64 `json:"headOfProgramId" binding:"omitempty,min=1"`
}

type CreateCourseRequest struct {
	ProgramID   int64  `json:"programId" binding:"required,min=1"`
	Code        string `json:"code" binding:"required,max=20"`
	Title       string `json:"title" binding:"required,max=200"`
	CreditHours int    `json:"creditHours" binding:"required,min=1,max=12"`
}

type AssignLecturerRequest struct {
	LecturerID int64 `json:"lecturerId" binding:"required,min=1"`
}
