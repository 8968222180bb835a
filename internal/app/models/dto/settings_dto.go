package dto

// UpdateAcademicSessionRequest sets the active session. When ExpectedVersion
// is present the write only succeeds against that version.
type UpdateAcademicSessionRequest struct {
	Session         string `json:"session" binding:"required,academic_session"`
	Semester        string `json:"semester" binding:"required,semester"`
	ExpectedVersion *int64 `json:"expectedVersion" binding:"omitempty,min=0"`
}

type AdmissionSettingsResponse struct {
	MinApprovalScore float64 `json:"minApprovalScore"`
}
