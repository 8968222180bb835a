package dto

import "time"

// Envelope is the success body: {"success": true, "message": ..., ...payload}.
// Payload keys are merged at the top level next to success and message.
type Envelope map[string]interface{}

// NewSuccessEnvelope merges payload into a success envelope. message may be
// empty, in which case it is omitted.
func NewSuccessEnvelope(message string, payload map[string]interface{}) Envelope {
	env := make(Envelope, len(payload)+2)
	for k, v := range payload {
		env[k] = v
	}
	env["success"] = true
	if message != "" {
		env["message"] = message
	}
	return env
}

// PaginationInfo describes one page of a listing.
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}
