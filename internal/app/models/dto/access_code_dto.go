package dto

import "github.com/acesped/portal/internal/app/models"

// CreateAccessCodeRequest creates a code. An empty Code is generated.
type CreateAccessCodeRequest struct {
	Code     string  `json:"code" binding:"omitempty,access_code"`
	AccessTo []int64 `json:"accessTo" binding:"required,min=1,dive,min=1"`
	MaxUses  *int    `json:"maxUses" binding:"omitempty,min=1"`
}

type RedeemAccessCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type ShowcaseResponse struct {
	Projects []*models.Project `json:"projects"`
}

type CreateProjectRequest struct {
	Title   string  `json:"title" binding:"required,max=200"`
	Summary string  `json:"summary" binding:"max=2000"`
	URL     *string `json:"url" binding:"omitempty,url"`
}
