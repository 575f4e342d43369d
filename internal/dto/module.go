package dto

import "github.com/noah-isme/course-portal-api/internal/models"

// CreateModuleRequest is the POST /modules payload. LegacyID accepts the
// older "id" key some clients still send.
type CreateModuleRequest struct {
	ModuleID string `json:"moduleId"`
	LegacyID string `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Year     string `json:"year" validate:"required"`
	Term     string `json:"term" validate:"required"`
}

// ID resolves the module code from either key.
func (r CreateModuleRequest) ID() string {
	if r.ModuleID != "" {
		return r.ModuleID
	}
	return r.LegacyID
}

// ModuleListResponse wraps the module listing.
type ModuleListResponse struct {
	Modules []models.Module `json:"modules"`
}

// ModuleCreatedResponse acknowledges a created module.
type ModuleCreatedResponse struct {
	Message string        `json:"message"`
	Module  models.Module `json:"module"`
}

// TermOptionsResponse lists the "{year} {term}" filter choices.
type TermOptionsResponse struct {
	Terms []models.TermOption `json:"terms"`
}
