package dto

import (
	"time"

	"github.com/noah-isme/course-portal-api/internal/models"
)

// OutlineResponse is returned when a stored extraction result exists.
type OutlineResponse struct {
	ModuleID  string                  `json:"moduleId"`
	Outline   models.ExtractionResult `json:"outline"`
	UpdatedAt time.Time               `json:"updatedAt"`
}
