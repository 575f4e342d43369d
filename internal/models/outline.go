package models

import "time"

// Lecturer is one teaching contact listed in a course outline.
type Lecturer struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Assessment pairs an assessment method with its weighting in percent.
type Assessment struct {
	Method    string  `json:"method" bson:"method"`
	Weighting float64 `json:"weighting" bson:"weighting"`
}

// Textbook describes the module's recommended text.
type Textbook struct {
	Title     string   `json:"title" bson:"title"`
	Edition   string   `json:"edition" bson:"edition"`
	Authors   []string `json:"authors" bson:"authors"`
	Publisher string   `json:"publisher" bson:"publisher"`
	Year      string   `json:"year" bson:"year"`
}

// ExtractionResult is the structured data derived from a course outline PDF.
// A module has at most one; every successful upload overwrites it.
type ExtractionResult struct {
	Summary          string       `json:"summary" bson:"summary"`
	Lecturers        []Lecturer   `json:"lecturers" bson:"lecturers"`
	Topics           []string     `json:"topics" bson:"topics"`
	Assessments      []Assessment `json:"assessments" bson:"assessments"`
	LearningOutcomes []string     `json:"learningOutcomes" bson:"learning_outcomes"`
	Textbook         *Textbook    `json:"textbook,omitempty" bson:"textbook,omitempty"`
}

// OutlineRecord is the stored extraction result of a module.
type OutlineRecord struct {
	ModuleID  string           `json:"moduleId" bson:"module_id"`
	Result    ExtractionResult `json:"outline" bson:"content"`
	UpdatedAt time.Time        `json:"updatedAt" bson:"updated_at"`
}
