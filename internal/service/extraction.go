package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/course-portal-api/internal/models"
)

// errNotAnOutline marks a backend result that classified the document as
// something other than a course outline.
var errNotAnOutline = errors.New("document is not a course outline")

// wireOutline mirrors the backend's outline payload. Older backends send a
// single "lecturer" object and an "assessment" list.
type wireOutline struct {
	CourseOutline    string            `json:"course_outline"`
	Summary          string            `json:"summary"`
	Lecturers        []models.Lecturer `json:"lecturers"`
	Lecturer         *models.Lecturer  `json:"lecturer"`
	Topics           []string          `json:"topics"`
	Assessments      []wireAssessment  `json:"assessments"`
	Assessment       []wireAssessment  `json:"assessment"`
	LearningOutcomes []string          `json:"learning_outcomes"`
	Textbook         *wireTextbook     `json:"textbook"`
}

type wireAssessment struct {
	Method    string
	Weighting float64
}

// UnmarshalJSON accepts {method, weighting} objects, with weighting as a
// number or a "40%" string, and bare strings naming the method.
func (a *wireAssessment) UnmarshalJSON(data []byte) error {
	var method string
	if err := json.Unmarshal(data, &method); err == nil {
		a.Method = strings.TrimSpace(method)
		return nil
	}
	var raw struct {
		Method    string          `json:"method"`
		Type      string          `json:"type"`
		Weighting json.RawMessage `json:"weighting"`
		Weight    json.RawMessage `json:"weight"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("assessment: %w", err)
	}
	a.Method = strings.TrimSpace(firstNonEmpty(raw.Method, raw.Type))
	weighting := raw.Weighting
	if len(weighting) == 0 {
		weighting = raw.Weight
	}
	w, err := parseWeighting(weighting)
	if err != nil {
		return err
	}
	a.Weighting = w
	return nil
}

type wireTextbook struct {
	Title     string          `json:"title"`
	Edition   json.RawMessage `json:"edition"`
	Authors   json.RawMessage `json:"authors"`
	Publisher string          `json:"publisher"`
	Year      json.RawMessage `json:"year"`
}

func parseWeighting(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("weighting: %w", err)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("weighting %q: %w", s, err)
	}
	return n, nil
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// stringList accepts either a list of strings or one comma separated string.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return compact(list)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return compact(strings.Split(s, ","))
	}
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DecodeExtraction converts a successful backend outline body into the
// stored model. Documents the backend flagged as not being an outline
// return errNotAnOutline; malformed bodies return a decode error.
func DecodeExtraction(body []byte) (models.ExtractionResult, error) {
	var wire wireOutline
	if err := json.Unmarshal(body, &wire); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("decode outline: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(wire.CourseOutline), "no") {
		return models.ExtractionResult{}, errNotAnOutline
	}

	result := models.ExtractionResult{
		Summary:          strings.TrimSpace(wire.Summary),
		Lecturers:        make([]models.Lecturer, 0, len(wire.Lecturers)+1),
		Topics:           compact(wire.Topics),
		Assessments:      make([]models.Assessment, 0, len(wire.Assessments)+len(wire.Assessment)),
		LearningOutcomes: compact(wire.LearningOutcomes),
	}

	lecturers := wire.Lecturers
	if wire.Lecturer != nil {
		lecturers = append(lecturers, *wire.Lecturer)
	}
	for _, l := range lecturers {
		l.Name, l.Email = strings.TrimSpace(l.Name), strings.TrimSpace(l.Email)
		if l.Name == "" && l.Email == "" {
			continue
		}
		result.Lecturers = append(result.Lecturers, l)
	}

	for _, a := range append(wire.Assessments, wire.Assessment...) {
		if a.Method == "" {
			continue
		}
		result.Assessments = append(result.Assessments, models.Assessment{Method: a.Method, Weighting: a.Weighting})
	}

	if tb := wire.Textbook; tb != nil && strings.TrimSpace(tb.Title) != "" {
		result.Textbook = &models.Textbook{
			Title:     strings.TrimSpace(tb.Title),
			Edition:   scalarString(tb.Edition),
			Authors:   stringList(tb.Authors),
			Publisher: strings.TrimSpace(tb.Publisher),
			Year:      scalarString(tb.Year),
		}
	}

	if result.Summary == "" && len(result.Lecturers) == 0 && len(result.Topics) == 0 &&
		len(result.Assessments) == 0 && len(result.LearningOutcomes) == 0 && result.Textbook == nil {
		return models.ExtractionResult{}, fmt.Errorf("decode outline: no recognised fields")
	}
	return result, nil
}
