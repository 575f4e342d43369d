package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when no object is stored under a key. A
// missing slide deck is a normal state, so callers branch on it.
var ErrObjectNotFound = errors.New("object not found")

// SlideStore keeps uploaded slide decks and hands out time-limited links to them.
type SlideStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Link(ctx context.Context, key string) (string, time.Time, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_\-. ]`)

// SanitizeSegment replaces anything outside letters, digits, underscore,
// hyphen, dot and space with an underscore. Dot-only segments are replaced
// so a key can never climb out of its module prefix.
func SanitizeSegment(raw string) string {
	cleaned := unsafeKeyChars.ReplaceAllString(raw, "_")
	if strings.Trim(cleaned, ".") == "" {
		return strings.Repeat("_", len(cleaned)+1)
	}
	return cleaned
}

// SlideKey returns the object key for a topic's slide deck.
func SlideKey(moduleID, topic string) string {
	return ModulePrefix(moduleID) + SanitizeSegment(topic) + ".pdf"
}

// ModulePrefix returns the key prefix shared by every deck of a module.
func ModulePrefix(moduleID string) string {
	return SanitizeSegment(moduleID) + "/"
}
