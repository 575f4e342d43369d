package models

import "time"

// SlideReference is a time-limited link to a topic's slide deck. It is
// derived on each request and never stored.
type SlideReference struct {
	ModuleID  string    `json:"moduleId"`
	Topic     string    `json:"topic"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
