package models

import "time"

// Module is a course unit keyed by its human-assigned code (e.g. CS101).
type Module struct {
	ID        string    `db:"id" bson:"id" json:"id"`
	Name      string    `db:"name" bson:"name" json:"name"`
	Year      string    `db:"year" bson:"year" json:"year"`
	Term      string    `db:"term" bson:"term" json:"term"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"createdAt"`
}

// ModuleFilter captures supported filters for listing modules.
type ModuleFilter struct {
	Year   string
	Term   string
	Search string
}

// TermOption is one "{year} {term}" choice offered by the module filter.
type TermOption struct {
	Year  string `db:"year" bson:"year" json:"year"`
	Term  string `db:"term" bson:"term" json:"term"`
	Label string `db:"-" bson:"-" json:"label"`
}
