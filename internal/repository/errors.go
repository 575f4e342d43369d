package repository

import "errors"

// Store sentinels shared by the Postgres and MongoDB implementations.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)
