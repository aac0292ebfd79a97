package model

import "github.com/Laisky/errors/v2"

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrTitleRequired indicates a create request without a title.
var ErrTitleRequired = errors.New("title is required")
