// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrSourceUnavailable = errors.New("data source unavailable")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
	ErrSyncDisabled      = errors.New("snapshot sync disabled")
)
