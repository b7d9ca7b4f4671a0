package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidExecContext  = errors.New("invalid executor context")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
	ErrPassInProgress      = errors.New("a pass is already in progress")
	ErrUnsupportedType     = errors.New("unsupported content type for dispatch")
	ErrMissingSourceImages = errors.New("schedule has no source images configured")
	ErrMissingBucketSets   = errors.New("schedule bucket settings select no images")
)
