package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrSyncFailed is recorded on a job whose every attempt failed
	ErrSyncFailed = errors.New("warehouse sync failed")
)
