package models

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrImageLoad: source or mask missing or undecodable.
	ErrImageLoad = errors.New("image load failed")
	// ErrMaskMismatch: mask dimensions differ from the image.
	ErrMaskMismatch = errors.New("mask dimensions do not match image")
	// ErrNotLoaded: a session primitive ran before any image was loaded.
	ErrNotLoaded = errors.New("no image loaded")
	// ErrImagePersist: encoding or writing the result failed. Never fatal.
	ErrImagePersist = errors.New("image persist failed")
	// ErrCapabilityUnavailable: optional color correction is not built in.
	// Only ever logged; CorrectColor passes its input through instead.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrHeightMismatch: side-by-side inputs differ in height or type.
	ErrHeightMismatch = errors.New("image heights do not match")
	ErrInvalidConfig  = errors.New("invalid restore configuration")
)

// StageError names the pipeline stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage name carried by err, if any.
func FailedStage(err error) (string, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
