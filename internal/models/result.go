package models

import (
	"time"

	"photo-restorer/internal/opencv/safe"
)

// PersistOutcome reports whether the result reached its destination.
type PersistOutcome struct {
	Saved bool
	Path  string
	Bytes int
	Err   error
}

// StageTiming is the wall time of one executed stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// RestorationResult is owned by the facade until handed to its caller, who
// must Release it.
type RestorationResult struct {
	Image   *safe.Mat
	Persist PersistOutcome
	Stages  []StageTiming
	Total   time.Duration
}

func (r *RestorationResult) Release() {
	if r == nil {
		return
	}
	r.Image.Close()
}
