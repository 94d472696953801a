package chain

import (
	"fmt"
	"time"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"
)

// ProcessingStep is one tagged stage descriptor of the restoration chain.
type ProcessingStep interface {
	Apply(input *safe.Mat, cfg models.RestoreConfig) (*safe.Mat, error)
	Name() string
	ShouldExecute(cfg models.RestoreConfig) bool
}

// StepObserver is told about every executed step.
type StepObserver func(step string, elapsed time.Duration)

type ProcessingChain struct {
	steps []ProcessingStep
}

func NewProcessingChain(steps []ProcessingStep) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

// Execute threads input through every enabled step in order and returns a new
// buffer; input itself is never modified or closed. The first failing step
// aborts the chain.
func (pc *ProcessingChain) Execute(input *safe.Mat, cfg models.RestoreConfig, observe StepObserver) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, "processing chain"); err != nil {
		return nil, err
	}

	current := input

	for _, step := range pc.steps {
		if !step.ShouldExecute(cfg) {
			continue
		}

		start := time.Now()
		result, err := step.Apply(current, cfg)
		if err != nil {
			if current != input {
				current.Close()
			}
			return nil, &models.StageError{Stage: step.Name(), Err: err}
		}
		if result == nil {
			if current != input {
				current.Close()
			}
			return nil, &models.StageError{Stage: step.Name(), Err: fmt.Errorf("step returned nil result")}
		}

		if observe != nil {
			observe(step.Name(), time.Since(start))
		}

		if current != input {
			current.Close()
		}
		current = result
	}

	if current == input {
		return input.Clone()
	}

	return current, nil
}

func (pc *ProcessingChain) GetStepNames() []string {
	names := make([]string, len(pc.steps))
	for i, step := range pc.steps {
		names[i] = step.Name()
	}
	return names
}
