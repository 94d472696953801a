package models

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the parameters of enabled stages after zero values are
// replaced by defaults. Disabled stages are not inspected.
func (c RestoreConfig) Validate() error {
	c = c.WithDefaults()

	if c.Denoise.Enabled {
		if c.Denoise.Params != nil {
			if err := validateParams(*c.Denoise.Params); err != nil {
				return err
			}
		} else if _, err := DenoisePreset(c.Denoise.Preset); err != nil {
			return err
		}
	}
	if c.Contrast.Enabled {
		if err := validateParams(c.Contrast.Params); err != nil {
			return err
		}
	}
	if c.Sharpen.Enabled {
		if err := validateParams(c.Sharpen.Params); err != nil {
			return err
		}
	}

	return nil
}

func (t FullTuning) Validate() error {
	return validateParams(t)
}

func validateParams(params interface{}) error {
	if err := Validator().Struct(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
