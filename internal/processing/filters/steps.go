package filters

import (
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"
)

type RepairStep struct{}

func NewRepairStep() *RepairStep {
	return &RepairStep{}
}

func (s *RepairStep) Name() string {
	return models.StageRepair
}

func (s *RepairStep) ShouldExecute(cfg models.RestoreConfig) bool {
	return cfg.Repair.Enabled
}

// Apply uses cfg.Repair.Mask when set and an automatic mask otherwise.
func (s *RepairStep) Apply(input *safe.Mat, cfg models.RestoreConfig) (*safe.Mat, error) {
	return RepairBlemishes(input, cfg.Repair.Mask)
}

type DenoiseStep struct{}

func NewDenoiseStep() *DenoiseStep {
	return &DenoiseStep{}
}

func (s *DenoiseStep) Name() string {
	return models.StageDenoise
}

func (s *DenoiseStep) ShouldExecute(cfg models.RestoreConfig) bool {
	return cfg.Denoise.Enabled
}

func (s *DenoiseStep) Apply(input *safe.Mat, cfg models.RestoreConfig) (*safe.Mat, error) {
	params, err := cfg.Denoise.Resolve()
	if err != nil {
		return nil, err
	}
	return Denoise(input, params)
}

type ColorStep struct {
	corrector *ColorCorrector
}

func NewColorStep(corrector *ColorCorrector) *ColorStep {
	return &ColorStep{corrector: corrector}
}

func (s *ColorStep) Name() string {
	return models.StageColorCorrect
}

func (s *ColorStep) ShouldExecute(cfg models.RestoreConfig) bool {
	return cfg.ColorCorrect.Enabled
}

func (s *ColorStep) Apply(input *safe.Mat, _ models.RestoreConfig) (*safe.Mat, error) {
	return s.corrector.Apply(input)
}

type ContrastStep struct{}

func NewContrastStep() *ContrastStep {
	return &ContrastStep{}
}

func (s *ContrastStep) Name() string {
	return models.StageContrast
}

func (s *ContrastStep) ShouldExecute(cfg models.RestoreConfig) bool {
	return cfg.Contrast.Enabled
}

func (s *ContrastStep) Apply(input *safe.Mat, cfg models.RestoreConfig) (*safe.Mat, error) {
	return EnhanceContrast(input, cfg.Contrast.Params)
}

type SharpenStep struct{}

func NewSharpenStep() *SharpenStep {
	return &SharpenStep{}
}

func (s *SharpenStep) Name() string {
	return models.StageSharpen
}

func (s *SharpenStep) ShouldExecute(cfg models.RestoreConfig) bool {
	return cfg.Sharpen.Enabled
}

func (s *SharpenStep) Apply(input *safe.Mat, cfg models.RestoreConfig) (*safe.Mat, error) {
	return Sharpen(input, cfg.Sharpen.Params)
}
