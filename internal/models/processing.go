package models

import (
	"fmt"
	"strings"

	"photo-restorer/internal/opencv/safe"
)

// Stage names in their fixed execution order.
const (
	StageRepair       = "repair"
	StageDenoise      = "denoise"
	StageColorCorrect = "color_correct"
	StageContrast     = "contrast"
	StageSharpen      = "sharpen"
)

// StageOrder is the only order stages ever run in.
var StageOrder = []string{StageRepair, StageDenoise, StageColorCorrect, StageContrast, StageSharpen}

// DenoiseParams drives non-local-means denoising.
type DenoiseParams struct {
	H              float32 `yaml:"h" validate:"gt=0,lte=100"`
	HColor         float32 `yaml:"h_color" validate:"gt=0,lte=100"`
	TemplateWindow int     `yaml:"template_window" validate:"gte=3,lte=21"`
	SearchWindow   int     `yaml:"search_window" validate:"gte=3,lte=61"`
}

// Denoise presets: light is for chaining, strong for standalone passes.
var (
	DenoiseLight  = DenoiseParams{H: 3, HColor: 3, TemplateWindow: 7, SearchWindow: 21}
	DenoiseStrong = DenoiseParams{H: 10, HColor: 10, TemplateWindow: 7, SearchWindow: 21}
)

const (
	PresetLight  = "light"
	PresetStrong = "strong"
)

// DenoisePreset resolves a preset name.
func DenoisePreset(name string) (DenoiseParams, error) {
	switch strings.ToLower(name) {
	case "", PresetLight:
		return DenoiseLight, nil
	case PresetStrong:
		return DenoiseStrong, nil
	default:
		return DenoiseParams{}, fmt.Errorf("%w: unknown denoise preset %q", ErrInvalidConfig, name)
	}
}

// ContrastParams drives CLAHE on the luminance channel.
type ContrastParams struct {
	ClipLimit float64 `yaml:"clip_limit" validate:"gt=0,lte=40"`
	TileGrid  int     `yaml:"tile_grid" validate:"gte=1,lte=64"`
}

const DefaultTileGrid = 8

// Clip limits, lower is more conservative.
const (
	ClipLimitConservative = 2.0
	ClipLimitBalanced     = 2.5
	ClipLimitStrong       = 3.0
)

type SharpenMethod string

const (
	SharpenUnsharp SharpenMethod = "unsharp"
	SharpenKernel  SharpenMethod = "kernel"
)

// SharpenParams selects the sharpening variant. Amount and Sigma apply to unsharp only.
type SharpenParams struct {
	Method SharpenMethod `yaml:"method" validate:"oneof=unsharp kernel"`
	Amount float64       `yaml:"amount" validate:"gte=0,lte=10"`
	Sigma  float64       `yaml:"sigma" validate:"gte=0,lte=10"`
}

const (
	DefaultSharpenAmount = 1.2
	DefaultSharpenSigma  = 1.0
)

// RepairStage toggles blemish repair. With neither Mask nor MaskPath the
// mask is derived from the image. A caller-supplied Mask stays owned by the caller.
type RepairStage struct {
	Enabled  bool      `yaml:"enabled"`
	MaskPath string    `yaml:"mask_path"`
	Mask     *safe.Mat `yaml:"-" validate:"-"`
}

type DenoiseStage struct {
	Enabled bool           `yaml:"enabled"`
	Preset  string         `yaml:"preset" validate:"omitempty,oneof=light strong"`
	Params  *DenoiseParams `yaml:"params" validate:"omitempty"`
}

// Resolve returns the explicit params or the preset.
func (d DenoiseStage) Resolve() (DenoiseParams, error) {
	if d.Params != nil {
		return *d.Params, nil
	}
	return DenoisePreset(d.Preset)
}

type ColorStage struct {
	Enabled bool `yaml:"enabled"`
}

type ContrastStage struct {
	Enabled bool           `yaml:"enabled"`
	Params  ContrastParams `yaml:"params"`
}

type SharpenStage struct {
	Enabled bool          `yaml:"enabled"`
	Params  SharpenParams `yaml:"params"`
}

// RestoreConfig toggles each stage of the restoration pipeline. Stage order
// is fixed by StageOrder; the config cannot reorder stages.
type RestoreConfig struct {
	Repair       RepairStage   `yaml:"repair"`
	Denoise      DenoiseStage  `yaml:"denoise"`
	ColorCorrect ColorStage    `yaml:"color_correct"`
	Contrast     ContrastStage `yaml:"contrast"`
	Sharpen      SharpenStage  `yaml:"sharpen"`
}

// FullRestoreConfig is the fixed full restoration pipeline.
func FullRestoreConfig() RestoreConfig {
	return RestoreConfig{
		Repair:       RepairStage{Enabled: true},
		Denoise:      DenoiseStage{Enabled: true, Preset: PresetLight},
		ColorCorrect: ColorStage{Enabled: true},
		Contrast: ContrastStage{
			Enabled: true,
			Params:  ContrastParams{ClipLimit: ClipLimitConservative, TileGrid: DefaultTileGrid},
		},
		Sharpen: SharpenStage{
			Enabled: true,
			Params:  DefaultSharpenParams(),
		},
	}
}

// WithDefaults fills zero-valued stage parameters with the values the full
// pipeline uses. The zero RestoreConfig stays all-off.
func (c RestoreConfig) WithDefaults() RestoreConfig {
	if c.Contrast.Params.ClipLimit == 0 {
		c.Contrast.Params.ClipLimit = ClipLimitConservative
	}
	if c.Contrast.Params.TileGrid == 0 {
		c.Contrast.Params.TileGrid = DefaultTileGrid
	}
	switch {
	case c.Sharpen.Params == (SharpenParams{}):
		c.Sharpen.Params = DefaultSharpenParams()
	case c.Sharpen.Params.Method == "":
		c.Sharpen.Params.Method = SharpenUnsharp
	}
	return c
}

// FullTuning adjusts parameters of the full pipeline. Stage set, order,
// sharpen variant and the automatic repair mask stay fixed. Zero fields keep
// the defaults.
type FullTuning struct {
	ClipLimit     float64        `yaml:"clip_limit" validate:"gte=0,lte=40"`
	TileGrid      int            `yaml:"tile_grid" validate:"gte=0,lte=64"`
	SharpenAmount float64        `yaml:"sharpen_amount" validate:"gte=0,lte=10"`
	SharpenSigma  float64        `yaml:"sharpen_sigma" validate:"gte=0,lte=10"`
	Denoise       *DenoiseParams `yaml:"denoise" validate:"omitempty"`
}

// Apply returns FullRestoreConfig with t's overrides.
func (t FullTuning) Apply() RestoreConfig {
	cfg := FullRestoreConfig()
	if t.ClipLimit > 0 {
		cfg.Contrast.Params.ClipLimit = t.ClipLimit
	}
	if t.TileGrid > 0 {
		cfg.Contrast.Params.TileGrid = t.TileGrid
	}
	if t.SharpenAmount > 0 {
		cfg.Sharpen.Params.Amount = t.SharpenAmount
	}
	if t.SharpenSigma > 0 {
		cfg.Sharpen.Params.Sigma = t.SharpenSigma
	}
	if t.Denoise != nil {
		params := *t.Denoise
		cfg.Denoise.Params = &params
	}
	return cfg
}

// AllStagesOff keeps parameters valid but disables every stage.
func AllStagesOff() RestoreConfig {
	cfg := FullRestoreConfig()
	cfg.Repair.Enabled = false
	cfg.Denoise.Enabled = false
	cfg.ColorCorrect.Enabled = false
	cfg.Contrast.Enabled = false
	cfg.Sharpen.Enabled = false
	return cfg
}

func DefaultSharpenParams() SharpenParams {
	return SharpenParams{Method: SharpenUnsharp, Amount: DefaultSharpenAmount, Sigma: DefaultSharpenSigma}
}

func DefaultContrastParams() ContrastParams {
	return ContrastParams{ClipLimit: ClipLimitStrong, TileGrid: DefaultTileGrid}
}

// Enabled reports whether the named stage is switched on.
func (c RestoreConfig) Enabled(stage string) bool {
	switch stage {
	case StageRepair:
		return c.Repair.Enabled
	case StageDenoise:
		return c.Denoise.Enabled
	case StageColorCorrect:
		return c.ColorCorrect.Enabled
	case StageContrast:
		return c.Contrast.Enabled
	case StageSharpen:
		return c.Sharpen.Enabled
	default:
		return false
	}
}

// EnabledStages lists the enabled stages in execution order.
func (c RestoreConfig) EnabledStages() []string {
	stages := make([]string, 0, len(StageOrder))
	for _, name := range StageOrder {
		if c.Enabled(name) {
			stages = append(stages, name)
		}
	}
	return stages
}
