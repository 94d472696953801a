package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullRestoreConfigOrderAndDefaults(t *testing.T) {
	cfg := FullRestoreConfig()

	assert.Equal(t, StageOrder, cfg.EnabledStages())
	assert.Equal(t, ClipLimitConservative, cfg.Contrast.Params.ClipLimit)
	assert.Equal(t, DefaultTileGrid, cfg.Contrast.Params.TileGrid)
	assert.Equal(t, SharpenUnsharp, cfg.Sharpen.Params.Method)
	assert.Equal(t, DefaultSharpenAmount, cfg.Sharpen.Params.Amount)

	params, err := cfg.Denoise.Resolve()
	require.NoError(t, err)
	assert.Equal(t, DenoiseLight, params)
	require.NoError(t, cfg.Validate())
}

func TestAllStagesOff(t *testing.T) {
	cfg := AllStagesOff()

	assert.Empty(t, cfg.EnabledStages())
	require.NoError(t, cfg.Validate())
}

func TestEnabledStagesKeepsFixedOrder(t *testing.T) {
	cfg := AllStagesOff()
	cfg.Sharpen.Enabled = true
	cfg.Repair.Enabled = true
	cfg.Contrast.Enabled = true

	assert.Equal(t, []string{StageRepair, StageContrast, StageSharpen}, cfg.EnabledStages())
	assert.False(t, cfg.Enabled("unknown"))
}

func TestDenoisePreset(t *testing.T) {
	p, err := DenoisePreset("strong")
	require.NoError(t, err)
	assert.Equal(t, DenoiseStrong, p)

	p, err = DenoisePreset("")
	require.NoError(t, err)
	assert.Equal(t, DenoiseLight, p)

	_, err = DenoisePreset("extreme")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDenoiseStageExplicitParams(t *testing.T) {
	custom := DenoiseParams{H: 5, HColor: 6, TemplateWindow: 5, SearchWindow: 15}
	stage := DenoiseStage{Enabled: true, Preset: PresetStrong, Params: &custom}

	p, err := stage.Resolve()
	require.NoError(t, err)
	assert.Equal(t, custom, p)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := FullRestoreConfig()
	cfg.Contrast.Params.ClipLimit = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = FullRestoreConfig()
	cfg.Sharpen.Params.Method = "laplacian"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = FullRestoreConfig()
	cfg.Denoise.Preset = "extreme"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestValidateIgnoresDisabledStages(t *testing.T) {
	require.NoError(t, RestoreConfig{}.Validate())
	require.NoError(t, RestoreConfig{Repair: RepairStage{Enabled: true}}.Validate())

	cfg := AllStagesOff()
	cfg.Sharpen.Params.Method = "laplacian"
	cfg.Denoise.Preset = "extreme"
	assert.NoError(t, cfg.Validate())
}

func TestWithDefaultsFillsZeroParams(t *testing.T) {
	cfg := RestoreConfig{
		Contrast: ContrastStage{Enabled: true},
		Sharpen:  SharpenStage{Enabled: true},
	}
	require.NoError(t, cfg.Validate())

	filled := cfg.WithDefaults()
	assert.Equal(t, ClipLimitConservative, filled.Contrast.Params.ClipLimit)
	assert.Equal(t, DefaultTileGrid, filled.Contrast.Params.TileGrid)
	assert.Equal(t, DefaultSharpenParams(), filled.Sharpen.Params)
	assert.Equal(t, []string{StageContrast, StageSharpen}, filled.EnabledStages())

	partial := RestoreConfig{Sharpen: SharpenStage{Enabled: true, Params: SharpenParams{Amount: 2}}}.WithDefaults()
	assert.Equal(t, SharpenUnsharp, partial.Sharpen.Params.Method)
	assert.Equal(t, 2.0, partial.Sharpen.Params.Amount)
}

func TestFullTuningKeepsStagesFixed(t *testing.T) {
	custom := DenoiseParams{H: 5, HColor: 5, TemplateWindow: 7, SearchWindow: 21}
	cfg := FullTuning{ClipLimit: 3.5, SharpenAmount: 0.4, Denoise: &custom}.Apply()

	assert.Equal(t, StageOrder, cfg.EnabledStages())
	assert.Equal(t, 3.5, cfg.Contrast.Params.ClipLimit)
	assert.Equal(t, DefaultTileGrid, cfg.Contrast.Params.TileGrid)
	assert.Equal(t, SharpenUnsharp, cfg.Sharpen.Params.Method)
	assert.Equal(t, 0.4, cfg.Sharpen.Params.Amount)
	assert.Equal(t, DefaultSharpenSigma, cfg.Sharpen.Params.Sigma)
	assert.Empty(t, cfg.Repair.MaskPath)
	assert.Nil(t, cfg.Repair.Mask)
	require.NoError(t, cfg.Validate())

	params, err := cfg.Denoise.Resolve()
	require.NoError(t, err)
	assert.Equal(t, custom, params)

	assert.Equal(t, FullRestoreConfig(), FullTuning{}.Apply())
}

func TestFullTuningValidate(t *testing.T) {
	require.NoError(t, FullTuning{}.Validate())
	assert.ErrorIs(t, FullTuning{ClipLimit: 50}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, FullTuning{SharpenAmount: -1}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, FullTuning{Denoise: &DenoiseParams{}}.Validate(), ErrInvalidConfig)
}

func TestStageErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("restore: %w", &StageError{Stage: StageRepair, Err: ErrMaskMismatch})

	assert.True(t, errors.Is(err, ErrMaskMismatch))
	stage, ok := FailedStage(err)
	assert.True(t, ok)
	assert.Equal(t, StageRepair, stage)
	assert.Contains(t, err.Error(), "stage repair failed")

	_, ok = FailedStage(ErrImageLoad)
	assert.False(t, ok)
}
