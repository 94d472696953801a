package pipeline

import (
	"time"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"
	"photo-restorer/internal/pipeline/stages"
	"photo-restorer/internal/processing/chain"
	"photo-restorer/internal/processing/filters"

	"github.com/pkg/errors"
)

// Orchestrator runs the restoration stages in their fixed order. It holds no
// per-invocation state and may be shared between goroutines.
type Orchestrator struct {
	loader    *stages.Loader
	saver     *stages.Saver
	corrector *filters.ColorCorrector
	chain     *chain.ProcessingChain
	full      models.RestoreConfig
	logger    logger.Logger
}

type Option func(*Orchestrator)

// WithFullTuning adjusts the parameters RestoreFull runs with. Every stage
// still runs, in order, with an automatic mask unless one is passed.
func WithFullTuning(t models.FullTuning) Option {
	return func(o *Orchestrator) {
		o.full = t.Apply()
	}
}

func NewOrchestrator(loader *stages.Loader, saver *stages.Saver, corrector *filters.ColorCorrector, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		loader:    loader,
		saver:     saver,
		corrector: corrector,
		full:      models.FullRestoreConfig(),
		logger:    log,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.chain = chain.NewProcessingChain([]chain.ProcessingStep{
		filters.NewRepairStep(),
		filters.NewDenoiseStep(),
		filters.NewColorStep(corrector),
		filters.NewContrastStep(),
		filters.NewSharpenStep(),
	})

	o.logger.Debug("Orchestrator", "pipeline assembled", map[string]interface{}{
		"stages":           o.chain.GetStepNames(),
		"color_correction": corrector.Available(),
	})

	return o
}

func (o *Orchestrator) Loader() *stages.Loader {
	return o.loader
}

func (o *Orchestrator) Saver() *stages.Saver {
	return o.saver
}

func (o *Orchestrator) Corrector() *filters.ColorCorrector {
	return o.corrector
}

// RestoreFull loads sourcePath, runs every stage with an automatic blemish
// mask and writes the result to destPath. A failed write is reported in
// Result.Persist and does not fail the call.
func (o *Orchestrator) RestoreFull(sourcePath, destPath string) (*models.RestorationResult, error) {
	return o.restoreFile(sourcePath, "", destPath)
}

// RestoreFullMasked is RestoreFull with an explicit blemish mask.
func (o *Orchestrator) RestoreFullMasked(sourcePath, maskPath, destPath string) (*models.RestorationResult, error) {
	if maskPath == "" {
		return nil, errors.Wrap(models.ErrImageLoad, "mask path is empty")
	}
	return o.restoreFile(sourcePath, maskPath, destPath)
}

// RestoreCustom runs the enabled stages of cfg over image and returns a new
// buffer. image is left untouched and nothing is persisted.
func (o *Orchestrator) RestoreCustom(image *safe.Mat, cfg models.RestoreConfig) (*safe.Mat, error) {
	out, _, err := o.run(image, cfg)
	return out, err
}

// RestoreCustomTimed is RestoreCustom that also reports per-stage timings.
func (o *Orchestrator) RestoreCustomTimed(image *safe.Mat, cfg models.RestoreConfig) (*models.RestorationResult, error) {
	start := time.Now()
	out, timer, err := o.run(image, cfg)
	if err != nil {
		return nil, err
	}
	return &models.RestorationResult{
		Image:  out,
		Stages: timer.stages,
		Total:  time.Since(start),
	}, nil
}

func (o *Orchestrator) restoreFile(sourcePath, maskPath, destPath string) (*models.RestorationResult, error) {
	start := time.Now()

	source, err := o.loader.LoadFile(sourcePath)
	if err != nil {
		o.logger.Error("Orchestrator", err, map[string]interface{}{"source": sourcePath})
		return nil, err
	}
	defer source.Release()

	cfg := o.full
	if maskPath != "" {
		cfg.Repair.MaskPath = maskPath
	}

	restored, timer, err := o.run(source.Mat, cfg)
	if err != nil {
		o.logger.Error("Orchestrator", err, map[string]interface{}{"source": sourcePath})
		return nil, err
	}

	result := &models.RestorationResult{
		Image:  restored,
		Stages: timer.stages,
	}

	if destPath != "" {
		result.Persist.Path = destPath
		n, err := o.saver.SaveFile(restored, destPath)
		if err != nil {
			result.Persist.Err = err
			o.logger.Warning("Orchestrator", "restored image could not be saved", map[string]interface{}{
				"dest":  destPath,
				"error": err.Error(),
			})
		} else {
			result.Persist.Saved = true
			result.Persist.Bytes = n
		}
	}

	result.Total = time.Since(start)

	o.logger.Info("Orchestrator", "restoration complete", map[string]interface{}{
		"source":   sourcePath,
		"dest":     destPath,
		"saved":    result.Persist.Saved,
		"width":    restored.Cols(),
		"height":   restored.Rows(),
		"total_ms": result.Total.Milliseconds(),
	})

	return result, nil
}

// run fills and validates cfg, resolves a mask path into a mask and threads image
// through the chain.
func (o *Orchestrator) run(image *safe.Mat, cfg models.RestoreConfig) (*safe.Mat, *stageTimer, error) {
	if err := safe.ValidateColorImage(image, "restore"); err != nil {
		return nil, nil, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if cfg.Repair.Enabled && cfg.Repair.Mask == nil && cfg.Repair.MaskPath != "" {
		mask, err := o.loader.LoadMask(cfg.Repair.MaskPath)
		if err != nil {
			return nil, nil, err
		}
		defer mask.Close()
		if !mask.SameSize(image) {
			return nil, nil, errors.Wrapf(models.ErrMaskMismatch, "mask %dx%d, image %dx%d",
				mask.Cols(), mask.Rows(), image.Cols(), image.Rows())
		}
		cfg.Repair.Mask = mask
	}

	if cfg.ColorCorrect.Enabled && !o.corrector.Available() {
		o.logger.Debug("Orchestrator", "color correction passes through", map[string]interface{}{
			"reason": models.ErrCapabilityUnavailable.Error(),
		})
	}

	timer := newStageTimer()
	out, err := o.chain.Execute(image, cfg, timer.observe)
	if err != nil {
		return nil, nil, err
	}

	o.logger.Debug("Orchestrator", "stages executed", timer.fields())

	return out, timer, nil
}
