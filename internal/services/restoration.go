package services

import (
	"context"
	"os"
	"path/filepath"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/pipeline"
	"photo-restorer/internal/pipeline/stages"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RestoredImage is an encoded restoration ready to hand to a client.
type RestoredImage struct {
	Data        []byte
	Format      string
	ContentType string
	Width       int
	Height      int
	Persisted   bool
	Stages      []models.StageTiming
}

// RestorationService adapts the orchestrator to callers holding paths or
// encoded bytes and keeps heavy work off their goroutines.
type RestorationService struct {
	orchestrator *pipeline.Orchestrator
	workers      *workerPool
	tempDir      string
	logger       logger.Logger
}

func NewRestorationService(orchestrator *pipeline.Orchestrator, workers int, tempDir string, log logger.Logger) *RestorationService {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &RestorationService{
		orchestrator: orchestrator,
		workers:      newWorkerPool(workers),
		tempDir:      tempDir,
		logger:       log,
	}
}

// ColorCorrectionAvailable reports whether CorrectColor does real work in
// this build.
func (s *RestorationService) ColorCorrectionAvailable() bool {
	return s.orchestrator.Corrector().Available()
}

// Workers is the number of restorations that may run at once.
func (s *RestorationService) Workers() int {
	return int(s.workers.size)
}

// RestoreFile runs the full pipeline from source to dest on a worker.
func (s *RestorationService) RestoreFile(ctx context.Context, source, dest string) (*models.RestorationResult, error) {
	return offload(ctx, s.workers, func() (*models.RestorationResult, error) {
		return s.orchestrator.RestoreFull(source, dest)
	}, releaseResult)
}

// RestoreBytes stages data (and maskData, when non-empty) in temporary files,
// runs the full pipeline and returns the JPEG result. When writing the result
// fails the in-memory image is encoded instead.
func (s *RestorationService) RestoreBytes(ctx context.Context, data, maskData []byte) (*RestoredImage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(data) == 0 {
		return nil, errors.Wrap(models.ErrImageLoad, "empty upload")
	}

	return offload(ctx, s.workers, func() (*RestoredImage, error) {
		// Temporary files belong to the job, not the caller.
		id := uuid.New().String()
		inPath := filepath.Join(s.tempDir, "upload_"+id)
		outPath := filepath.Join(s.tempDir, "restored_"+id+".jpeg")

		if err := os.WriteFile(inPath, data, 0o600); err != nil {
			return nil, errors.Wrap(err, "stage upload")
		}
		defer s.remove(inPath)
		defer s.remove(outPath)

		var (
			result *models.RestorationResult
			err    error
		)
		if len(maskData) > 0 {
			maskPath := filepath.Join(s.tempDir, "mask_"+id)
			if err := os.WriteFile(maskPath, maskData, 0o600); err != nil {
				return nil, errors.Wrap(err, "stage mask")
			}
			defer s.remove(maskPath)
			result, err = s.orchestrator.RestoreFullMasked(inPath, maskPath, outPath)
		} else {
			result, err = s.orchestrator.RestoreFull(inPath, outPath)
		}
		if err != nil {
			return nil, err
		}
		defer result.Release()

		restored := &RestoredImage{
			Format:      "jpeg",
			ContentType: stages.ContentType("jpeg"),
			Width:       result.Image.Cols(),
			Height:      result.Image.Rows(),
			Persisted:   result.Persist.Saved,
			Stages:      result.Stages,
		}

		if result.Persist.Saved {
			restored.Data, err = os.ReadFile(outPath)
			if err == nil {
				return restored, nil
			}
			s.logger.Warning("RestorationService", "restored file unreadable, encoding from memory", map[string]interface{}{
				"path":  outPath,
				"error": err.Error(),
			})
		}

		restored.Data, err = s.orchestrator.Saver().Encode(result.Image, "jpeg")
		if err != nil {
			return nil, errors.Wrapf(models.ErrImagePersist, "encode: %v", err)
		}
		return restored, nil
	}, nil)
}

// RestoreCustomBytes decodes data, runs the enabled stages of cfg and encodes
// the result in format. An empty format keeps the source format when it can
// be written and falls back to JPEG.
func (s *RestorationService) RestoreCustomBytes(ctx context.Context, data []byte, cfg models.RestoreConfig, format string) (*RestoredImage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return offload(ctx, s.workers, func() (*RestoredImage, error) {
		source, err := s.orchestrator.Loader().LoadBytes(data, "")
		if err != nil {
			return nil, err
		}
		defer source.Release()

		result, err := s.orchestrator.RestoreCustomTimed(source.Mat, cfg)
		if err != nil {
			return nil, err
		}
		defer result.Release()

		outFormat := format
		if outFormat == "" {
			outFormat = writableFormat(source.Format)
		}

		encoded, err := s.orchestrator.Saver().Encode(result.Image, outFormat)
		if err != nil {
			return nil, errors.Wrapf(models.ErrImagePersist, "encode %s: %v", outFormat, err)
		}

		return &RestoredImage{
			Data:        encoded,
			Format:      outFormat,
			ContentType: stages.ContentType(outFormat),
			Width:       result.Image.Cols(),
			Height:      result.Image.Rows(),
			Stages:      result.Stages,
		}, nil
	}, nil)
}

// NewSession opens an interactive session backed by this service's
// orchestrator.
func (s *RestorationService) NewSession() *Session {
	return NewSession(s.orchestrator, s.logger)
}

func (s *RestorationService) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warning("RestorationService", "temporary file not removed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

func releaseResult(r *models.RestorationResult) {
	r.Release()
}

func writableFormat(format string) string {
	switch format {
	case "png", "bmp", "tiff", "webp", "jpeg":
		return format
	default:
		return "jpeg"
	}
}
