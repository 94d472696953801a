package services

import (
	"sync"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"
	"photo-restorer/internal/pipeline"
	"photo-restorer/internal/processing/filters"

	"github.com/google/uuid"
)

// Session holds one loaded image for interactive, one-primitive-at-a-time
// use. Every primitive reads the loaded image and returns a new buffer owned
// by the caller; the loaded image only changes on Load. Sessions share
// nothing with each other.
type Session struct {
	mu           sync.Mutex
	id           string
	current      *models.ImageData
	orchestrator *pipeline.Orchestrator
	logger       logger.Logger
}

func NewSession(orchestrator *pipeline.Orchestrator, log logger.Logger) *Session {
	return &Session{
		id:           uuid.New().String(),
		orchestrator: orchestrator,
		logger:       log,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Load replaces the session image with the file at path. On failure the
// previous image stays loaded.
func (s *Session) Load(path string) error {
	data, err := s.orchestrator.Loader().LoadFile(path)
	if err != nil {
		return err
	}
	s.replace(data)
	return nil
}

func (s *Session) LoadBytes(data []byte, name string) error {
	imageData, err := s.orchestrator.Loader().LoadBytes(data, name)
	if err != nil {
		return err
	}
	s.replace(imageData)
	return nil
}

// Loaded reports whether an image is available, with its description.
func (s *Session) Loaded() (models.ImageData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.ImageData{}, false
	}
	return *s.current, true
}

// Original returns a copy of the loaded image.
func (s *Session) Original() (*safe.Mat, error) {
	return s.apply("original", func(img *safe.Mat) (*safe.Mat, error) {
		return img.Clone()
	})
}

func (s *Session) Denoise(params models.DenoiseParams) (*safe.Mat, error) {
	return s.apply(models.StageDenoise, func(img *safe.Mat) (*safe.Mat, error) {
		return filters.Denoise(img, params)
	})
}

func (s *Session) EnhanceContrast(params models.ContrastParams) (*safe.Mat, error) {
	return s.apply(models.StageContrast, func(img *safe.Mat) (*safe.Mat, error) {
		return filters.EnhanceContrast(img, params)
	})
}

func (s *Session) CorrectColor() (*safe.Mat, error) {
	return s.apply(models.StageColorCorrect, func(img *safe.Mat) (*safe.Mat, error) {
		return s.orchestrator.Corrector().Apply(img)
	})
}

func (s *Session) Sharpen(params models.SharpenParams) (*safe.Mat, error) {
	return s.apply(models.StageSharpen, func(img *safe.Mat) (*safe.Mat, error) {
		return filters.Sharpen(img, params)
	})
}

// RepairBlemishes inpaints the region marked by the mask at maskPath, or an
// automatically derived region when maskPath is empty.
func (s *Session) RepairBlemishes(maskPath string) (*safe.Mat, error) {
	return s.apply(models.StageRepair, func(img *safe.Mat) (*safe.Mat, error) {
		if maskPath == "" {
			return filters.RepairBlemishes(img, nil)
		}
		mask, err := s.orchestrator.Loader().LoadMask(maskPath)
		if err != nil {
			return nil, err
		}
		defer mask.Close()
		return filters.RepairBlemishes(img, mask)
	})
}

// RepairBlemishesBytes decodes an encoded mask and repairs with it.
func (s *Session) RepairBlemishesBytes(maskData []byte) (*safe.Mat, error) {
	return s.apply(models.StageRepair, func(img *safe.Mat) (*safe.Mat, error) {
		mask, err := s.orchestrator.Loader().LoadMaskBytes(maskData, "")
		if err != nil {
			return nil, err
		}
		defer mask.Close()
		return filters.RepairBlemishes(img, mask)
	})
}

func (s *Session) DetectFaces() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false, models.ErrNotLoaded
	}
	return filters.DetectFaces(s.current.Mat)
}

// Compare places the loaded image left of processed.
func (s *Session) Compare(processed *safe.Mat) (*safe.Mat, error) {
	return s.apply("compare", func(img *safe.Mat) (*safe.Mat, error) {
		return filters.SideBySide(img, processed)
	})
}

// Restore runs the enabled stages of cfg over the loaded image.
func (s *Session) Restore(cfg models.RestoreConfig) (*safe.Mat, error) {
	return s.apply("restore", func(img *safe.Mat) (*safe.Mat, error) {
		return s.orchestrator.RestoreCustom(img, cfg)
	})
}

// Close releases the loaded image. The session may be loaded again.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Release()
		s.current = nil
	}
}

func (s *Session) replace(data *models.ImageData) {
	s.mu.Lock()
	previous := s.current
	s.current = data
	s.mu.Unlock()

	if previous != nil {
		previous.Release()
	}

	s.logger.Debug("Session", "image loaded", map[string]interface{}{
		"session": s.id,
		"width":   data.Width,
		"height":  data.Height,
		"format":  data.Format,
	})
}

func (s *Session) apply(op string, fn func(*safe.Mat) (*safe.Mat, error)) (*safe.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, models.ErrNotLoaded
	}

	out, err := fn(s.current.Mat)
	if err != nil {
		s.logger.Error("Session", err, map[string]interface{}{
			"session":   s.id,
			"operation": op,
		})
		return nil, err
	}
	return out, nil
}
