package services

import (
	"context"
	"fmt"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"
	"photo-restorer/internal/pipeline/stages"

	"github.com/pkg/errors"
)

// Preview operations, one per interactive primitive.
const (
	PreviewDenoise  = "denoise"
	PreviewContrast = "contrast"
	PreviewColor    = "color"
	PreviewSharpen  = "sharpen"
	PreviewRepair   = "repair"
	PreviewCompare  = "compare"
)

// ErrUnknownPreview is returned for an operation name outside the preview set.
var ErrUnknownPreview = errors.New("unknown preview operation")

// PreviewOperations lists the accepted preview operation names.
func PreviewOperations() []string {
	return []string{PreviewDenoise, PreviewContrast, PreviewColor, PreviewSharpen, PreviewRepair, PreviewCompare}
}

// Preview runs a single primitive over data with its standalone defaults
// (strong denoise, clip 3.0 contrast, kernel sharpen) and returns a PNG.
// compare places the source next to its full restoration.
func (s *RestorationService) Preview(ctx context.Context, op string, data, maskData []byte) (*RestoredImage, error) {
	switch op {
	case PreviewDenoise, PreviewContrast, PreviewColor, PreviewSharpen, PreviewRepair, PreviewCompare:
	default:
		return nil, errors.Wrapf(ErrUnknownPreview, "%q", op)
	}

	return offload(ctx, s.workers, func() (*RestoredImage, error) {
		session := s.NewSession()
		defer session.Close()

		if err := session.LoadBytes(data, ""); err != nil {
			return nil, err
		}

		out, err := runPreview(session, op, maskData)
		if err != nil {
			return nil, err
		}
		defer out.Close()

		encoded, err := s.orchestrator.Saver().Encode(out, "png")
		if err != nil {
			return nil, errors.Wrapf(models.ErrImagePersist, "encode preview: %v", err)
		}

		return &RestoredImage{
			Data:        encoded,
			Format:      "png",
			ContentType: stages.ContentType("png"),
			Width:       out.Cols(),
			Height:      out.Rows(),
		}, nil
	}, nil)
}

func runPreview(session *Session, op string, maskData []byte) (*safe.Mat, error) {
	switch op {
	case PreviewDenoise:
		return session.Denoise(models.DenoiseStrong)
	case PreviewContrast:
		return session.EnhanceContrast(models.DefaultContrastParams())
	case PreviewColor:
		return session.CorrectColor()
	case PreviewSharpen:
		return session.Sharpen(models.SharpenParams{Method: models.SharpenKernel})
	case PreviewRepair:
		if len(maskData) == 0 {
			return session.RepairBlemishes("")
		}
		return session.RepairBlemishesBytes(maskData)
	case PreviewCompare:
		restored, err := session.Restore(models.FullRestoreConfig())
		if err != nil {
			return nil, err
		}
		defer restored.Close()
		return session.Compare(restored)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreview, op)
	}
}
