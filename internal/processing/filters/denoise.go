package filters

import (
	"fmt"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Denoise applies non-local-means smoothing across all color channels.
// Higher H/HColor remove more grain and more fine detail.
func Denoise(src *safe.Mat, params models.DenoiseParams) (*safe.Mat, error) {
	if err := safe.ValidateColorImage(src, "denoise"); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	srcMat := src.GetMat()

	if err := gocv.FastNlMeansDenoisingColoredWithParams(srcMat, &dst,
		params.H, params.HColor, params.TemplateWindow, params.SearchWindow); err != nil {
		dst.Close()
		return nil, fmt.Errorf("non-local means failed: %w", err)
	}

	return safe.Adopt(dst, "denoise")
}
