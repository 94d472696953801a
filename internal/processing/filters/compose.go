package filters

import (
	"fmt"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// SideBySide concatenates a and b horizontally for visual comparison.
func SideBySide(a, b *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(a, "side by side (left)"); err != nil {
		return nil, err
	}
	if err := safe.ValidateMatForOperation(b, "side by side (right)"); err != nil {
		return nil, err
	}

	if a.Rows() != b.Rows() {
		return nil, fmt.Errorf("%w: left %d rows, right %d rows", models.ErrHeightMismatch, a.Rows(), b.Rows())
	}
	if a.Type() != b.Type() {
		return nil, fmt.Errorf("side by side: left has %d channels, right has %d", a.Channels(), b.Channels())
	}

	dst := gocv.NewMat()
	if err := gocv.Hconcat(a.GetMat(), b.GetMat(), &dst); err != nil {
		dst.Close()
		return nil, fmt.Errorf("side by side concatenation failed: %w", err)
	}

	return safe.Adopt(dst, "side_by_side")
}
