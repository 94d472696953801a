package filters

import (
	"fmt"
	"image"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// EnhanceContrast runs CLAHE on the L channel of the Lab representation and
// converts back to BGR. Chrominance is left untouched.
func EnhanceContrast(src *safe.Mat, params models.ContrastParams) (*safe.Mat, error) {
	if err := safe.ValidateColorImage(src, "enhance contrast"); err != nil {
		return nil, err
	}

	tileGrid := params.TileGrid
	if tileGrid <= 0 {
		tileGrid = models.DefaultTileGrid
	}

	lab := gocv.NewMat()
	defer lab.Close()
	if err := gocv.CvtColor(src.GetMat(), &lab, gocv.ColorBGRToLab); err != nil {
		return nil, fmt.Errorf("BGR to Lab conversion failed: %w", err)
	}

	channels := gocv.Split(lab)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()
	if len(channels) != 3 {
		return nil, fmt.Errorf("expected 3 Lab channels, got %d", len(channels))
	}

	clahe := gocv.NewCLAHEWithParams(params.ClipLimit, image.Point{X: tileGrid, Y: tileGrid})
	defer clahe.Close()

	equalized := gocv.NewMat()
	if err := clahe.Apply(channels[0], &equalized); err != nil {
		equalized.Close()
		return nil, fmt.Errorf("CLAHE failed: %w", err)
	}
	channels[0].Close()
	channels[0] = equalized

	merged := gocv.NewMat()
	defer merged.Close()
	if err := gocv.Merge(channels, &merged); err != nil {
		return nil, fmt.Errorf("Lab merge failed: %w", err)
	}

	dst := gocv.NewMat()
	if err := gocv.CvtColor(merged, &dst, gocv.ColorLabToBGR); err != nil {
		dst.Close()
		return nil, fmt.Errorf("Lab to BGR conversion failed: %w", err)
	}

	return safe.Adopt(dst, "contrast")
}
