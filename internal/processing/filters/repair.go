package filters

import (
	"fmt"
	"image"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/conversion"
	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Blemish detection and inpainting constants.
const (
	InpaintRadius        = 3
	MaskMedianKernel     = 5
	MaskBlockSize        = 35
	MaskBias             = -10
	MaskDilateIterations = 2
)

// RepairBlemishes fills the non-zero region of mask with Telea fast-marching
// inpainting. A nil mask is derived from the image with DeriveBlemishMask.
func RepairBlemishes(src, mask *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateColorImage(src, "repair blemishes"); err != nil {
		return nil, err
	}

	if mask == nil {
		derived, err := DeriveBlemishMask(src)
		if err != nil {
			return nil, fmt.Errorf("blemish mask derivation failed: %w", err)
		}
		defer derived.Close()
		mask = derived
	}

	if err := safe.ValidateMask(mask, "repair blemishes"); err != nil {
		return nil, err
	}
	if !mask.SameSize(src) {
		return nil, fmt.Errorf("%w: mask %dx%d, image %dx%d", models.ErrMaskMismatch,
			mask.Cols(), mask.Rows(), src.Cols(), src.Rows())
	}

	maskMat := mask.GetMat()
	if gocv.CountNonZero(maskMat) == 0 {
		return src.Clone()
	}

	dst := gocv.NewMat()
	if err := gocv.Inpaint(src.GetMat(), maskMat, &dst, InpaintRadius, gocv.Telea); err != nil {
		dst.Close()
		return nil, fmt.Errorf("inpaint failed: %w", err)
	}

	return safe.Adopt(dst, "repair")
}

// DeriveBlemishMask flags pixels that are abnormally bright or dark against a
// Gaussian-weighted local mean, then removes speckle and grows the regions so
// inpainting covers their edges.
func DeriveBlemishMask(src *safe.Mat) (*safe.Mat, error) {
	gray, err := conversion.ConvertToGrayscale(src)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.MedianBlur(gray.GetMat(), &blurred, MaskMedianKernel); err != nil {
		return nil, fmt.Errorf("median blur failed: %w", err)
	}

	bright := gocv.NewMat()
	defer bright.Close()
	if err := gocv.AdaptiveThreshold(blurred, &bright, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, MaskBlockSize, MaskBias); err != nil {
		return nil, fmt.Errorf("bright threshold failed: %w", err)
	}

	// Thresholding the inverse with the same bias flags dark outliers.
	inverted := gocv.NewMat()
	defer inverted.Close()
	if err := gocv.BitwiseNot(blurred, &inverted); err != nil {
		return nil, fmt.Errorf("invert failed: %w", err)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	if err := gocv.AdaptiveThreshold(inverted, &dark, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, MaskBlockSize, MaskBias); err != nil {
		return nil, fmt.Errorf("dark threshold failed: %w", err)
	}

	combined := gocv.NewMat()
	defer combined.Close()
	if err := gocv.BitwiseOr(bright, dark, &combined); err != nil {
		return nil, fmt.Errorf("mask union failed: %w", err)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	opened := gocv.NewMat()
	if err := gocv.MorphologyEx(combined, &opened, gocv.MorphOpen, kernel); err != nil {
		opened.Close()
		return nil, fmt.Errorf("mask opening failed: %w", err)
	}

	output := opened
	for i := 0; i < MaskDilateIterations; i++ {
		temp := gocv.NewMat()
		err := gocv.Dilate(output, &temp, kernel)
		output.Close()
		if err != nil {
			temp.Close()
			return nil, fmt.Errorf("mask dilation failed: %w", err)
		}
		output = temp
	}

	return safe.Adopt(output, "blemish_mask")
}
