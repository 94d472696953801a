package filters

import (
	"fmt"
	"image"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// sharpenKernel: center 5, four-connected neighbours -1, corners 0.
var sharpenKernel = [3][3]float32{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sharpen dispatches to the kernel or unsharp-mask variant.
func Sharpen(src *safe.Mat, params models.SharpenParams) (*safe.Mat, error) {
	switch params.Method {
	case models.SharpenKernel:
		return SharpenWithKernel(src)
	case models.SharpenUnsharp, "":
		return UnsharpMask(src, params.Amount, params.Sigma)
	default:
		return nil, fmt.Errorf("%w: unknown sharpen method %q", models.ErrInvalidConfig, params.Method)
	}
}

// SharpenWithKernel convolves src with the fixed 3x3 sharpening kernel.
func SharpenWithKernel(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "sharpen"); err != nil {
		return nil, err
	}

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			kernel.SetFloatAt(row, col, sharpenKernel[row][col])
		}
	}

	dst := gocv.NewMat()
	if err := gocv.Filter2D(src.GetMat(), &dst, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderDefault); err != nil {
		dst.Close()
		return nil, fmt.Errorf("sharpen kernel convolution failed: %w", err)
	}

	return safe.Adopt(dst, "sharpen_kernel")
}

// UnsharpMask computes original*(1+amount) - blurred*amount with saturation.
func UnsharpMask(src *safe.Mat, amount, sigma float64) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "unsharp mask"); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: unsharp amount %.2f is negative", models.ErrInvalidConfig, amount)
	}
	if sigma <= 0 {
		sigma = models.DefaultSharpenSigma
	}

	kernelSize := int(sigma*6) + 1
	if kernelSize%2 == 0 {
		kernelSize++
	}
	kernelSize = max(3, min(kernelSize, 15))

	srcMat := src.GetMat()

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.GaussianBlur(srcMat, &blurred, image.Point{X: kernelSize, Y: kernelSize}, sigma, sigma, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("unsharp blur failed: %w", err)
	}

	dst := gocv.NewMat()
	if err := gocv.AddWeighted(srcMat, 1+amount, blurred, -amount, 0, &dst); err != nil {
		dst.Close()
		return nil, fmt.Errorf("unsharp blend failed: %w", err)
	}

	return safe.Adopt(dst, "unsharp_mask")
}
