package conversion

import (
	"fmt"
	"image"

	"photo-restorer/internal/opencv/safe"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ConvertToGrayscale converts multi-channel images to single-channel grayscale
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return src.Clone()
	}

	dst := gocv.NewMat()
	srcMat := src.GetMat()

	code := gocv.ColorBGRToGray
	switch src.Channels() {
	case 3:
	case 4:
		code = gocv.ColorBGRAToGray
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	if err := gocv.CvtColor(srcMat, &dst, code); err != nil {
		dst.Close()
		return nil, fmt.Errorf("grayscale conversion failed: %w", err)
	}

	return safe.Adopt(dst, "grayscale")
}

// ConvertToBGR normalises 1- and 4-channel buffers to 3-channel BGR.
func ConvertToBGR(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "BGR conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	dst := gocv.NewMat()
	srcMat := src.GetMat()

	var code gocv.ColorConversionCode
	switch src.Channels() {
	case 3:
		dst.Close()
		return src.Clone()
	case 1:
		code = gocv.ColorGrayToBGR
	case 4:
		code = gocv.ColorBGRAToBGR
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	if err := gocv.CvtColor(srcMat, &dst, code); err != nil {
		dst.Close()
		return nil, fmt.Errorf("BGR conversion failed: %w", err)
	}

	return safe.Adopt(dst, "bgr")
}

// MatToImage converts GoCV Mat to standard Go image
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	switch src.Channels() {
	case 1, 3, 4:
		mat := src.GetMat()
		img, err := mat.ToImage()
		if err != nil {
			return nil, fmt.Errorf("Mat to image conversion failed: %w", err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
}

// ImageToMat converts a standard Go image into an 8-bit BGR Mat.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	if err := safe.ValidateDimensions(bounds.Dx(), bounds.Dy(), "image to Mat conversion"); err != nil {
		return nil, err
	}

	switch typedImg := img.(type) {
	case *image.Gray:
		gray, err := grayImageToMat(typedImg)
		if err != nil {
			return nil, err
		}
		defer gray.Close()
		return ConvertToBGR(gray)
	default:
		if isOpaque(img) {
			mat, err := gocv.ImageToMatRGB(img)
			if err != nil {
				return nil, fmt.Errorf("image to Mat conversion failed: %w", err)
			}
			// The Mat borrows Go memory; copy it into OpenCV-owned storage.
			defer mat.Close()
			return safe.NewMatFromMat(mat)
		}

		// At().RGBA() is alpha-premultiplied; go through straight NRGBA and
		// drop alpha instead.
		bgra, err := gocv.ImageToMatRGBA(imaging.Clone(img))
		if err != nil {
			return nil, fmt.Errorf("image to Mat conversion failed: %w", err)
		}
		four, err := safe.Adopt(bgra, "bgra")
		if err != nil {
			return nil, err
		}
		defer four.Close()
		return ConvertToBGR(four)
	}
}

func isOpaque(img image.Image) bool {
	o, ok := img.(interface{ Opaque() bool })
	return ok && o.Opaque()
}

// ImageToMask converts a standard Go image into an 8-bit single-channel Mat.
func ImageToMask(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	if gray, ok := img.(*image.Gray); ok {
		return grayImageToMat(gray)
	}

	color, err := ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer color.Close()

	return ConvertToGrayscale(color)
}

// grayImageToMat converts grayscale image to single-channel Mat
func grayImageToMat(img *image.Gray) (*safe.Mat, error) {
	mat, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("gray image to Mat conversion failed: %w", err)
	}
	defer mat.Close()

	return safe.NewMatFromMat(mat)
}
