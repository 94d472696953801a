package stages

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/conversion"
	"photo-restorer/internal/opencv/safe"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Loader decodes sources into 8-bit BGR buffers and masks into 8-bit
// single-channel buffers.
type Loader struct {
	logger logger.Logger
}

func NewLoader(log logger.Logger) *Loader {
	return &Loader{logger: log}
}

// LoadFile reads and decodes path. Missing or undecodable files fail with
// models.ErrImageLoad.
func (l *Loader) LoadFile(path string) (*models.ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(models.ErrImageLoad, "read %s: %v", path, err)
	}
	return l.LoadBytes(data, path)
}

// LoadBytes decodes an in-memory encoded image. name only feeds the format
// guess and the log.
func (l *Loader) LoadBytes(data []byte, name string) (*models.ImageData, error) {
	if len(data) == 0 {
		return nil, errors.Wrapf(models.ErrImageLoad, "%s: empty input", displayName(name))
	}

	mat, format, err := l.decode(data, name, false)
	if err != nil {
		return nil, err
	}

	imageData := models.NewImageData(mat, format, name, int64(len(data)))

	l.logger.Debug("ImageLoader", "image loaded", map[string]interface{}{
		"source":   displayName(name),
		"width":    imageData.Width,
		"height":   imageData.Height,
		"channels": imageData.Channels,
		"format":   format,
	})

	return imageData, nil
}

// LoadMask reads path as a single-channel blemish mask.
func (l *Loader) LoadMask(path string) (*safe.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(models.ErrImageLoad, "read mask %s: %v", path, err)
	}
	return l.LoadMaskBytes(data, path)
}

func (l *Loader) LoadMaskBytes(data []byte, name string) (*safe.Mat, error) {
	if len(data) == 0 {
		return nil, errors.Wrapf(models.ErrImageLoad, "mask %s: empty input", displayName(name))
	}

	mask, _, err := l.decode(data, name, true)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("ImageLoader", "mask loaded", map[string]interface{}{
		"source": displayName(name),
		"width":  mask.Cols(),
		"height": mask.Rows(),
	})

	return mask, nil
}

// decode prefers the Go decoders, which apply EXIF orientation, and falls back
// to OpenCV for formats they do not know.
func (l *Loader) decode(data []byte, name string, asMask bool) (*safe.Mat, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		format := formatOf(data, name)
		var mat *safe.Mat
		if asMask {
			mat, err = conversion.ImageToMask(img)
		} else {
			mat, err = conversion.ImageToMat(img)
		}
		if err != nil {
			return nil, "", errors.Wrapf(models.ErrImageLoad, "%s: %v", displayName(name), err)
		}
		return mat, format, nil
	}

	l.logger.Debug("ImageLoader", "go decoders failed, trying OpenCV", map[string]interface{}{
		"source": displayName(name),
		"error":  err.Error(),
	})

	flags := gocv.IMReadColor
	if asMask {
		flags = gocv.IMReadGrayScale
	}

	raw, cvErr := gocv.IMDecode(data, flags)
	if cvErr != nil {
		return nil, "", errors.Wrapf(models.ErrImageLoad, "%s: %v", displayName(name), cvErr)
	}
	if raw.Empty() {
		raw.Close()
		return nil, "", errors.Wrapf(models.ErrImageLoad, "%s: not a decodable image", displayName(name))
	}

	mat, err := safe.Adopt(raw, "decoded")
	if err != nil {
		return nil, "", errors.Wrapf(models.ErrImageLoad, "%s: %v", displayName(name), err)
	}

	return mat, extensionFormat(name, "unknown"), nil
}

func formatOf(data []byte, name string) string {
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return format
	}
	return extensionFormat(name, "unknown")
}

func extensionFormat(name, fallback string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return fallback
	}
}

func displayName(name string) string {
	if name == "" {
		return "<memory>"
	}
	return name
}

