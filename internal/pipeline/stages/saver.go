package stages

import (
	"os"
	"path/filepath"
	"strings"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	DefaultJPEGQuality    = 95
	DefaultPNGCompression = 3
)

// Saver encodes buffers with OpenCV and writes them atomically.
type Saver struct {
	logger         logger.Logger
	jpegQuality    int
	pngCompression int
}

func NewSaver(log logger.Logger, jpegQuality, pngCompression int) *Saver {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	if pngCompression < 0 || pngCompression > 9 {
		pngCompression = DefaultPNGCompression
	}
	return &Saver{
		logger:         log,
		jpegQuality:    jpegQuality,
		pngCompression: pngCompression,
	}
}

// Encode serializes img in format (jpeg, png, bmp, tiff or webp).
func (s *Saver) Encode(img *safe.Mat, format string) ([]byte, error) {
	if err := safe.ValidateMatForOperation(img, "encode"); err != nil {
		return nil, err
	}

	ext, params, err := s.encoding(format)
	if err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncodeWithParams(ext, img.GetMat(), params)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", format)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	native := buf.GetBytes()
	out := make([]byte, len(native))
	copy(out, native)
	return out, nil
}

// SaveFile encodes img by the extension of path and writes it through a
// temporary file in the same directory. Every failure wraps
// models.ErrImagePersist.
func (s *Saver) SaveFile(img *safe.Mat, path string) (int, error) {
	format := extensionFormat(path, "jpeg")

	data, err := s.Encode(img, format)
	if err != nil {
		return 0, errors.Wrapf(models.ErrImagePersist, "%s: %v", path, err)
	}

	if err := writeAtomic(path, data); err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"path":   path,
			"format": format,
		})
		return 0, errors.Wrapf(models.ErrImagePersist, "%s: %v", path, err)
	}

	s.logger.Debug("ImageSaver", "image saved", map[string]interface{}{
		"path":   path,
		"format": format,
		"bytes":  len(data),
	})

	return len(data), nil
}

// FormatForPath reports the encoding SaveFile would use for path.
func FormatForPath(path string) string {
	return extensionFormat(path, "jpeg")
}

// ContentType maps an encoding name onto its MIME type.
func ContentType(format string) string {
	switch normalizeFormat(format) {
	case "png":
		return "image/png"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func (s *Saver) encoding(format string) (gocv.FileExt, []int, error) {
	switch normalizeFormat(format) {
	case "jpeg":
		return gocv.JPEGFileExt, []int{int(gocv.IMWriteJpegQuality), s.jpegQuality}, nil
	case "png":
		return gocv.PNGFileExt, []int{int(gocv.IMWritePngCompression), s.pngCompression}, nil
	case "bmp":
		return gocv.FileExt(".bmp"), nil, nil
	case "tiff":
		return gocv.FileExt(".tif"), nil, nil
	case "webp":
		return gocv.FileExt(".webp"), nil, nil
	default:
		return "", nil, errors.Errorf("unsupported output format %q", format)
	}
}

func normalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case "jpg", "jpeg", "":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	default:
		return f
	}
}

// OutputFileMode is the permission restored files are published with.
const OutputFileMode os.FileMode = 0o644

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".restore-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(OutputFileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
