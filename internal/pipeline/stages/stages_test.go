package stages

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestLoadFileDecodesToBGR(t *testing.T) {
	path := writePNG(t, t.TempDir(), "red.png", solidNRGBA(8, 6, color.NRGBA{R: 200, G: 10, B: 30, A: 255}))

	data, err := NewLoader(logger.NewNop()).LoadFile(path)
	require.NoError(t, err)
	defer data.Release()

	assert.Equal(t, 8, data.Width)
	assert.Equal(t, 6, data.Height)
	assert.Equal(t, 3, data.Channels)
	assert.Equal(t, "png", data.Format)

	b, _ := data.Mat.GetUCharAt3(0, 0, 0)
	r, _ := data.Mat.GetUCharAt3(0, 0, 2)
	assert.Equal(t, uint8(30), b)
	assert.Equal(t, uint8(200), r)
}

func TestLoadFileExpandsGrayscale(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 5, 5))
	for i := range gray.Pix {
		gray.Pix[i] = 77
	}
	path := writePNG(t, t.TempDir(), "gray.png", gray)

	data, err := NewLoader(logger.NewNop()).LoadFile(path)
	require.NoError(t, err)
	defer data.Release()

	assert.Equal(t, 3, data.Channels)
	v, _ := data.Mat.GetUCharAt3(2, 2, 1)
	assert.Equal(t, uint8(77), v)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader(logger.NewNop()).LoadFile(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, models.ErrImageLoad)
}

func TestLoadBytesRejectsGarbage(t *testing.T) {
	loader := NewLoader(logger.NewNop())

	_, err := loader.LoadBytes([]byte("definitely not an image"), "x.jpg")
	assert.ErrorIs(t, err, models.ErrImageLoad)

	_, err = loader.LoadBytes(nil, "")
	assert.ErrorIs(t, err, models.ErrImageLoad)
}

func TestLoadMaskIsSingleChannel(t *testing.T) {
	img := solidNRGBA(10, 10, color.NRGBA{A: 255})
	for y := 3; y < 6; y++ {
		for x := 3; x < 6; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	path := writePNG(t, t.TempDir(), "mask.png", img)

	mask, err := NewLoader(logger.NewNop()).LoadMask(path)
	require.NoError(t, err)
	defer mask.Close()

	assert.Equal(t, 1, mask.Channels())
	on, _ := mask.GetUCharAt(4, 4)
	off, _ := mask.GetUCharAt(0, 0)
	assert.Equal(t, uint8(255), on)
	assert.Equal(t, uint8(0), off)
}

func testMat(t *testing.T) *safe.Mat {
	t.Helper()
	m, err := safe.NewMatFromScalar(12, 16, gocv.MatTypeCV8UC3, gocv.NewScalar(40, 90, 160, 0))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestSaveFilePNGRoundTrip(t *testing.T) {
	src := testMat(t)
	path := filepath.Join(t.TempDir(), "out.png")

	n, err := NewSaver(logger.NewNop(), 0, -1).SaveFile(src, path)
	require.NoError(t, err)
	assert.Positive(t, n)

	loaded, err := NewLoader(logger.NewNop()).LoadFile(path)
	require.NoError(t, err)
	defer loaded.Release()

	assert.Equal(t, src.Bytes(), loaded.Mat.Bytes())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, OutputFileMode, info.Mode().Perm())
}

func TestSaveFileIsDeterministic(t *testing.T) {
	src := testMat(t)
	dir := t.TempDir()
	saver := NewSaver(logger.NewNop(), 90, 3)

	_, err := saver.SaveFile(src, filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
	_, err = saver.SaveFile(src, filepath.Join(dir, "b.jpg"))
	require.NoError(t, err)

	a, _ := os.ReadFile(filepath.Join(dir, "a.jpg"))
	b, _ := os.ReadFile(filepath.Join(dir, "b.jpg"))
	assert.Equal(t, a, b)
}

func TestSaveFileUnwritableDestination(t *testing.T) {
	src := testMat(t)
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.jpg")

	_, err := NewSaver(logger.NewNop(), 95, 3).SaveFile(src, path)
	assert.ErrorIs(t, err, models.ErrImagePersist)
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	_, err := NewSaver(logger.NewNop(), 95, 3).Encode(testMat(t), "gif")
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "jpeg", FormatForPath("a/b.JPG"))
	assert.Equal(t, "png", FormatForPath("b.png"))
	assert.Equal(t, "jpeg", FormatForPath("noext"))
	assert.Equal(t, "image/png", ContentType("png"))
	assert.Equal(t, "image/jpeg", ContentType("jpg"))
	assert.Equal(t, "image/tiff", ContentType("tif"))
}
