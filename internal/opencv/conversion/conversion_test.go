package conversion

import (
	"image"
	"image/color"
	"testing"

	"photo-restorer/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestImageToMatProducesBGR(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	mat, err := ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 3, mat.Rows())
	assert.Equal(t, 4, mat.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC3, mat.Type())

	b, _ := mat.GetUCharAt3(1, 1, 0)
	g, _ := mat.GetUCharAt3(1, 1, 1)
	r, _ := mat.GetUCharAt3(1, 1, 2)
	assert.Equal(t, []uint8{50, 100, 200}, []uint8{b, g, r})
}

func TestImageToMatDropsAlphaWithoutPremultiplying(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 64})

	mat, err := ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, gocv.MatTypeCV8UC3, mat.Type())
	b, _ := mat.GetUCharAt3(1, 1, 0)
	g, _ := mat.GetUCharAt3(1, 1, 1)
	r, _ := mat.GetUCharAt3(1, 1, 2)
	assert.Equal(t, []uint8{50, 100, 200}, []uint8{b, g, r})
}

func TestImageToMatExpandsGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	img.SetGray(2, 2, color.Gray{Y: 77})

	mat, err := ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 3, mat.Channels())
	v, _ := mat.GetUCharAt3(2, 2, 1)
	assert.Equal(t, uint8(77), v)
}

func TestImageToMaskIsSingleChannel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.SetRGBA(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	mask, err := ImageToMask(img)
	require.NoError(t, err)
	defer mask.Close()

	assert.Equal(t, 1, mask.Channels())
	v, _ := mask.GetUCharAt(1, 1)
	assert.Equal(t, uint8(255), v)
	v, _ = mask.GetUCharAt(0, 0)
	assert.Equal(t, uint8(0), v)
}

func TestMatToImageRoundTrip(t *testing.T) {
	mat, err := safe.NewMatFromScalar(3, 3, gocv.MatTypeCV8UC3, gocv.NewScalar(10, 20, 30, 0))
	require.NoError(t, err)
	defer mat.Close()

	img, err := MatToImage(mat)
	require.NoError(t, err)

	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(30), r>>8)
	assert.Equal(t, uint32(20), g>>8)
	assert.Equal(t, uint32(10), b>>8)
}

func TestConvertToGrayscale(t *testing.T) {
	mat, err := safe.NewMatFromScalar(3, 3, gocv.MatTypeCV8UC3, gocv.NewScalar(90, 90, 90, 0))
	require.NoError(t, err)
	defer mat.Close()

	gray, err := ConvertToGrayscale(mat)
	require.NoError(t, err)
	defer gray.Close()

	assert.Equal(t, 1, gray.Channels())
	v, _ := gray.GetUCharAt(0, 0)
	assert.Equal(t, uint8(90), v)
}

func TestConversionRejectsNil(t *testing.T) {
	_, err := ImageToMat(nil)
	assert.Error(t, err)
	_, err = MatToImage(nil)
	assert.Error(t, err)
	_, err = ConvertToGrayscale(nil)
	assert.Error(t, err)
}
