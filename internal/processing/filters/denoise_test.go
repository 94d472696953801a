package filters

import (
	"testing"

	"photo-restorer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenoiseConstantImageStaysConstant(t *testing.T) {
	for _, preset := range []models.DenoiseParams{models.DenoiseLight, models.DenoiseStrong} {
		src := uniformImage(t, 40, 40, 90, 120, 150)

		out, err := Denoise(src, preset)
		require.NoError(t, err)
		defer out.Close()

		assert.Equal(t, src.Rows(), out.Rows())
		assert.Equal(t, src.Cols(), out.Cols())

		data := out.Bytes()
		require.Len(t, data, 40*40*3)
		// Lab round-tripping may move a channel by one level, never more,
		// and never unevenly across the image.
		for i := 0; i < len(data); i += 3 {
			assert.Equal(t, data[0:3], data[i:i+3], "pixel %d differs", i/3)
		}
		assert.InDelta(t, 90, int(data[0]), 1)
		assert.InDelta(t, 120, int(data[1]), 1)
		assert.InDelta(t, 150, int(data[2]), 1)
	}
}

func TestDenoiseDoesNotMutateInput(t *testing.T) {
	src := uniformImage(t, 20, 20, 128, 128, 128)
	paintBlock(t, src, 5, 5, 3, 255)
	before := src.Bytes()

	out, err := Denoise(src, models.DenoiseStrong)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, before, src.Bytes())
}

func TestDenoiseRejectsEmptyInput(t *testing.T) {
	_, err := Denoise(nil, models.DenoiseLight)
	assert.Error(t, err)

	mask := zeroMask(t, 5, 5)
	_, err = Denoise(mask, models.DenoiseLight)
	assert.Error(t, err)
}
