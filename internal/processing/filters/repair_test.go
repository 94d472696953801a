package filters

import (
	"math"
	"testing"

	"photo-restorer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestRepairWithZeroMaskIsIdentity(t *testing.T) {
	src := uniformImage(t, 30, 30, 128, 128, 128)
	paintBlock(t, src, 10, 10, 5, 250)
	mask := zeroMask(t, 30, 30)

	out, err := RepairBlemishes(src, mask)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, src.Bytes(), out.Bytes())
}

func TestRepairRejectsMismatchedMask(t *testing.T) {
	src := uniformImage(t, 30, 30, 128, 128, 128)
	mask := zeroMask(t, 30, 29)

	_, err := RepairBlemishes(src, mask)
	assert.ErrorIs(t, err, models.ErrMaskMismatch)
}

func TestRepairRejectsColorMask(t *testing.T) {
	src := uniformImage(t, 10, 10, 128, 128, 128)
	mask := uniformImage(t, 10, 10, 255, 255, 255)

	_, err := RepairBlemishes(src, mask)
	assert.Error(t, err)
}

func TestDeriveBlemishMaskFlagsSpeckle(t *testing.T) {
	src := uniformImage(t, 100, 100, 128, 128, 128)
	paintBlock(t, src, 45, 45, 10, 255)

	mask, err := DeriveBlemishMask(src)
	require.NoError(t, err)
	defer mask.Close()

	assert.Equal(t, 1, mask.Channels())
	assert.True(t, mask.SameSize(src))

	center, _ := mask.GetUCharAt(50, 50)
	corner, _ := mask.GetUCharAt(2, 2)
	assert.Equal(t, uint8(255), center)
	assert.Equal(t, uint8(0), corner)
}

func TestDeriveBlemishMaskIgnoresFlatImage(t *testing.T) {
	src := uniformImage(t, 50, 50, 128, 128, 128)

	mask, err := DeriveBlemishMask(src)
	require.NoError(t, err)
	defer mask.Close()

	assert.Zero(t, gocv.CountNonZero(mask.GetMat()))
}

func TestRepairAutoMaskRemovesSpeckle(t *testing.T) {
	src := uniformImage(t, 100, 100, 128, 128, 128)
	paintBlock(t, src, 45, 45, 10, 255)

	before := math.Abs(regionMean(t, src, 45, 45, 10) - regionMean(t, src, 0, 0, 20))

	out, err := RepairBlemishes(src, nil)
	require.NoError(t, err)
	defer out.Close()

	after := math.Abs(regionMean(t, out, 45, 45, 10) - regionMean(t, out, 0, 0, 20))
	assert.Less(t, after, before*0.5)

	// the input buffer is untouched
	assert.InDelta(t, 255, regionMean(t, src, 45, 45, 10), 0.01)
}

func TestRepairExplicitMask(t *testing.T) {
	src := uniformImage(t, 40, 40, 60, 60, 60)
	paintBlock(t, src, 18, 18, 4, 0)

	mask := zeroMask(t, 40, 40)
	paintBlock(t, mask, 17, 17, 6, 255)

	out, err := RepairBlemishes(src, mask)
	require.NoError(t, err)
	defer out.Close()

	assert.InDelta(t, 60, regionMean(t, out, 18, 18, 4), 5)
}
