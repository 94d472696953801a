package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestNewMatRejectsInvalidDimensions(t *testing.T) {
	_, err := NewMat(0, 10, gocv.MatTypeCV8UC3)
	assert.Error(t, err)

	_, err = NewMat(10, -1, gocv.MatTypeCV8UC3)
	assert.Error(t, err)
}

func TestNewMatFromScalar(t *testing.T) {
	m, err := NewMatFromScalar(4, 6, gocv.MatTypeCV8UC3, gocv.NewScalar(10, 20, 30, 0))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 4, m.Rows())
	assert.Equal(t, 6, m.Cols())
	assert.Equal(t, 3, m.Channels())

	v, err := m.GetUCharAt3(3, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(30), v)
}

func TestCloneIsIndependent(t *testing.T) {
	m, err := NewMatFromScalar(2, 2, gocv.MatTypeCV8UC3, gocv.NewScalar(1, 1, 1, 0))
	require.NoError(t, err)
	defer m.Close()

	c, err := m.Clone()
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetUCharAt3(0, 0, 0, 200))

	orig, err := m.GetUCharAt3(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), orig)
	assert.NotEqual(t, m.ID(), c.ID())
}

func TestCloseInvalidates(t *testing.T) {
	m, err := NewMat(3, 3, gocv.MatTypeCV8UC1)
	require.NoError(t, err)

	m.Close()
	m.Close()

	assert.False(t, m.IsValid())
	assert.True(t, m.Empty())
	assert.Zero(t, m.Rows())
	assert.Nil(t, m.Bytes())

	_, err = m.Clone()
	assert.Error(t, err)
	assert.Error(t, ValidateMatForOperation(m, "test"))
}

func TestLiveCountTracksOpenMats(t *testing.T) {
	before := LiveCount()

	m, err := NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	assert.Equal(t, before+1, LiveCount())

	m.Close()
	m.Close()
	assert.Equal(t, before, LiveCount())
}

func TestAdoptRejectsEmpty(t *testing.T) {
	_, err := Adopt(gocv.NewMat(), "empty")
	assert.Error(t, err)
}

func TestValidateColorImageAndMask(t *testing.T) {
	color, err := NewMat(5, 5, gocv.MatTypeCV8UC3)
	require.NoError(t, err)
	defer color.Close()

	mask, err := NewMat(5, 5, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	defer mask.Close()

	assert.NoError(t, ValidateColorImage(color, "test"))
	assert.Error(t, ValidateColorImage(mask, "test"))
	assert.NoError(t, ValidateMask(mask, "test"))
	assert.Error(t, ValidateMask(color, "test"))
	assert.Error(t, ValidateMatForOperation(nil, "test"))
}

func TestGetUCharAtOutOfBounds(t *testing.T) {
	m, err := NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.GetUCharAt(2, 0)
	assert.Error(t, err)
	_, err = m.GetUCharAt3(0, 0, 1)
	assert.Error(t, err)
}
