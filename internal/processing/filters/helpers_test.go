package filters

import (
	"math"
	"testing"

	"photo-restorer/internal/opencv/safe"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func uniformImage(t *testing.T, rows, cols int, b, g, r float64) *safe.Mat {
	t.Helper()
	m, err := safe.NewMatFromScalar(rows, cols, gocv.MatTypeCV8UC3, gocv.NewScalar(b, g, r, 0))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func zeroMask(t *testing.T, rows, cols int) *safe.Mat {
	t.Helper()
	m, err := safe.NewMatFromScalar(rows, cols, gocv.MatTypeCV8UC1, gocv.NewScalar(0, 0, 0, 0))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

// paintBlock sets a square block of every channel to value.
func paintBlock(t *testing.T, m *safe.Mat, top, left, size int, value uint8) {
	t.Helper()
	for y := top; y < top+size; y++ {
		for x := left; x < left+size; x++ {
			for c := 0; c < m.Channels(); c++ {
				require.NoError(t, m.SetUCharAt3(y, x, c, value))
			}
		}
	}
}

// narrowGradient is a horizontal gray ramp squeezed into [low, low+span].
func narrowGradient(t *testing.T, rows, cols int, low, span float64) *safe.Mat {
	t.Helper()
	m := uniformImage(t, rows, cols, 0, 0, 0)
	for x := 0; x < cols; x++ {
		v := uint8(low + span*float64(x)/float64(cols-1))
		for y := 0; y < rows; y++ {
			for c := 0; c < 3; c++ {
				require.NoError(t, m.SetUCharAt3(y, x, c, v))
			}
		}
	}
	return m
}

func regionMean(t *testing.T, m *safe.Mat, top, left, size int) float64 {
	t.Helper()
	var sum float64
	for y := top; y < top+size; y++ {
		for x := left; x < left+size; x++ {
			v, err := m.GetUCharAt3(y, x, 1)
			require.NoError(t, err)
			sum += float64(v)
		}
	}
	return sum / float64(size*size)
}

func histogramEntropy(data []byte) float64 {
	var hist [256]float64
	for _, v := range data {
		hist[v]++
	}
	var entropy float64
	total := float64(len(data))
	for _, count := range hist {
		if count == 0 {
			continue
		}
		p := count / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
