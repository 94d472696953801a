package app

import (
	"testing"

	"photo-restorer/internal/gui"
	"photo-restorer/internal/gui/components"
	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"
	"photo-restorer/internal/pipeline"
	"photo-restorer/internal/pipeline/stages"
	"photo-restorer/internal/processing/filters"
	"photo-restorer/internal/services"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newTestHandlers(t *testing.T) (*Handlers, *services.Session) {
	t.Helper()
	test.NewTempApp(t)

	log := logger.NewNop()
	o := pipeline.NewOrchestrator(
		stages.NewLoader(log),
		stages.NewSaver(log, 95, 3),
		filters.NewColorCorrector(filters.Capability{}),
		log,
	)
	session := services.NewSession(o, log)
	t.Cleanup(session.Close)

	gm := gui.NewManager(test.NewWindow(nil), log)
	h := NewHandlers(session, o.Saver(), gm, models.FullRestoreConfig(), log)
	t.Cleanup(h.Release)
	return h, session
}

func loadGray(t *testing.T, session *services.Session, rows, cols int) {
	t.Helper()
	m, err := safe.NewMatFromScalar(rows, cols, gocv.MatTypeCV8UC3, gocv.NewScalar(100, 100, 100, 0))
	require.NoError(t, err)
	defer m.Close()
	data, err := stages.NewSaver(logger.NewNop(), 95, 3).Encode(m, "png")
	require.NoError(t, err)
	require.NoError(t, session.LoadBytes(data, "gray.png"))
}

func TestApplyBeforeLoad(t *testing.T) {
	h, _ := newTestHandlers(t)

	_, err := h.apply(components.ActionDenoise)
	assert.ErrorIs(t, err, models.ErrNotLoaded)

	_, err = h.apply("unknown")
	assert.Error(t, err)
}

func TestApplyEveryAction(t *testing.T) {
	h, session := newTestHandlers(t)
	loadGray(t, session, 24, 32)

	for _, action := range []string{
		components.ActionDenoise, components.ActionContrast, components.ActionColor,
		components.ActionSharpen, components.ActionRepair, components.ActionRestore,
	} {
		out, err := h.apply(action)
		require.NoError(t, err, action)
		assert.Equal(t, 32, out.Cols(), action)
		out.Close()
	}
}

func TestCompareRestoresWhenNoResult(t *testing.T) {
	h, session := newTestHandlers(t)
	loadGray(t, session, 24, 32)

	out, err := h.apply(components.ActionCompare)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 64, out.Cols())
	h.mu.Lock()
	assert.NotNil(t, h.result)
	h.mu.Unlock()
}
