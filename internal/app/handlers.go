package app

import (
	"fmt"
	"io"
	"sync"
	"time"

	"photo-restorer/internal/gui"
	"photo-restorer/internal/gui/components"
	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/conversion"
	"photo-restorer/internal/opencv/safe"
	"photo-restorer/internal/pipeline/stages"
	"photo-restorer/internal/services"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// Handlers turns toolbar actions into session calls. Work runs off the UI
// goroutine; results come back through the GUI manager.
type Handlers struct {
	session    *services.Session
	saver      *stages.Saver
	guiManager *gui.Manager
	restoreCfg models.RestoreConfig
	logger     logger.Logger

	mu     sync.Mutex
	result *safe.Mat
}

func NewHandlers(session *services.Session, saver *stages.Saver, gm *gui.Manager, restoreCfg models.RestoreConfig, log logger.Logger) *Handlers {
	return &Handlers{
		session:    session,
		saver:      saver,
		guiManager: gm,
		restoreCfg: restoreCfg,
		logger:     log,
	}
}

func (h *Handlers) HandleAction(action string) {
	switch action {
	case components.ActionLoad:
		h.HandleImageLoad()
	case components.ActionSave:
		h.HandleImageSave()
	default:
		h.runOperation(action)
	}
}

func (h *Handlers) HandleImageLoad() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			h.guiManager.ShowError("File Load Error", err)
			return
		}
		if reader == nil {
			return
		}

		h.guiManager.UpdateStatus("Loading image...")

		go func() {
			data, readErr := io.ReadAll(reader)
			name := reader.URI().Name()
			reader.Close()

			if readErr != nil {
				h.guiManager.ShowError("Image Read Error", readErr)
				h.guiManager.UpdateStatus("Ready")
				return
			}

			if err := h.session.LoadBytes(data, name); err != nil {
				h.guiManager.ShowError("Image Load Error", err)
				h.guiManager.UpdateStatus("Ready")
				return
			}
			h.setResult(nil)

			original, err := h.session.Original()
			if err != nil {
				h.guiManager.ShowError("Image Load Error", err)
				return
			}
			defer original.Close()

			img, err := conversion.MatToImage(original)
			if err != nil {
				h.guiManager.ShowError("Image Display Error", err)
				return
			}

			info, _ := h.session.Loaded()
			h.guiManager.SetOriginalImage(img, info.Width, info.Height, info.Format)
			h.guiManager.UpdateStatus("Loaded " + name)
		}()
	}, h.guiManager.GetWindow())
}

func (h *Handlers) HandleImageSave() {
	h.mu.Lock()
	hasResult := h.result != nil
	h.mu.Unlock()
	if !hasResult {
		h.guiManager.ShowError("Save Error", fmt.Errorf("no result to save"))
		return
	}

	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			h.guiManager.ShowError("File Save Error", err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		format := stages.FormatForPath(writer.URI().Name())

		h.mu.Lock()
		data, encErr := h.saver.Encode(h.result, format)
		h.mu.Unlock()
		if encErr != nil {
			h.guiManager.ShowError("Image Encode Error", encErr)
			return
		}

		if _, err := writer.Write(data); err != nil {
			h.guiManager.ShowError("File Save Error", err)
			return
		}

		h.guiManager.UpdateStatus("Saved " + writer.URI().Name())
	}, h.guiManager.GetWindow())
}

func (h *Handlers) runOperation(action string) {
	h.guiManager.SetBusy(true)
	h.guiManager.UpdateStatus("Running " + action + "...")

	go func() {
		defer h.guiManager.SetBusy(false)

		start := time.Now()
		out, err := h.apply(action)
		if err != nil {
			h.guiManager.ShowError("Processing Error", err)
			h.guiManager.UpdateStatus("Ready")
			return
		}
		elapsed := time.Since(start)

		img, err := conversion.MatToImage(out)
		if err != nil {
			out.Close()
			h.guiManager.ShowError("Image Display Error", err)
			return
		}

		if action == components.ActionCompare {
			// the side-by-side view is for display only
			out.Close()
		} else {
			h.setResult(out)
		}

		h.guiManager.SetPreviewImage(action, img, elapsed)
		h.guiManager.UpdateStatus("Ready")
	}()
}

func (h *Handlers) apply(action string) (*safe.Mat, error) {
	switch action {
	case components.ActionDenoise:
		return h.session.Denoise(models.DenoiseStrong)
	case components.ActionContrast:
		return h.session.EnhanceContrast(models.DefaultContrastParams())
	case components.ActionColor:
		return h.session.CorrectColor()
	case components.ActionSharpen:
		return h.session.Sharpen(models.SharpenParams{Method: models.SharpenKernel})
	case components.ActionRepair:
		return h.session.RepairBlemishes("")
	case components.ActionRestore:
		return h.session.Restore(h.restoreCfg)
	case components.ActionCompare:
		return h.compare()
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

// compare shows the original next to the current result, restoring first if
// nothing has been produced yet.
func (h *Handlers) compare() (*safe.Mat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.result == nil {
		restored, err := h.session.Restore(h.restoreCfg)
		if err != nil {
			return nil, err
		}
		h.result = restored
	}
	return h.session.Compare(h.result)
}

func (h *Handlers) setResult(m *safe.Mat) {
	h.mu.Lock()
	previous := h.result
	h.result = m
	h.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
}

// Release drops the held result.
func (h *Handlers) Release() {
	h.setResult(nil)
}
