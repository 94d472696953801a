package handlers

import (
	"context"
	"net/http"

	"photo-restorer/internal/models"
	"photo-restorer/internal/services"

	"github.com/pkg/errors"
)

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidConfig),
		errors.Is(err, services.ErrUnknownPreview):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrImageLoad),
		errors.Is(err, models.ErrMaskMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrWorkersBusy),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *RestoreHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal error while restoring the image"
	}
	h.writeStatus(w, r, status, detail, err)
}

func (h *RestoreHandler) writeStatus(w http.ResponseWriter, r *http.Request, status int, detail string, err error) {
	fields := map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}
	if stage, ok := models.FailedStage(err); ok {
		fields["stage"] = stage
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("RestoreHandler", err, fields)
	} else {
		fields["error"] = err.Error()
		h.logger.Warning("RestoreHandler", "request rejected", fields)
	}

	writeJSON(w, status, map[string]string{"detail": detail})
}
