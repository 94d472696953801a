package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/services"

	"github.com/pkg/errors"
)

const (
	DefaultMaxUploadBytes = 32 << 20
	DefaultRequestTimeout = 2 * time.Minute
)

// Options tune request handling.
type Options struct {
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// RestoreHandler serves the restoration API over HTTP.
type RestoreHandler struct {
	service   *services.RestorationService
	logger    logger.Logger
	maxUpload int64
	timeout   time.Duration
}

func NewRestoreHandler(service *services.RestorationService, log logger.Logger, opts Options) *RestoreHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &RestoreHandler{
		service:   service,
		logger:    log,
		maxUpload: opts.MaxUploadBytes,
		timeout:   opts.RequestTimeout,
	}
}

// Routes returns the API mux wrapped in CORS and request logging.
func (h *RestoreHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("POST /restore", h.HandleRestore)
	mux.HandleFunc("POST /restore/custom", h.HandleRestoreCustom)
	mux.HandleFunc("POST /preview/{op}", h.HandlePreview)

	return withLogging(h.logger, withCORS(mux))
}

func (h *RestoreHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":          "photo restoration API running",
		"color_correction": h.service.ColorCorrectionAvailable(),
		"workers":          h.service.Workers(),
	})
}

// HandleRestore runs the full pipeline over the multipart "file" field and
// an optional "mask" field and answers with the JPEG result.
func (h *RestoreHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	restored, err := h.service.RestoreBytes(ctx, upload.data, upload.mask)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeImage(w, restored, "restored_"+stem(upload.filename)+".jpeg")
}

// HandleRestoreCustom runs the stages switched on by form flags.
func (h *RestoreHandler) HandleRestoreCustom(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	cfg, err := configFromForm(r.MultipartForm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	format := strings.ToLower(formValue(r.MultipartForm, "format"))

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	restored, err := h.service.RestoreCustomBytes(ctx, upload.data, cfg, format)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeImage(w, restored, "restored_"+stem(upload.filename)+"."+restored.Format)
}

// HandlePreview applies one primitive and answers with a PNG.
func (h *RestoreHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	op := r.PathValue("op")

	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	preview, err := h.service.Preview(ctx, op, upload.data, upload.mask)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeImage(w, preview, op+"_"+stem(upload.filename)+".png")
}

type upload struct {
	filename string
	data     []byte
	mask     []byte
}

func (h *RestoreHandler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeStatus(w, r, http.StatusRequestEntityTooLarge, "upload exceeds limit", err)
			return nil, false
		}
		h.writeStatus(w, r, http.StatusBadRequest, "expected a multipart form", err)
		return nil, false
	}

	data, filename, err := readPart(r.MultipartForm, "file")
	if err != nil {
		h.writeStatus(w, r, http.StatusBadRequest, "missing image in field \"file\"", err)
		return nil, false
	}

	u := &upload{filename: filename, data: data}

	if _, ok := r.MultipartForm.File["mask"]; ok {
		u.mask, _, err = readPart(r.MultipartForm, "mask")
		if err != nil {
			h.writeStatus(w, r, http.StatusBadRequest, "unreadable mask", err)
			return nil, false
		}
	}

	return u, true
}

func readPart(form *multipart.Form, field string) ([]byte, string, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, "", errors.Errorf("field %q not present", field)
	}

	f, err := headers[0].Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, headers[0].Filename, nil
}

// configFromForm starts from the full pipeline parameters with every stage
// off and switches stages on from the form.
func configFromForm(form *multipart.Form) (models.RestoreConfig, error) {
	cfg := models.AllStagesOff()

	flags := []struct {
		field string
		dst   *bool
	}{
		{"repair", &cfg.Repair.Enabled},
		{"denoise", &cfg.Denoise.Enabled},
		{"color", &cfg.ColorCorrect.Enabled},
		{"contrast", &cfg.Contrast.Enabled},
		{"sharpen", &cfg.Sharpen.Enabled},
	}
	for _, flag := range flags {
		raw := formValue(form, flag.field)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, errors.Wrapf(models.ErrInvalidConfig, "%s: %v", flag.field, err)
		}
		*flag.dst = v
	}

	if preset := formValue(form, "denoise_preset"); preset != "" {
		cfg.Denoise.Preset = strings.ToLower(preset)
	}

	if raw := formValue(form, "clip_limit"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, errors.Wrapf(models.ErrInvalidConfig, "clip_limit: %v", err)
		}
		cfg.Contrast.Params.ClipLimit = v
	}

	if method := formValue(form, "sharpen_method"); method != "" {
		cfg.Sharpen.Params.Method = models.SharpenMethod(strings.ToLower(method))
	}

	if raw := formValue(form, "amount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, errors.Wrapf(models.ErrInvalidConfig, "amount: %v", err)
		}
		cfg.Sharpen.Params.Amount = v
	}

	return cfg, nil
}

func formValue(form *multipart.Form, field string) string {
	if form == nil {
		return ""
	}
	if values := form.Value[field]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func stem(filename string) string {
	base := filepath.Base(filename)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == "/" {
		return "image"
	}
	return base
}

func writeImage(w http.ResponseWriter, img *services.RestoredImage, filename string) {
	w.Header().Set("Content-Type", img.ContentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
