package httpx

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"optica/internal/errs"
	"optica/internal/vision"
)

// VisionHandler fronts the external image-analysis scripts. Each request
// spawns a process, so a limiter keeps clients from saturating the host.
type VisionHandler struct {
	Runner    *vision.Runner
	UploadDir string
	Limiter   *rate.Limiter
}

func (h *VisionHandler) Register(r chi.Router) {
	r.Post("/vision/analyze", h.analyze)
	r.Post("/vision/tryon", h.tryOn)
}

func (h *VisionHandler) analyze(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "analysis rate limit exceeded, try again shortly"})
		return
	}
	path, err := h.saveUpload(r, "image")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(path)

	a, err := h.Runner.AnalyzeFace(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *VisionHandler) tryOn(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "try-on rate limit exceeded, try again shortly"})
		return
	}
	facePath, err := h.saveUpload(r, "image")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(facePath)

	framePath, err := h.saveUpload(r, "frame")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(framePath)

	outPath := filepath.Join(h.UploadDir, "tryon-"+filepath.Base(facePath))
	defer os.Remove(outPath)

	if err := h.Runner.TryOn(r.Context(), facePath, framePath, outPath); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, outPath)
}

func (h *VisionHandler) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errs.Validation("%s file is required", field)
	}
	defer file.Close()
	return saveTemp(h.UploadDir, file, header)
}

func saveTemp(dir string, src multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "vision-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
