package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/rs/zerolog/log"

	"github.com/kirillkom/papercheck/internal/config"
	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
	"github.com/kirillkom/papercheck/internal/observability/metrics"
)

const (
	serviceName        = "api"
	multipartMemory    = 8 << 20
	defaultUploadLimit = 64 << 20
)

type Router struct {
	cfg     config.Config
	ingest  ports.SubmissionIngestor
	reader  ports.SubmissionReader
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.SubmissionIngestor,
	reader ports.SubmissionReader,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:     cfg,
		ingest:  ingest,
		reader:  reader,
		metrics: httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	validator, err := newRequestValidator()
	if err != nil {
		// embedded document is invalid
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/submissions", rt.uploadSubmission)
	mux.HandleFunc("GET /v1/submissions", rt.listSubmissions)
	mux.HandleFunc("GET /v1/submissions/{id}", rt.getSubmission)
	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, validator.doc)
	})
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = validator.middleware(mux)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadSubmission(w http.ResponseWriter, r *http.Request) {
	limit := rt.cfg.UploadMaxBytes
	if limit <= 0 {
		limit = defaultUploadLimit
	}
	if r.ContentLength > limit {
		writeJSONError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit))
			return
		}
		writeJSONError(w, r, http.StatusBadRequest, "multipart form is required")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	rawType := strings.TrimSpace(r.FormValue("paper_type"))
	if rawType == "" {
		rawType = rt.cfg.DefaultPaperType
	}
	paperType, err := domain.ParsePaperType(rawType)
	if err != nil {
		rt.recordUpload(rawType, 0, err)
		writeError(w, r, err)
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		err := domain.WrapError(domain.ErrInvalidInput, "upload submission", errors.New("file must be a PDF"))
		rt.recordUpload(string(paperType), 0, err)
		writeError(w, r, err)
		return
	}

	sub, err := rt.ingest.Upload(r.Context(), fileHeader.Filename, paperType, file)
	rt.recordUpload(string(paperType), fileHeader.Size, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

func (rt *Router) recordUpload(paperType string, size int64, err error) {
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, paperType, size, err)
	}
}

func (rt *Router) listSubmissions(w http.ResponseWriter, r *http.Request) {
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "list submissions", err))
		return
	}

	items, err := rt.reader.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (rt *Router) getSubmission(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSONError(w, r, http.StatusBadRequest, "submission id is required")
		return
	}

	sub, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Debug().Err(err).Msg("write_json_failed")
	}
}
