package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "defi-nlu/internal/common/errors"
	"defi-nlu/internal/common/logger"
	"defi-nlu/internal/common/observability"
	"defi-nlu/internal/nlu/service"
)

const maxBodyBytes = 1 << 20

// nluService is the part of *service.Service the HTTP API needs.
type nluService interface {
	ProcessInput(ctx context.Context, text string) (*service.Result, error)
	ProcessBatch(ctx context.Context, texts []string) ([]service.Result, error)
	ModelInfo() service.ModelInfo
	Reinitialize(ctx context.Context) error
	Ready() bool
}

type processRequest struct {
	// a pointer so that "" is accepted but a missing field is not
	Text *string `json:"text" validate:"required,max=2000"`
}

type batchRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,max=256,dive,max=2000"`
}

type batchResponse struct {
	Results []service.Result `json:"results"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

type api struct {
	svc      nluService
	logger   logger.Logger
	validate *validator.Validate
}

func newAPI(svc nluService, log logger.Logger) *api {
	return &api{
		svc:      svc,
		logger:   log.WithFields(map[string]interface{}{"component": "http-api"}),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// routes registers the NLU endpoints, health probes and /metrics. Every
// route except /metrics is counted by obs when it is non-nil.
func (a *api) routes(obs *observability.Observability) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern, route string, h http.HandlerFunc) {
		var handler http.Handler = h
		if obs != nil {
			handler = obs.Middleware(route, handler)
		}
		mux.Handle(pattern, handler)
	}

	handle("POST /api/nlu/process", "/api/nlu/process", a.handleProcess)
	handle("POST /api/nlu/batch", "/api/nlu/batch", a.handleBatch)
	handle("GET /api/nlu/model", "/api/nlu/model", a.handleModelInfo)
	handle("POST /api/nlu/reinitialize", "/api/nlu/reinitialize", a.handleReinitialize)
	handle("GET /health", "/health", a.handleHealth)
	handle("GET /ready", "/ready", a.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (a *api) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !a.decode(w, r, &req) {
		return
	}

	res, err := a.svc.ProcessInput(r.Context(), *req.Text)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !a.decode(w, r, &req) {
		return
	}

	results, err := a.svc.ProcessBatch(r.Context(), req.Texts)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

func (a *api) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.ModelInfo())
}

func (a *api) handleReinitialize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := a.svc.Reinitialize(r.Context()); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	info := a.svc.ModelInfo()
	a.logger.Info("Model reinitialized via API", map[string]interface{}{
		"modelId":    info.ModelID,
		"durationMs": time.Since(start).Milliseconds(),
	})
	writeJSON(w, http.StatusOK, info)
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (a *api) handleReady(w http.ResponseWriter, r *http.Request) {
	if !a.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "training",
			"state":  a.svc.ModelInfo().State,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (a *api) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		a.writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "malformed JSON body: "+err.Error())
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		a.writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), err.Error())
		return false
	}
	return true
}

func (a *api) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		// client went away; nothing useful to send
		return
	}
	stdErr := apperrors.AsStandardError(err)

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case apperrors.ErrCodeModelNotTrained, apperrors.ErrCodeModelTrainingFailed, apperrors.ErrCodeCorpusLoadFailed:
		status = http.StatusServiceUnavailable
	}

	a.logger.WithError(err).Error("NLU request failed", map[string]interface{}{
		"path":   r.URL.Path,
		"code":   string(stdErr.Code),
		"status": status,
	})
	a.writeError(w, status, string(stdErr.Code), stdErr.Message)
}

func (a *api) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{
		Code:      code,
		Message:   message,
		RequestID: uuid.NewString(),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
