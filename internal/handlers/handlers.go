package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"todolist/internal/models"
	"todolist/internal/service"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	tasks  service.TaskService
	logger *log.Logger
}

// New creates a new Handlers instance.
func New(tasks service.TaskService, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{
		tasks:  tasks,
		logger: logger,
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// parseID extracts and parses a positive integer ID from URL parameters.
func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("invalid task id")
	}
	return id, nil
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError sends an error response with the given status code.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorBody{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    code,
		Error:     http.StatusText(code),
		Message:   message,
	})
}

// respondServiceError maps a TaskService failure onto a response. Anything
// that is not a known domain error is logged and hidden behind a 500.
func (h *Handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	te, ok := models.AsTaskError(err)
	if !ok || te.Kind == models.KindTransport {
		h.logger.Error("internal server error",
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondError(w, te.Code, te.Message)
}
