package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"exposure-platform/internal/editors"
	"exposure-platform/internal/model"
	"exposure-platform/internal/models"
	"exposure-platform/internal/repository"
	"exposure-platform/internal/services"
	"exposure-platform/internal/validation"
	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

// StudyHandler handles the record editing API
type StudyHandler struct {
	study   *services.StudyService
	convert *services.ConvertService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(
	study *services.StudyService,
	convert *services.ConvertService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *StudyHandler {
	return &StudyHandler{
		study:   study,
		convert: convert,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Code    int           `json:"code"`
	Entry   *editors.View `json:"entry,omitempty"`
}

// FieldRequest is the body of a field update
type FieldRequest struct {
	Text string `json:"text"`
	Unit string `json:"unit"`
}

// UnitRequest is the body of a display unit change
type UnitRequest struct {
	Unit string `json:"unit"`
}

// ListResponse wraps the entries of one kind
type ListResponse struct {
	Kind    models.Kind    `json:"kind"`
	Entries []editors.View `json:"entries"`
	Total   int            `json:"total"`
}

// Route templates, used as metric labels
const (
	entriesPath = "/api/{kind}/entries"
	entryPath   = "/api/{kind}/entries/{id}"
	fieldPath   = "/api/{kind}/entries/{id}/fields/{field}"
	unitPath    = "/api/{kind}/entries/{id}/fields/{field}/unit"
	savePath    = "/api/{kind}/entries/{id}/save"
	cancelPath  = "/api/{kind}/entries/{id}/cancel"
	changesPath = "/api/{kind}/entries/{id}/changes"
	convertPath = "/api/convert"
	unitsPath   = "/api/units"
	summaryPath = "/api/summary"
	healthPath  = "/health"
)

func kindOf(r *http.Request) (models.Kind, error) {
	return models.ParseKind(mux.Vars(r)["kind"])
}

// ListEntries handles GET /api/{kind}/entries
func (h *StudyHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(entriesPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, entriesPath, err)
		return
	}
	views, err := h.study.List(r.Context(), kind)
	if err != nil {
		h.fail(w, r, entriesPath, err)
		return
	}

	h.metrics.RecordAPIRequest(entriesPath, r.Method, "200")
	h.sendJSON(w, ListResponse{Kind: kind, Entries: views, Total: len(views)}, http.StatusOK)
}

// CreateEntry handles POST /api/{kind}/entries
func (h *StudyHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(entriesPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, entriesPath, err)
		return
	}
	view, err := h.study.Create(r.Context(), kind)
	if err != nil {
		h.fail(w, r, entriesPath, err)
		return
	}

	h.metrics.RecordAPIRequest(entriesPath, r.Method, "201")
	w.Header().Set("Location", "/api/"+string(kind)+"/entries/"+view.ID)
	h.sendJSON(w, view, http.StatusCreated)
}

// GetEntry handles GET /api/{kind}/entries/{id}
func (h *StudyHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(entryPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, entryPath, err)
		return
	}
	view, err := h.study.Get(r.Context(), kind, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, entryPath, err)
		return
	}

	h.metrics.RecordAPIRequest(entryPath, r.Method, "200")
	h.sendJSON(w, view, http.StatusOK)
}

// DeleteEntry handles DELETE /api/{kind}/entries/{id}
func (h *StudyHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(entryPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, entryPath, err)
		return
	}
	if err := h.study.Delete(r.Context(), kind, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, entryPath, err)
		return
	}

	h.metrics.RecordAPIRequest(entryPath, r.Method, "204")
	w.WriteHeader(http.StatusNoContent)
}

// SetField handles PUT /api/{kind}/entries/{id}/fields/{field}. Rejected
// input answers 422 with the message and the updated entry.
func (h *StudyHandler) SetField(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(fieldPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, fieldPath, err)
		return
	}
	var req FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, fieldPath, "invalid request body", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	view, err := h.study.SetField(r.Context(), kind, vars["id"], vars["field"], req.Text, req.Unit)
	if err != nil {
		h.failWithEntry(w, r, fieldPath, err, view)
		return
	}

	h.metrics.RecordAPIRequest(fieldPath, r.Method, "200")
	h.sendJSON(w, view, http.StatusOK)
}

// SetUnit handles PUT /api/{kind}/entries/{id}/fields/{field}/unit
func (h *StudyHandler) SetUnit(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(unitPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, unitPath, err)
		return
	}
	var req UnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, unitPath, "invalid request body", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	view, err := h.study.SetUnit(r.Context(), kind, vars["id"], vars["field"], req.Unit)
	if err != nil {
		h.failWithEntry(w, r, unitPath, err, view)
		return
	}

	h.metrics.RecordAPIRequest(unitPath, r.Method, "200")
	h.sendJSON(w, view, http.StatusOK)
}

// SaveEntry handles POST /api/{kind}/entries/{id}/save. An entry with
// validation errors answers 422 and stays as it is.
func (h *StudyHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(savePath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, savePath, err)
		return
	}
	view, err := h.study.Save(r.Context(), kind, mux.Vars(r)["id"])
	if err != nil {
		h.failWithEntry(w, r, savePath, err, view)
		return
	}

	h.metrics.RecordAPIRequest(savePath, r.Method, "200")
	h.sendJSON(w, view, http.StatusOK)
}

// CancelEntry handles POST /api/{kind}/entries/{id}/cancel
func (h *StudyHandler) CancelEntry(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(cancelPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, cancelPath, err)
		return
	}
	view, err := h.study.Cancel(r.Context(), kind, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, cancelPath, err)
		return
	}

	h.metrics.RecordAPIRequest(cancelPath, r.Method, "200")
	h.sendJSON(w, view, http.StatusOK)
}

// GetChanges handles GET /api/{kind}/entries/{id}/changes
func (h *StudyHandler) GetChanges(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(changesPath).ObserveDuration()

	kind, err := kindOf(r)
	if err != nil {
		h.fail(w, r, changesPath, err)
		return
	}
	cs, err := h.study.Changes(r.Context(), kind, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, changesPath, err)
		return
	}

	h.metrics.RecordAPIRequest(changesPath, r.Method, "200")
	h.sendJSON(w, cs, http.StatusOK)
}

// Convert handles GET /api/convert?family=&value=&from=&to=
func (h *StudyHandler) Convert(w http.ResponseWriter, r *http.Request) {
	defer h.metrics.RequestTimer(convertPath).ObserveDuration()

	q := r.URL.Query()
	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		h.sendError(w, r, convertPath, "invalid value, expected a number", http.StatusBadRequest)
		return
	}

	conv, err := h.convert.Convert(q.Get("family"), value, q.Get("from"), q.Get("to"))
	if err != nil {
		h.metrics.RecordAPIError("bad_request", convertPath)
		h.sendError(w, r, convertPath, err.Error(), http.StatusBadRequest)
		return
	}

	h.metrics.RecordAPIRequest(convertPath, r.Method, "200")
	h.sendJSON(w, conv, http.StatusOK)
}

// Units handles GET /api/units
func (h *StudyHandler) Units(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest(unitsPath, r.Method, "200")
	h.sendJSON(w, services.Families(), http.StatusOK)
}

// Summary handles GET /api/summary
func (h *StudyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest(summaryPath, r.Method, "200")
	h.sendJSON(w, h.study.Summary(), http.StatusOK)
}

// HealthCheck handles GET /health
func (h *StudyHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK
	if err := h.study.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_FAILED] Storage is unavailable", logging.Fields{}, err)
		status["status"] = "unhealthy"
		status["error"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.metrics.RecordAPIRequest(healthPath, r.Method, strconv.Itoa(code))
	h.sendJSON(w, status, code)
}

// statusOf maps service errors to HTTP status codes
func statusOf(err error) (int, string) {
	var nf *repository.NotFoundError
	var ve *models.ValidationError
	var fe *validation.FieldError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &ve), errors.Is(err, editors.ErrUnknownField):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &fe), errors.Is(err, model.ErrInvalid):
		return http.StatusUnprocessableEntity, "invalid_entry"
	}
	return http.StatusInternalServerError, "internal_error"
}

func (h *StudyHandler) fail(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	h.failWithEntry(w, r, endpoint, err, editors.View{})
}

// failWithEntry sends err, attaching view when it names an entry
func (h *StudyHandler) failWithEntry(w http.ResponseWriter, r *http.Request, endpoint string, err error, view editors.View) {
	status, errType := statusOf(err)
	h.metrics.RecordAPIError(errType, endpoint)

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
			"method":   r.Method,
		}, err)
		message = "internal server error"
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(status))
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	if view.ID != "" {
		response.Entry = &view
	}
	h.sendJSON(w, response, status)
}

// sendJSON sends a JSON response
func (h *StudyHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *StudyHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all study API routes
func (h *StudyHandler) RegisterRoutes(router *mux.Router) {
	router.Use(RequestID(h.logger))

	router.HandleFunc(entriesPath, h.ListEntries).Methods("GET")
	router.HandleFunc(entriesPath, h.CreateEntry).Methods("POST")
	router.HandleFunc(entryPath, h.GetEntry).Methods("GET")
	router.HandleFunc(entryPath, h.DeleteEntry).Methods("DELETE")
	router.HandleFunc(fieldPath, h.SetField).Methods("PUT")
	router.HandleFunc(unitPath, h.SetUnit).Methods("PUT")
	router.HandleFunc(savePath, h.SaveEntry).Methods("POST")
	router.HandleFunc(cancelPath, h.CancelEntry).Methods("POST")
	router.HandleFunc(changesPath, h.GetChanges).Methods("GET")

	router.HandleFunc(convertPath, h.Convert).Methods("GET")
	router.HandleFunc(unitsPath, h.Units).Methods("GET")
	router.HandleFunc(summaryPath, h.Summary).Methods("GET")
	router.HandleFunc("/api/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc(healthPath, h.HealthCheck).Methods("GET")
}
