package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/api/middleware"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/jobs"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/workflow"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	controller *workflow.Controller
	log        zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(controller *workflow.Controller, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{controller: controller, log: log}
}

// Login handles POST /api/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.controller.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.log.Error().Err(err).Msg("Login failed")
		middleware.WriteError(w, http.StatusBadGateway, "Login failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// StartDemo handles POST /api/session/demo
func (h *SessionHandler) StartDemo(w http.ResponseWriter, r *http.Request) {
	user := h.controller.StartDemo(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Restore handles GET /api/session
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	user := h.controller.User()
	if user == nil {
		user = h.controller.Restore(r.Context())
	}
	if user == nil {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Logout handles POST /api/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Logout(); err != nil {
		h.log.Error().Err(err).Msg("Logout failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ToggleMode handles POST /api/session/mode
func (h *SessionHandler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	user, err := h.controller.ToggleDemoMode(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "No active session")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// SendersHandler handles sender registry endpoints.
type SendersHandler struct {
	controller *workflow.Controller
	log        zerolog.Logger
}

// NewSendersHandler creates a new senders handler.
func NewSendersHandler(controller *workflow.Controller, log zerolog.Logger) *SendersHandler {
	return &SendersHandler{controller: controller, log: log}
}

// List handles GET /api/senders
func (h *SendersHandler) List(w http.ResponseWriter, r *http.Request) {
	senders := h.controller.Senders()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"senders": senders,
		"count":   len(senders),
	})
}

// Add handles POST /api/senders
func (h *SendersHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		middleware.WriteError(w, http.StatusBadRequest, "A valid email address is required")
		return
	}

	if err := h.controller.AddSender(r.Context(), req.Email); err != nil {
		h.log.Error().Err(err).Str("email", req.Email).Msg("Failed to add sender")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to add sender")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"senders": h.controller.Senders(),
	})
}

// Delete handles DELETE /api/senders/{rowKey}
func (h *SendersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rowKey := mux.Vars(r)["rowKey"]
	if rowKey == "" {
		middleware.WriteError(w, http.StatusBadRequest, "rowKey is required")
		return
	}

	if err := h.controller.RemoveSender(r.Context(), rowKey); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Sender not found")
			return
		}
		h.log.Error().Err(err).Str("row_key", rowKey).Msg("Failed to delete sender")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to delete sender")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"senders": h.controller.Senders(),
	})
}

// CategoriesHandler handles the category registry endpoint.
type CategoriesHandler struct {
	controller *workflow.Controller
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(controller *workflow.Controller) *CategoriesHandler {
	return &CategoriesHandler{controller: controller}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.controller.Categories(),
	})
}

// TransactionsHandler handles the scan, review, and sync endpoints.
type TransactionsHandler struct {
	controller *workflow.Controller
	publisher  jobs.Publisher
	store      jobs.JobStore
	log        zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler. publisher and
// store may be nil when background scans are disabled.
func NewTransactionsHandler(controller *workflow.Controller, publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		controller: controller,
		publisher:  publisher,
		store:      store,
		log:        log,
	}
}

// List handles GET /api/transactions — the reviewed list currently held by
// the workflow controller, plus its busy flags.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": h.controller.Transactions(),
		"loading":      h.controller.Loading(),
		"syncing":      h.controller.Syncing(),
	})
}

type scanRequest struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

func (req *scanRequest) validate() string {
	if _, err := domain.ParseDate(req.DateFrom); err != nil {
		return "dateFrom must be a YYYY-MM-DD date"
	}
	if _, err := domain.ParseDate(req.DateTo); err != nil {
		return "dateTo must be a YYYY-MM-DD date"
	}
	if req.DateFrom > req.DateTo {
		return "dateFrom must not be after dateTo"
	}
	return ""
}

// Scan handles POST /api/scan — a synchronous scan of the date window.
func (h *TransactionsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		middleware.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	txs := h.controller.Scan(r.Context(), req.DateFrom, req.DateTo)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// ScanAsync handles POST /api/scan/async — enqueues a background scan job
// and returns its ID for polling.
func (h *TransactionsHandler) ScanAsync(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusNotImplemented, "Background scans are disabled")
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		middleware.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	user := h.controller.User()
	if user == nil {
		middleware.WriteError(w, http.StatusUnauthorized, "No active session")
		return
	}

	senders := h.controller.Senders()
	emails := make([]string, 0, len(senders))
	for _, s := range senders {
		emails = append(emails, s.Email)
	}

	job := &jobs.ScanJob{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Senders:  emails,
		IsDemo:   user.IsDemo,
	}
	if err := h.publisher.PublishScan(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scan job")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{jobId}
func (h *TransactionsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.WriteError(w, http.StatusNotImplemented, "Background scans are disabled")
		return
	}

	jobID := mux.Vars(r)["jobId"]
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *TransactionsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.WriteError(w, http.StatusNotImplemented, "Background scans are disabled")
		return
	}

	filter := jobs.JobFilter{
		Status: jobs.JobStatus(r.URL.Query().Get("status")),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// SyncAll handles POST /api/sync — persists every unsynced transaction in
// the reviewed list.
func (h *TransactionsHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	results := h.controller.SyncAll(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results":      results,
		"transactions": h.controller.Transactions(),
	})
}

// SyncOne handles POST /api/transactions/{id}/sync
func (h *TransactionsHandler) SyncOne(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := h.controller.SyncOne(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		middleware.WriteError(w, http.StatusUnauthorized, "No active session")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"success": ok,
	})
}

// Update handles PATCH /api/transactions/{id} — the optimistic edit path.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var update domain.TransactionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.controller.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		middleware.WriteError(w, http.StatusUnauthorized, "No active session")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"transaction": tx})
}

// ReportsHandler handles the reporting endpoint.
type ReportsHandler struct {
	controller *workflow.Controller
	log        zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(controller *workflow.Controller, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{controller: controller, log: log}
}

// Get handles GET /api/reports?dateFrom=&dateTo=&categories=&types=
// Categories and types are comma-separated and narrow only the transaction
// list; totals always cover the whole date window.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ReportFilter{
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}
	if filter.DateFrom != "" {
		if _, err := domain.ParseDate(filter.DateFrom); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "dateFrom must be a YYYY-MM-DD date")
			return
		}
	}
	if filter.DateTo != "" {
		if _, err := domain.ParseDate(filter.DateTo); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "dateTo must be a YYYY-MM-DD date")
			return
		}
	}
	if raw := q.Get("categories"); raw != "" {
		filter.Categories = strings.Split(raw, ",")
	}
	if raw := q.Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			filter.Types = append(filter.Types, domain.TransactionType(t))
		}
	}

	report := h.controller.Report(r.Context(), filter)
	middleware.WriteJSON(w, http.StatusOK, report)
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
