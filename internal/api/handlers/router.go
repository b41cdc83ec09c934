package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the API route table. Session establishment endpoints
// stay outside the auth middleware; everything else requires an active
// session.
func NewRouter(
	sessionH *SessionHandler,
	sendersH *SendersHandler,
	categoriesH *CategoriesHandler,
	txH *TransactionsHandler,
	reportsH *ReportsHandler,
	auth func(http.Handler) http.Handler,
) *mux.Router {
	r := mux.NewRouter()

	health := &HealthHandler{}
	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	// Session lifecycle.
	r.HandleFunc("/api/session", sessionH.Restore).Methods(http.MethodGet)
	r.HandleFunc("/api/session/login", sessionH.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/session/demo", sessionH.StartDemo).Methods(http.MethodPost)
	r.HandleFunc("/api/session/logout", sessionH.Logout).Methods(http.MethodPost)

	// Everything below needs an active session.
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth)

	protected.HandleFunc("/session/mode", sessionH.ToggleMode).Methods(http.MethodPost)

	protected.HandleFunc("/senders", sendersH.List).Methods(http.MethodGet)
	protected.HandleFunc("/senders", sendersH.Add).Methods(http.MethodPost)
	protected.HandleFunc("/senders/{rowKey}", sendersH.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/categories", categoriesH.List).Methods(http.MethodGet)

	protected.HandleFunc("/transactions", txH.List).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id}", txH.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/transactions/{id}/sync", txH.SyncOne).Methods(http.MethodPost)

	protected.HandleFunc("/scan", txH.Scan).Methods(http.MethodPost)
	protected.HandleFunc("/scan/async", txH.ScanAsync).Methods(http.MethodPost)
	protected.HandleFunc("/jobs", txH.ListJobs).Methods(http.MethodGet)
	protected.HandleFunc("/jobs/{jobId}", txH.GetJob).Methods(http.MethodGet)

	protected.HandleFunc("/sync", txH.SyncAll).Methods(http.MethodPost)

	protected.HandleFunc("/reports", reportsH.Get).Methods(http.MethodGet)

	return r
}
