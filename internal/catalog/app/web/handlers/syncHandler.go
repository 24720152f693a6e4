package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"catalogsync_api/internal/catalog/business"
	"catalogsync_api/pkg/dbconnect"
)

// One run may take many pages; the bound exists so a stuck remote cannot pin
// the handler forever.
const syncRunTimeout = 10 * time.Minute

type SyncHandler struct {
	dbconnect.Database
	syncService *business.SyncService
}

func NewSyncHandler(connector dbconnect.Database, syncService *business.SyncService) *SyncHandler {
	return &SyncHandler{
		Database:    connector,
		syncService: syncService,
	}
}

func (h *SyncHandler) Connect() (*sql.DB, error) {
	return h.Database.Connect()
}

func (h *SyncHandler) Ping() error {
	return h.Database.Ping()
}

// RunSyncHandler serves POST /api/sync: one full fetch-normalize-reconcile
// cycle. The report is returned even when the run stops early on a fetch
// error; everything reconciled before the failure stays committed.
func (h *SyncHandler) RunSyncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.Ping(); err != nil {
		http.Error(w, "Failed to ping database", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), syncRunTimeout)
	defer cancel()

	report, runErr := h.syncService.Run(ctx)

	response := struct {
		*business.SyncReport
		RunError string `json:"runError,omitempty"`
	}{SyncReport: report}
	if runErr != nil {
		response.RunError = runErr.Error()
		w.WriteHeader(http.StatusBadGateway)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode sync report: %v", err)
	}
}
