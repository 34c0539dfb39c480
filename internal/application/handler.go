// HTTP handlers for the application lifecycle.
//
// All routes expect an x-user-id header forwarded by the gateway.
//
// Routes:
//
//	POST /applications                  → apply to a job
//	GET  /applications                  → one page of the caller's applications
//	POST /applications/{id}/status      → company moves the application
//	POST /applications/{id}/withdraw    → applicant withdraws
package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/store"
)

// Handler adapts Service to HTTP.
type Handler struct {
	svc      *Service
	pageSize int
	log      *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, pageSize int, log *zap.Logger) *Handler {
	return &Handler{svc: svc, pageSize: pageSize, log: log}
}

// RegisterRoutes mounts all application routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/applications", h.handleApplications)
	mux.HandleFunc("/applications/", h.handleApplicationAction)
}

func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listApplications(w, r)
	case http.MethodPost:
		h.apply(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleApplicationAction handles POST /applications/{id}/status|withdraw
func (h *Handler) handleApplicationAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	appID := parts[1]

	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	switch parts[2] {
	case "status":
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
			jsonError(w, "body must contain status", http.StatusBadRequest)
			return
		}
		h.respond(w, h.svc.UpdateStatus(r.Context(), userID, appID, body.Status))
	case "withdraw":
		h.respond(w, h.svc.Withdraw(r.Context(), userID, appID))
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", parts[2]), http.StatusNotFound)
	}
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var body struct {
		JobID string `json:"jobid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.JobID == "" {
		jsonError(w, "body must contain jobid", http.StatusBadRequest)
		return
	}

	appID, err := h.svc.Apply(r.Context(), userID, body.JobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, map[string]string{"id": appID, "status": string(StatusApplied)})
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	sort, err := feed.ParseOption(r.URL.Query().Get("sort"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		if page, err = strconv.Atoi(s); err != nil || page < 1 {
			jsonError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	sortBy, sortOrder := sort.Keys(feed.SortApplicationDate)
	apps, err := h.svc.ListForUser(r.Context(), userID, feed.Params{
		Query:     r.URL.Query().Get("query"),
		Page:      page,
		PageSize:  h.pageSize,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, apps)
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, map[string]string{"result": "ok"})
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and masked.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "application not found", http.StatusNotFound)
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	default:
		h.log.Error("application handler error", zap.Error(err))
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// ── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
