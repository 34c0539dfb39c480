// Package server exposes the match service over HTTP.
//
// Feed endpoints hold paginated state server-side so infinite scroll
// survives across requests:
//
//	POST  /feeds              → create a feed session, run the initial load
//	POST  /feeds/{id}/more    → load the next page
//	PATCH /feeds/{id}         → change query or sort (resets the feed)
//	GET   /users/{id}/completion
//	GET   /health
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/application"
	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/model"
	"github.com/TomZ28/matcha/internal/profile"
	"github.com/TomZ28/matcha/internal/store"
)

// Server wires the HTTP surface together.
type Server struct {
	store    *store.Store
	profiles *profile.Service
	apps     *application.Handler
	sessions *Sessions
	pageSize int
	log      *zap.Logger
}

func New(st *store.Store, profiles *profile.Service, apps *application.Handler, sessions *Sessions, pageSize int, log *zap.Logger) *Server {
	return &Server{
		store:    st,
		profiles: profiles,
		apps:     apps,
		sessions: sessions,
		pageSize: pageSize,
		log:      log,
	}
}

// Routes builds the full mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/feeds", s.handleCreateFeed)
	mux.HandleFunc("/feeds/", s.handleFeedAction)
	mux.HandleFunc("/users/", s.handleUserCompletion)
	s.apps.RegisterRoutes(mux)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

// createFeedRequest selects which collaborator backs the feed. company_id
// narrows a jobs feed to one company; job_id turns a users feed into
// suggested candidates and an applications feed into the applicant list
// for that posting.
type createFeedRequest struct {
	Type      string `json:"type"`
	Query     string `json:"query"`
	Sort      string `json:"sort"`
	CompanyID string `json:"company_id"`
	JobID     string `json:"job_id"`
}

func (s *Server) handleCreateFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var req createFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid body", http.StatusBadRequest)
		return
	}
	sort, err := feed.ParseOption(req.Sort)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := s.buildView(userID, req)
	if err != nil {
		var ve *store.ValidationError
		if errors.As(err, &ve) {
			jsonError(w, ve.Msg, http.StatusBadRequest)
			return
		}
		s.log.Error("feed construction failed", zap.String("type", req.Type), zap.Error(err))
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	v.Init(req.Query, sort)
	v.LoadInitial(r.Context())

	id := s.sessions.Put(userID, v)
	jsonOK(w, map[string]any{"id": id, "feed": v.Snapshot()})
}

// buildView maps a feed type onto the store collaborator that fetches its
// pages.
func (s *Server) buildView(userID string, req createFeedRequest) (feedView, error) {
	switch req.Type {
	case "jobs":
		fetch := func(ctx context.Context, p feed.Params) ([]model.Job, error) {
			if req.CompanyID != "" {
				return s.store.PaginatedJobsByCompany(ctx, userID, req.CompanyID, p)
			}
			return s.store.PaginatedJobs(ctx, userID, p)
		}
		f, err := feed.New(fetch, func(j model.Job) string { return j.ID }, s.pageSize, feed.SortPostedDate)
		if err != nil {
			return nil, err
		}
		return newView(f), nil

	case "companies":
		fetch := func(ctx context.Context, p feed.Params) ([]model.Company, error) {
			return s.store.PaginatedCompanies(ctx, p)
		}
		f, err := feed.New(fetch, func(c model.Company) string { return c.ID }, s.pageSize, feed.SortCompanyName)
		if err != nil {
			return nil, err
		}
		return newView(f), nil

	case "users":
		if req.JobID != "" {
			fetch := func(ctx context.Context, p feed.Params) ([]model.Applicant, error) {
				return s.store.PaginatedSuggestedUsersByJob(ctx, req.JobID, p)
			}
			f, err := feed.New(fetch, func(a model.Applicant) string { return a.ID }, s.pageSize, feed.SortFirstName)
			if err != nil {
				return nil, err
			}
			return newView(f), nil
		}
		fetch := func(ctx context.Context, p feed.Params) ([]model.UserProfile, error) {
			return s.store.PaginatedUsers(ctx, p)
		}
		f, err := feed.New(fetch, func(u model.UserProfile) string { return u.ID }, s.pageSize, feed.SortFirstName)
		if err != nil {
			return nil, err
		}
		return newView(f), nil

	case "applications":
		if req.JobID != "" {
			fetch := func(ctx context.Context, p feed.Params) ([]model.Applicant, error) {
				return s.store.PaginatedApplicantsByJob(ctx, req.JobID, p)
			}
			f, err := feed.New(fetch, func(a model.Applicant) string { return a.ID }, s.pageSize, feed.SortApplicationDate)
			if err != nil {
				return nil, err
			}
			return newView(f), nil
		}
		fetch := func(ctx context.Context, p feed.Params) ([]model.Application, error) {
			return s.store.PaginatedApplicationsByUser(ctx, userID, p)
		}
		f, err := feed.New(fetch, func(a model.Application) string { return a.ID }, s.pageSize, feed.SortApplicationDate)
		if err != nil {
			return nil, err
		}
		return newView(f), nil

	default:
		return nil, &store.ValidationError{Msg: fmt.Sprintf("unknown feed type %q", req.Type)}
	}
}

// handleFeedAction handles POST /feeds/{id}/more and PATCH /feeds/{id}.
func (s *Server) handleFeedAction(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[2] == "more" && r.Method == http.MethodPost:
		sess, ok := s.sessions.Get(parts[1], userID)
		if !ok {
			jsonError(w, "feed not found", http.StatusNotFound)
			return
		}
		sess.view.TriggerLoad(r.Context())
		jsonOK(w, sess.view.Snapshot())

	case len(parts) == 2 && r.Method == http.MethodPatch:
		sess, ok := s.sessions.Get(parts[1], userID)
		if !ok {
			jsonError(w, "feed not found", http.StatusNotFound)
			return
		}
		var body struct {
			Query *string `json:"query"`
			Sort  *string `json:"sort"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			jsonError(w, "invalid body", http.StatusBadRequest)
			return
		}
		if body.Sort != nil {
			sort, err := feed.ParseOption(*body.Sort)
			if err != nil {
				jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
			sess.view.SetSort(r.Context(), sort)
		}
		if body.Query != nil {
			// Queries arrive per keystroke; the commit is debounced so
			// only the settled term reaches the store. The snapshot
			// returned here reflects the state before the commit lands.
			query := *body.Query
			v := sess.view
			sess.debounce.Call(func() {
				v.SetQuery(context.Background(), query)
			})
		}
		jsonOK(w, sess.view.Snapshot())

	default:
		jsonError(w, "not found", http.StatusNotFound)
	}
}

// handleUserCompletion handles GET /users/{id}/completion.
func (s *Server) handleUserCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "completion" {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if r.Header.Get("x-user-id") == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}
	targetID := parts[1]

	percent, err := s.profiles.Completion(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "profile not found", http.StatusNotFound)
			return
		}
		s.log.Error("completion lookup failed", zap.String("user_id", targetID), zap.Error(err))
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	complete, err := s.profiles.IsComplete(r.Context(), targetID)
	if err != nil {
		s.log.Error("profile complete lookup failed", zap.String("user_id", targetID), zap.Error(err))
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{"percent": percent, "complete": complete})
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
