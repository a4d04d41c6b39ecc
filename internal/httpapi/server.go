package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/credtrack/server/internal/credtrack/service"
	"github.com/credtrack/server/internal/credtrack/store"
)

type Dependencies struct {
	Logger      *log.Logger
	Addr        string
	Compliance  *service.ComplianceService
	Submissions *service.SubmissionService

	// Defaults applied when the query string omits the knob.
	ActionItemLimit   int
	RenewalWindowDays int
}

type Server struct {
	httpServer        *http.Server
	logger            *log.Logger
	mux               *http.ServeMux
	compliance        *service.ComplianceService
	submissions       *service.SubmissionService
	actionItemLimit   int
	renewalWindowDays int
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	if d.ActionItemLimit <= 0 {
		d.ActionItemLimit = 5
	}
	if d.RenewalWindowDays <= 0 {
		d.RenewalWindowDays = 60
	}

	s := &Server{
		logger:            d.Logger,
		mux:               mux,
		compliance:        d.Compliance,
		submissions:       d.Submissions,
		actionItemLimit:   d.ActionItemLimit,
		renewalWindowDays: d.RenewalWindowDays,
	}

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/credentials", s.handleCredentials)
	mux.HandleFunc("GET /v1/credentials/{id}", s.handleCredential)
	mux.HandleFunc("POST /v1/credentials/{id}/document", s.handleSubmitDocument)
	mux.HandleFunc("GET /v1/action-items", s.handleActionItems)
	mux.HandleFunc("GET /v1/renewals", s.handleRenewals)
	mux.HandleFunc("GET /v1/accounts", s.handleAccounts)
	mux.HandleFunc("GET /v1/accounts/{id}", s.handleAccount)
	mux.HandleFunc("GET /v1/invitations", s.handleInvitations)
	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)

	handler := requestIDMiddleware(loggingMiddleware(d.Logger, mux))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.compliance.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := s.compliance.EnrichedCredentials(r.Context())
	if err != nil {
		s.writeServiceError(w, "credentials", err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	detail, err := s.compliance.CredentialWithAccounts(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, "credential", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	var sub service.Submission
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	cred, err := s.submissions.SubmitDocument(r.Context(), r.PathValue("id"), sub)
	if err != nil {
		s.writeServiceError(w, "submit_document", err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (s *Server) handleActionItems(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.intQuery(w, r, "limit", s.actionItemLimit)
	if !ok {
		return
	}

	items, err := s.compliance.ActionItems(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, "action_items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRenewals(w http.ResponseWriter, r *http.Request) {
	window, ok := s.intQuery(w, r, "within_days", s.renewalWindowDays)
	if !ok {
		return
	}

	groups, err := s.compliance.Renewals(r.Context(), window)
	if err != nil {
		s.writeServiceError(w, "renewals", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.compliance.Accounts(r.Context())
	if err != nil {
		s.writeServiceError(w, "accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := s.compliance.Invitations(r.Context())
	if err != nil {
		s.writeServiceError(w, "invitations", err)
		return
	}
	writeJSON(w, http.StatusOK, invitations)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	detail, err := s.compliance.AccountDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, "account", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.compliance.Dashboard(r.Context(), s.actionItemLimit, s.renewalWindowDays)
	if err != nil {
		s.writeServiceError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// intQuery parses an optional positive integer query parameter, falling
// back to def when absent. Writes a 400 and returns ok=false on garbage.
func (s *Server) intQuery(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// writeServiceError maps service errors onto HTTP statuses: sentinel
// validation errors are caller misuse (400), missing records are 404,
// anything else is logged and reported as a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no record with that id")
	case errors.Is(err, service.ErrInvalidCredentialID),
		errors.Is(err, service.ErrInvalidAccountID),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrInvalidSubmission):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	default:
		s.logger.Printf("%s error: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}
