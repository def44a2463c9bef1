package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"leadbridge/internal/errors"
	"leadbridge/internal/metrics"
	"leadbridge/internal/middleware"
	"leadbridge/internal/models"
	"leadbridge/internal/service"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// customerStore defines the database operations the customer endpoints need
type customerStore interface {
	SaveCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetAllCustomers(ctx context.Context) ([]models.Customer, error)
}

type Server struct {
	router    *mux.Router
	logger    *logrus.Logger
	leads     *service.LeadService
	syncer    service.ContactSyncer
	watcher   *service.LeadWatcher
	customers customerStore
	cfg       models.ServerConfig
	server    *http.Server
}

func NewServer(cfg models.ServerConfig, leads *service.LeadService, syncer service.ContactSyncer, watcher *service.LeadWatcher, customers customerStore, logger *logrus.Logger) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		leads:     leads,
		syncer:    syncer,
		watcher:   watcher,
		customers: customers,
		cfg:       cfg,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/leads", s.handleListLeads()).Methods(http.MethodGet)
	api.HandleFunc("/leads", s.handleCreateLead()).Methods(http.MethodPost)
	api.HandleFunc("/leads/subscribe", s.handleLeadSubscription()).Methods(http.MethodGet)
	api.HandleFunc("/leads/{id}", s.handleGetLead()).Methods(http.MethodGet)
	api.HandleFunc("/leads/{id}", s.handleDeleteLead()).Methods(http.MethodDelete)
	api.HandleFunc("/leads/{id}/status", s.handleUpdateLeadStatus()).Methods(http.MethodPost)
	api.HandleFunc("/leads/{id}/notes", s.handleAddLeadNote()).Methods(http.MethodPost)
	api.HandleFunc("/leads/{id}/hide", s.handleHideLead()).Methods(http.MethodPost)
	api.HandleFunc("/leads/{id}/convert", s.handleConvertLead()).Methods(http.MethodPost)
	api.HandleFunc("/leads/{id}/message", s.handleSendMessage()).Methods(http.MethodPost)

	api.HandleFunc("/customers", s.handleListCustomers()).Methods(http.MethodGet)
	api.HandleFunc("/customers", s.handleCreateCustomer()).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", s.handleGetCustomer()).Methods(http.MethodGet)

	api.HandleFunc("/sync", s.handleTriggerSync()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.cfg.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, metrics.GetAllMetrics())
	}
}

func (s *Server) handleListLeads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leads, err := s.leads.ListLeads(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		if leads == nil {
			leads = []models.Lead{}
		}
		s.writeJSON(w, http.StatusOK, leads)
	}
}

func (s *Server) handleCreateLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.CreateLeadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		lead, err := s.leads.CreateLead(r.Context(), req)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, lead)
	}
}

func (s *Server) handleGetLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lead, err := s.leads.GetLead(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, lead)
	}
}

func (s *Server) handleDeleteLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.leads.DeleteLead(r.Context(), mux.Vars(r)["id"]); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleUpdateLeadStatus() http.HandlerFunc {
	type statusRequest struct {
		Status models.LeadStatus `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		leadID := mux.Vars(r)["id"]

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		// Same-status updates are skipped at the call site; the repository
		// itself does not enforce this
		current, err := s.leads.GetLead(r.Context(), leadID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if current.Status == req.Status {
			s.writeJSON(w, http.StatusOK, current)
			return
		}

		lead, err := s.leads.UpdateLeadStatus(r.Context(), leadID, req.Status)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, lead)
	}
}

func (s *Server) handleAddLeadNote() http.HandlerFunc {
	type noteRequest struct {
		Text      string            `json:"text"`
		CreatedBy models.NoteAuthor `json:"createdBy"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		note := models.Note{Text: req.Text, CreatedBy: req.CreatedBy}
		lead, err := s.leads.AddLeadNote(r.Context(), mux.Vars(r)["id"], note)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, lead)
	}
}

func (s *Server) handleHideLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lead, err := s.leads.HideLead(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, lead)
	}
}

func (s *Server) handleConvertLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lead, err := s.leads.ConvertToCustomer(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, lead)
	}
}

func (s *Server) handleSendMessage() http.HandlerFunc {
	type messageRequest struct {
		Message string `json:"message"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		resp, err := s.leads.SendMessage(r.Context(), mux.Vars(r)["id"], req.Message)
		if err != nil {
			metrics.IncrementCounter("message_sends_total", map[string]string{"outcome": "failed"}, "Outbound message sends")
			s.writeError(w, err)
			return
		}
		metrics.IncrementCounter("message_sends_total", map[string]string{"outcome": "ok"}, "Outbound message sends")
		s.writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleListCustomers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customers, err := s.customers.GetAllCustomers(r.Context())
		if err != nil {
			s.writeError(w, errors.NewDatabaseError("list customers", err))
			return
		}
		if customers == nil {
			customers = []models.Customer{}
		}
		s.writeJSON(w, http.StatusOK, customers)
	}
}

func (s *Server) handleCreateCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var customer models.Customer
		if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}
		if customer.Name == "" {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "customer name cannot be empty"))
			return
		}

		if err := s.customers.SaveCustomer(r.Context(), &customer); err != nil {
			s.writeError(w, errors.NewDatabaseError("create customer", err))
			return
		}
		s.writeJSON(w, http.StatusCreated, customer)
	}
}

func (s *Server) handleGetCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		customer, err := s.customers.GetCustomer(r.Context(), id)
		if err != nil {
			s.writeError(w, errors.NewDatabaseError("get customer", err))
			return
		}
		if customer == nil {
			s.writeError(w, errors.NewNotFoundError("customer", id))
			return
		}
		s.writeJSON(w, http.StatusOK, customer)
	}
}

func (s *Server) handleTriggerSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.syncer.SyncWithManyChat(r.Context()); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleLeadSubscription upgrades to a websocket and streams full lead
// snapshots. Each message replaces the previous state entirely. A terminal
// watcher error is delivered once, then the connection closes; clients are
// not resubscribed automatically.
func (s *Server) handleLeadSubscription() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to accept lead subscription")
			return
		}

		snapshots, unsubscribe := s.watcher.Subscribe()
		defer unsubscribe()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return
			case snapshot, ok := <-snapshots:
				if !ok {
					_ = conn.Close(websocket.StatusNormalClosure, "")
					return
				}

				data, err := json.Marshal(snapshot)
				if err != nil {
					s.logger.WithError(err).Error("Failed to marshal lead snapshot")
					_ = conn.Close(websocket.StatusInternalError, "snapshot marshal failed")
					return
				}

				writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				err = conn.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					return
				}

				if snapshot.Err != "" {
					_ = conn.Close(websocket.StatusInternalError, "lead subscription failed")
					return
				}
			}
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeValidationFailed:
		status = http.StatusBadRequest
	case errors.ErrCodeRateLimit:
		status = http.StatusTooManyRequests
	case errors.ErrCodeManyChatAPI, errors.ErrCodeSyncFailed:
		status = http.StatusBadGateway
	}

	if status >= 500 {
		s.logger.WithError(err).Error("Request failed")
	}

	message := errors.GetUserMessage(err)
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.UserMessage == "" && status < 500 {
		// Client errors without a curated user message expose the validation
		// message itself
		message = appErr.Message
	}

	s.writeJSON(w, status, map[string]string{"error": message, "code": string(errors.GetCode(err))})
}
