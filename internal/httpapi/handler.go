package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/queue"
	"fila/queue-manager/internal/store"
	"fila/queue-manager/internal/userdir"
)

type Handler struct {
	tickets  *queue.Service
	store    store.TicketStore
	users    *userdir.Directory
	notifier Notifier
	caller   Caller
}

// Notifier is poked after every local write so the watcher re-reads the
// store before the next scheduled cycle.
type Notifier interface {
	Kick()
}

// Caller reports the ticket currently being announced.
type Caller interface {
	Current() (models.Ticket, bool)
}

type Options struct {
	Notifier Notifier
	Caller   Caller
}

type createTicketRequest struct {
	CustomerName string `json:"customer_name"`
	OrderNumber  string `json:"order_number"`
	ClientType   string `json:"client_type"`
	VehicleType  string `json:"vehicle_type"`
	Priority     string `json:"priority"`
	SessionDate  string `json:"session_date"`
}

type statusRequest struct {
	SessionDate string `json:"session_date"`
	Status      string `json:"status"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

type queuesResponse struct {
	Waiting        []models.Ticket `json:"waiting"`
	InSeparation   []models.Ticket `json:"in_separation"`
	Ready          []models.Ticket `json:"ready"`
	Called         []models.Ticket `json:"called"`
	Finished       []models.Ticket `json:"finished"`
	Board          []models.Ticket `json:"board"`
	RecentArrivals []models.Ticket `json:"recent_arrivals"`
	Stats          queue.Stats     `json:"stats"`
}

const recentArrivalsLimit = 5

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(tickets *queue.Service, st store.TicketStore, users *userdir.Directory, options Options) *Handler {
	return &Handler{
		tickets:  tickets,
		store:    st,
		users:    users,
		notifier: options.Notifier,
		caller:   options.Caller,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/users", h.handleUsers)
	mux.HandleFunc("/api/users/", h.handleUserByID)
	mux.HandleFunc("/api/tickets", h.handleTickets)
	mux.HandleFunc("/api/tickets/", h.handleTicketActions)
	mux.HandleFunc("/api/queues", h.handleQueues)
	mux.HandleFunc("/api/calling", h.handleCalling)
	mux.HandleFunc("/api/reports", h.handleReports)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleTickets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateTicket(w, r)
	case http.MethodGet:
		h.handleListTickets(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.SessionDate = strings.TrimSpace(req.SessionDate)
	if req.SessionDate == "" {
		req.SessionDate = time.Now().UTC().Format("2006-01-02")
	}
	if !isValidDate(req.SessionDate) {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_date must be YYYY-MM-DD")
		return
	}

	ticket, err := h.tickets.Create(r.Context(), queue.CreateInput{
		CustomerName: req.CustomerName,
		OrderNumber:  req.OrderNumber,
		ClientType:   req.ClientType,
		VehicleType:  req.VehicleType,
		Priority:     req.Priority,
		SessionDate:  req.SessionDate,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	h.kick()
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) handleListTickets(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	tickets, err := h.store.GetTickets(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) handleTicketActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tickets/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleDeleteTicket(w, r, parts[0])
	case len(parts) == 2 && (parts[1] == "transition" || parts[1] == "override"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStatusChange(w, r, parts[0], parts[1] == "override")
	default:
		writeError(w, http.StatusNotFound, "not_found", "no such resource")
	}
}

func (h *Handler) handleStatusChange(w http.ResponseWriter, r *http.Request, ticketID string, override bool) {
	var req statusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.SessionDate = strings.TrimSpace(req.SessionDate)
	if !isValidDate(req.SessionDate) {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_date must be YYYY-MM-DD")
		return
	}

	var ticket models.Ticket
	var err error
	if override {
		ticket, err = h.tickets.Override(r.Context(), req.SessionDate, ticketID, req.Status)
	} else {
		ticket, err = h.tickets.Transition(r.Context(), req.SessionDate, ticketID, req.Status)
	}
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	h.kick()
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleDeleteTicket(w http.ResponseWriter, r *http.Request, ticketID string) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if err := h.tickets.Remove(r.Context(), date, ticketID); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	h.kick()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleQueues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	tickets, err := h.store.GetTickets(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, queuesResponse{
		Waiting:        queue.Waiting(tickets),
		InSeparation:   queue.InSeparation(tickets),
		Ready:          queue.Ready(tickets),
		Called:         queue.Called(tickets),
		Finished:       queue.Finished(tickets),
		Board:          queue.ActiveBoard(tickets),
		RecentArrivals: queue.RecentArrivals(tickets, recentArrivalsLimit),
		Stats:          queue.ComputeStats(tickets),
	})
}

func (h *Handler) handleCalling(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.caller == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"calling": false})
		return
	}
	ticket, ok := h.caller.Current()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]bool{"calling": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"calling": true, "ticket": ticket})
}

func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if !isValidDate(from) || !isValidDate(to) {
		writeError(w, http.StatusBadRequest, "invalid_request", "from and to must be YYYY-MM-DD")
		return
	}
	start, _ := time.Parse("2006-01-02", from)
	end, _ := time.Parse("2006-01-02", to)
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "invalid_request", "to must not precede from")
		return
	}
	if end.Sub(start) > 92*24*time.Hour {
		writeError(w, http.StatusBadRequest, "invalid_request", "date range too large")
		return
	}

	var all []models.Ticket
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		tickets, err := h.store.GetTickets(r.Context(), day.Format("2006-01-02"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		all = append(all, tickets...)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"from":    from,
		"to":      to,
		"total":   len(all),
		"stats":   queue.ComputeStats(all),
		"tickets": queue.MonitorOrder(all),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}
	user, err := h.users.FindByCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, userdir.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := h.users.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		var req createUserRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		user, err := h.users.Create(r.Context(), req.Username, req.Password, req.Role, req.Name)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user id is required")
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) kick() {
	if h.notifier != nil {
		h.notifier.Kick()
	}
}

func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if !isValidDate(date) {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}

func isValidDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, queue.ErrCustomerNameRequired),
		errors.Is(err, queue.ErrOrderNumberRequired),
		errors.Is(err, queue.ErrSessionDateRequired),
		errors.Is(err, queue.ErrUnknownStatus),
		errors.Is(err, userdir.ErrMissingFields):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, queue.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition", err.Error()
	case errors.Is(err, store.ErrTicketNotFound), errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, store.ErrUsernameTaken):
		return http.StatusConflict, "username_taken", err.Error()
	case errors.Is(err, userdir.ErrMasterAdmin):
		return http.StatusForbidden, "master_admin", err.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
