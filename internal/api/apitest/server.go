// Package apitest is an in-memory stand-in for the Serenify backend's vent,
// feedback and auth routes, for use in tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-vent/internal/models"
)

// Route names accepted by Calls.
const (
	RouteCreateVent = "POST /api/vent"
	RouteListVents  = "GET /api/vent"
	RouteFeedback   = "POST /api/feedback"
	RouteSignin     = "POST /api/auth/signin"
	RouteSignup     = "POST /api/auth/signup"
)

// Verdict is what the scripted moderator decides for one message.
// A non-zero Status answers with that HTTP status and a JSON error body
// instead of an in-band flag.
type Verdict struct {
	Warning bool
	Blocked bool
	Message string
	Status  int
}

// Moderator scores a message. userID is empty for guests.
type Moderator func(message, userID string) Verdict

type account struct {
	user     models.User
	password string
}

// Server is a scripted fake of the backend. The zero verdict accepts every
// message. Guest vents are scored and answered but not stored.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	vents    []models.Vent // oldest first
	feedback []string
	accounts map[string]account
	calls    map[string]int
	moderate Moderator
	listGate chan struct{}
	failNext map[string]int
	now      func() time.Time
}

// NewServer starts a fake backend. Close it with t.Cleanup(srv.Close).
func NewServer() *Server {
	s := &Server{
		accounts: make(map[string]account),
		calls:    make(map[string]int),
		failNext: make(map[string]int),
		now:      time.Now,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Post("/api/vent", s.createVent)
	r.Get("/api/vent", s.getVents)
	r.Post("/api/feedback", s.submitFeedback)
	r.Post("/api/auth/signin", s.signin)
	r.Post("/api/auth/signup", s.signup)
	return r
}

// SetModerator installs the verdict function for create-vent.
func (s *Server) SetModerator(m Moderator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moderate = m
}

// FailNext makes the next request to route answer with status.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[route] = status
}

// HoldLists makes list requests block until the returned release func is called.
func (s *Server) HoldLists() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.listGate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.listGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// AddUser registers an account and returns its public record.
func (s *Server) AddUser(username, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password)
}

func (s *Server) addUserLocked(username, password string) models.User {
	u := models.User{ID: uuid.NewString(), Username: username, CreatedAt: s.now().UTC()}
	s.accounts[username] = account{user: u, password: password}
	return u
}

// SeedVents stores n vents for userID, one minute apart, ending now.
// They are returned oldest first.
func (s *Server) SeedVents(userID string, n int) []models.Vent {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.now().UTC().Add(-time.Duration(n) * time.Minute)
	out := make([]models.Vent, 0, n)
	for i := 0; i < n; i++ {
		v := models.Vent{
			ID:        uuid.NewString(),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UserID:    userID,
			Message:   fmt.Sprintf("message %d", i+1),
		}
		s.vents = append(s.vents, v)
		out = append(out, v)
	}
	return out
}

// Vents returns the stored vents for userID, oldest first.
func (s *Server) Vents(userID string) []models.Vent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Vent
	for _, v := range s.vents {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out
}

// Feedback returns every accepted feedback text.
func (s *Server) Feedback() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.feedback...)
}

// track counts the call and reports a scripted failure status, if any.
func (s *Server) track(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[route]++
	status := s.failNext[route]
	delete(s.failNext, route)
	return status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Status  int          `json:"status,omitempty"`
	Vent    *models.Vent `json:"vent,omitempty"`
	Warning bool         `json:"warning,omitempty"`
	Blocked bool         `json:"blocked,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

func (s *Server) createVent(w http.ResponseWriter, r *http.Request) {
	if status := s.track(RouteCreateVent); status != 0 {
		writeJSON(w, status, envelope{Message: http.StatusText(status), Status: status})
		return
	}

	var req struct {
		Message string `json:"message"`
		UserID  string `json:"user_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Message is required"})
		return
	}

	s.mu.Lock()
	moderate := s.moderate
	s.mu.Unlock()

	if moderate != nil {
		verdict := moderate(req.Message, req.UserID)
		switch {
		case verdict.Status != 0:
			writeJSON(w, verdict.Status, envelope{Message: verdict.Message, Status: verdict.Status, Warning: verdict.Warning, Blocked: verdict.Blocked})
			return
		case verdict.Blocked:
			writeJSON(w, http.StatusOK, envelope{Message: verdict.Message, Blocked: true})
			return
		case verdict.Warning:
			writeJSON(w, http.StatusOK, envelope{Message: verdict.Message, Warning: true})
			return
		}
	}

	if req.UserID == "" {
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Vent received"})
		return
	}

	s.mu.Lock()
	vent := models.Vent{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		UserID:    req.UserID,
		Message:   req.Message,
	}
	s.vents = append(s.vents, vent)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Vent created successfully", Vent: &vent})
}

func (s *Server) getVents(w http.ResponseWriter, r *http.Request) {
	if status := s.track(RouteListVents); status != 0 {
		writeJSON(w, status, envelope{Message: http.StatusText(status), Status: status})
		return
	}

	s.mu.Lock()
	gate := s.listGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	userID := r.URL.Query().Get("user_id")
	limit := 20
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 {
		limit = parsed
	}
	skip := 0
	if parsed, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && parsed >= 0 {
		skip = parsed
	}

	mine := s.Vents(userID)
	total := len(mine)

	// newest first
	page := make([]models.Vent, 0, limit)
	for i := total - 1 - skip; i >= 0 && len(page) < limit; i-- {
		page = append(page, mine[i])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"vents":    page,
		"has_more": skip+limit < total,
		"total":    total,
	})
}

func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	if status := s.track(RouteFeedback); status != 0 {
		writeJSON(w, status, envelope{Message: http.StatusText(status), Status: status})
		return
	}

	var req struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}
	if len(req.Feedback) < models.MinFeedbackLength {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Feedback must be at least 10 characters long"})
		return
	}

	s.mu.Lock()
	s.feedback = append(s.feedback, req.Feedback)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Thank you for your feedback!"})
}

type credentials struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	RecoveryEmail string `json:"recovery_email,omitempty"`
}

func (s *Server) signin(w http.ResponseWriter, r *http.Request) {
	if status := s.track(RouteSignin); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || acct.password != req.Password {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	user := acct.user
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Sign in successful", User: &user})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if status := s.track(RouteSignup); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if _, taken := s.accounts[req.Username]; taken {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, envelope{Message: "Username is already taken"})
		return
	}
	user := s.addUserLocked(req.Username, req.Password)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Account created successfully", User: &user})
}
