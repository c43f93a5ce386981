// Package apitest runs an in-memory teams backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/teams-cli/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Route names accepted by Calls, FailNext and Hold.
const (
	RouteLogin    = "login"
	RouteRegister = "register"
	RouteUser     = "user"
	RouteProject  = "project"
	RouteUsername = "username"
	RouteImage    = "image"
)

type account struct {
	user     domain.User
	password string
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[domain.EntityID]*account
	projects map[domain.EntityID]domain.Project
	tokens   map[string]domain.EntityID
	uploads  map[domain.EntityID][]byte
	calls    map[string]int
	failures map[string][]failure
	holds    map[string]chan struct{}
	nextID   domain.EntityID
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accounts: map[domain.EntityID]*account{},
		projects: map[domain.EntityID]domain.Project{},
		tokens:   map[string]domain.EntityID{},
		uploads:  map[domain.EntityID][]byte{},
		calls:    map[string]int{},
		failures: map[string][]failure{},
		holds:    map[string]chan struct{}{},
		nextID:   100,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/login", s.route(RouteLogin, s.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/register", s.route(RouteRegister, s.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/user/{id:[0-9]+}", s.route(RouteUser, s.handleUser)).Methods(http.MethodGet)
	r.HandleFunc("/user/{id:[0-9]+}/username", s.route(RouteUsername, s.handleUsername)).Methods(http.MethodPatch)
	r.HandleFunc("/user/{id:[0-9]+}/image", s.route(RouteImage, s.handleImage)).Methods(http.MethodPost)
	r.HandleFunc("/project/{id:[0-9]+}", s.route(RouteProject, s.handleProject)).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	return r
}

// AddUser seeds an account. A zero id is assigned from the server sequence.
func (s *Server) AddUser(user domain.User, password string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == 0 {
		s.nextID++
		user.ID = s.nextID
	}
	s.accounts[user.ID] = &account{user: user, password: password}
	return user
}

func (s *Server) AddProject(project domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = project
}

// User returns the server-side copy of a user.
func (s *Server) User(id domain.EntityID) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.User{}, false
	}
	return acc.user, true
}

// Upload returns the bytes of the last image uploaded for a user.
func (s *Server) Upload(id domain.EntityID) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[id]
}

func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// FailNext makes the next request on route answer with status and message.
// Calls queue up.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
}

// Hold parks every request on route until the returned release func runs.
func (s *Server) Hold(route string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[route] == gate {
				delete(s.holds, route)
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Server) route(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		gate := s.holds[name]
		var injected *failure
		if queued := s.failures[name]; len(queued) > 0 {
			injected = &queued[0]
			s.failures[name] = queued[1:]
		}
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if injected != nil {
			writeError(w, injected.status, injected.message)
			return
		}
		next(w, r)
	}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) && acc.password == req.Password {
			writeJSON(w, http.StatusOK, s.issueTokenLocked(acc.user))
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "invalid email or password")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "username, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
	}
	s.nextID++
	user := domain.User{ID: s.nextID, Username: req.Username, Email: req.Email}
	s.accounts[user.ID] = &account{user: user, password: req.Password}
	writeJSON(w, http.StatusCreated, s.issueTokenLocked(user))
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	s.mu.Lock()
	acc, ok := s.accounts[id]
	var user domain.User
	if ok {
		user = acc.user
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, userJSON(user))
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	s.mu.Lock()
	project, ok := s.projects[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("project %d not found", id))
		return
	}

	members := make([]map[string]int64, 0, len(project.Members))
	for _, member := range project.Members {
		members = append(members, map[string]int64{"id": int64(member)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          int64(project.ID),
		"name":        project.Name,
		"description": project.Description,
		"image":       project.Image,
		"owner":       map[string]int64{"id": int64(project.OwnerID)},
		"members":     members,
	})
}

func (s *Server) handleUsername(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if !s.authorized(r, id) {
		writeError(w, http.StatusForbidden, "not allowed to edit this user")
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusUnprocessableEntity, "username must not be empty")
		return
	}

	s.mu.Lock()
	s.accounts[id].user.Username = req.Username
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if !s.authorized(r, id) {
		writeError(w, http.StatusForbidden, "not allowed to edit this user")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable image")
		return
	}

	imageURL := fmt.Sprintf("/uploads/%d/%s", id, path.Base(header.Filename))
	s.mu.Lock()
	s.accounts[id].user.Image = imageURL
	s.uploads[id] = data
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}

// authorized reports whether the bearer token belongs to the user being edited.
func (s *Server) authorized(r *http.Request, id domain.EntityID) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.tokens[token]
	if !ok || owner != id {
		return false
	}
	_, exists := s.accounts[id]
	return exists
}

func (s *Server) issueTokenLocked(user domain.User) map[string]any {
	token := uuid.NewString()
	s.tokens[token] = user.ID
	return map[string]any{"token": token, "user": userJSON(user)}
}

func userJSON(user domain.User) map[string]any {
	return map[string]any{
		"id":       int64(user.ID),
		"username": user.Username,
		"email":    user.Email,
		"image":    user.Image,
	}
}

func pathID(r *http.Request) domain.EntityID {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return domain.EntityID(id)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": status, "message": message})
}
