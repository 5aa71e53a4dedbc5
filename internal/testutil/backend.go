package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/innovo-consulting/funding-console/internal/programs/domain"
)

// Call is one request the fake backend received.
type Call struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
	Files  []string // multipart "files" parts, by filename
	Fields []string // every multipart field name, in order
}

// Backend is an in-memory stand-in for the funding REST API.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	users     map[string]string
	programs  []domain.FundingProgram
	Templates domain.TemplateList

	// ValidToken is the token issued on login and accepted afterwards.
	ValidToken string

	expired    bool
	failCreate bool
	failUpload bool

	// NextProgramID is the id handed to the next created program.
	NextProgramID int
}

// NewBackend starts a fake backend with one registered user
// (anna@innovo-consulting.de / secret1) and two templates per source.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:         map[string]string{"anna@innovo-consulting.de": "secret1"},
		ValidToken:    "valid-token",
		NextProgramID: 1,
		Templates: domain.TemplateList{
			System: []domain.Template{{ID: "tpl1", Name: "Standard grant"}, {ID: "tpl2", Name: "EU framework"}},
			User:   []domain.Template{{ID: "7", Name: "My template"}},
		},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// SetExpired makes every authenticated endpoint answer 401.
func (b *Backend) SetExpired(v bool) {
	b.mu.Lock()
	b.expired = v
	b.mu.Unlock()
}

// SetFailCreate makes program creation answer 500.
func (b *Backend) SetFailCreate(v bool) {
	b.mu.Lock()
	b.failCreate = v
	b.mu.Unlock()
}

// SetFailUpload makes guideline uploads answer 400.
func (b *Backend) SetFailUpload(v bool) {
	b.mu.Lock()
	b.failUpload = v
	b.mu.Unlock()
}

// Calls returns a copy of all received requests.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the received requests matching method and path.
func (b *Backend) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded requests.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

// SeedProgram adds a program as if it had been created earlier.
func (b *Backend) SeedProgram(p domain.FundingProgram) {
	b.mu.Lock()
	b.programs = append(b.programs, p)
	b.mu.Unlock()
}

// Programs returns the stored programs.
func (b *Backend) Programs() []domain.FundingProgram {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.FundingProgram(nil), b.programs...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	call := Call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			for field, fhs := range r.MultipartForm.File {
				call.Fields = append(call.Fields, field)
				if field == "files" {
					for _, fh := range fhs {
						call.Files = append(call.Files, fh.Filename)
					}
				}
			}
		}
	} else {
		call.Body, _ = io.ReadAll(r.Body)
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		b.login(w, call.Body)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/auth/register":
		b.register(w, call.Body)
		return
	}

	b.mu.Lock()
	expired := b.expired
	b.mu.Unlock()
	if expired || call.Auth != "Bearer "+b.ValidToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/templates/list":
		b.mu.Lock()
		tl := b.Templates
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, tl)
	case r.Method == http.MethodGet && r.URL.Path == "/funding-programs":
		writeJSON(w, http.StatusOK, b.Programs())
	case r.Method == http.MethodPost && r.URL.Path == "/funding-programs":
		b.create(w, call.Body)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/guidelines/upload"):
		b.upload(w, r, call)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/funding-programs/"):
		b.delete(w, strings.TrimPrefix(r.URL.Path, "/funding-programs/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (b *Backend) login(w http.ResponseWriter, body []byte) {
	var in struct{ Email, Password string }
	_ = json.Unmarshal(body, &in)

	b.mu.Lock()
	pw, ok := b.users[in.Email]
	b.mu.Unlock()
	if !ok || pw != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": b.ValidToken,
		"token_type":   "bearer",
		"success":      true,
		"message":      "Login successful",
	})
}

func (b *Backend) register(w http.ResponseWriter, body []byte) {
	var in struct{ Email, Password string }
	_ = json.Unmarshal(body, &in)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[in.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "User already exists"})
		return
	}
	b.users[in.Email] = in.Password
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User registered successfully"})
}

func (b *Backend) create(w http.ResponseWriter, body []byte) {
	b.mu.Lock()
	fail := b.failCreate
	b.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "database unavailable"})
		return
	}
	var in domain.CreateProgramRequest
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "invalid body"}}})
		return
	}

	b.mu.Lock()
	p := domain.FundingProgram{
		ID:             b.NextProgramID,
		Title:          in.Title,
		TemplateSource: in.TemplateSource,
		TemplateRef:    in.TemplateRef,
	}
	b.NextProgramID++
	b.programs = append(b.programs, p)
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) upload(w http.ResponseWriter, r *http.Request, call Call) {
	b.mu.Lock()
	fail := b.failUpload
	b.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Could not extract text from PDF"})
		return
	}
	if r.MultipartForm == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "multipart body required"})
		return
	}
	docs := make([]map[string]any, 0, len(call.Files))
	for i, fh := range r.MultipartForm.File["files"] {
		if ct := fh.Header.Get("Content-Type"); ct != "application/pdf" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Only PDF allowed. Got: " + ct})
			return
		}
		docs = append(docs, map[string]any{"id": i + 1, "file_name": fh.Filename})
	}
	writeJSON(w, http.StatusOK, docs)
}

func (b *Backend) delete(w http.ResponseWriter, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Funding program not found"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.programs {
		if p.ID == id {
			b.programs = append(b.programs[:i], b.programs[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("Funding program %d not found", id)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
