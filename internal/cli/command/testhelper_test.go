package command

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "correct-horse"
)

// makeToken returns a signed JWT expiring at exp.
func makeToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"iat":   exp.Add(-time.Hour).Unix(),
		"exp":   exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// mockBackend is a scripted CompliTracker API.
type mockBackend struct {
	*httptest.Server

	mu       sync.Mutex
	token    string
	calls    map[string]int
	uploaded string
	deleted  []string
	created  map[string]any
}

func newMockBackend(t *testing.T) *mockBackend {
	t.Helper()
	b := &mockBackend{
		token: makeToken(t, "alice", time.Now().Add(time.Hour)),
		calls: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != testPassword {
			jsonResponse(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"token": b.currentToken(),
			"user":  map[string]any{"id": 1, "name": "Alice", "email": creds.Email},
		})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /users/me", b.authed(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"id": 1, "name": "Alice", "email": testEmail})
	}))
	mux.HandleFunc("GET /compliance", b.authed(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, []map[string]any{
			{"id": 7, "title": "GDPR audit", "status": r.URL.Query().Get("status")},
			{"id": 8, "title": "ISO 27001", "status": "PENDING"},
		})
	}))
	mux.HandleFunc("POST /compliance", b.authed(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.created = in
		b.mu.Unlock()
		jsonResponse(w, http.StatusCreated, map[string]any{"id": 9, "title": in["title"], "status": "PENDING"})
	}))
	mux.HandleFunc("GET /compliance/stats", b.authed(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"total": 12, "compliant": 7, "pending": 3, "overdue": 2})
	}))
	mux.HandleFunc("GET /compliance/deadlines", b.authed(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, []map[string]any{{"id": 8, "title": "ISO 27001 due in " + r.URL.Query().Get("days")}})
	}))
	mux.HandleFunc("GET /compliance/{id}", b.authed(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"id": 7, "title": "GDPR audit", "status": "COMPLIANT"})
	}))
	mux.HandleFunc("DELETE /compliance/{id}", b.authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /documents/upload", b.authed(func(w http.ResponseWriter, r *http.Request) {
		_, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		mr := multipart.NewReader(r.Body, params["boundary"])
		var title string
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case "file":
				b.mu.Lock()
				b.uploaded = part.FileName() + ":" + string(data)
				b.mu.Unlock()
			case "title":
				title = string(data)
			}
		}
		jsonResponse(w, http.StatusCreated, map[string]any{"id": 31, "title": title, "fileName": "policy.txt", "status": "DRAFT"})
	}))
	mux.HandleFunc("GET /risk-analysis/organization", b.authed(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"score": 42.5, "level": "MEDIUM",
			"factors": []map[string]any{{"name": "overdue items", "weight": 0.4}},
		})
	}))

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *mockBackend) currentToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// revoke makes the backend reject the issued token.
func (b *mockBackend) revoke() {
	b.mu.Lock()
	b.token = "revoked"
	b.mu.Unlock()
}

func (b *mockBackend) callCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *mockBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.currentToken() {
			jsonResponse(w, http.StatusUnauthorized, map[string]string{"message": "Full authentication is required"})
			return
		}
		next(w, r)
	}
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// cliEnv runs commands against one backend and one store directory, the
// way repeated invocations from a terminal would.
type cliEnv struct {
	t        *testing.T
	backend  *mockBackend
	storeDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &cliEnv{t: t, backend: newMockBackend(t), storeDir: t.TempDir()}
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes one command line with stdin as input.
func (e *cliEnv) run(stdin string, args ...string) runResult {
	e.t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(strings.NewReader(stdin), &out, &errOut)
	full := append([]string{"complitracker-cli", "--api-url", e.backend.URL, "--store-dir", e.storeDir}, args...)
	err := app.Run(full)
	return runResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

// login opens a session in the store directory.
func (e *cliEnv) login() {
	e.t.Helper()
	if r := e.run("", "login", "--email", testEmail, "--password", testPassword); r.err != nil {
		e.t.Fatalf("login failed: %v\nstderr: %s", r.err, r.stderr)
	}
}
