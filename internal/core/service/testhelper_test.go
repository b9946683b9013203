package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/storage"
	"github.com/complitracker/complitracker-go/internal/storage/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// makeToken returns a signed JWT expiring at exp.
func makeToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"roles": []string{"ROLE_USER"},
		"iat":   exp.Add(-time.Hour).Unix(),
		"exp":   exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// fakeAuthAPI is a scripted AuthAPI that counts calls.
type fakeAuthAPI struct {
	mu sync.Mutex

	loginResult    domain.Result[domain.LoginResponse]
	registerResult domain.Result[domain.Empty]
	userResult     domain.Result[*domain.User]
	refreshResult  domain.Result[domain.TokenPair]
	forgotResult   domain.Result[domain.Empty]
	resetResult    domain.Result[domain.Empty]

	// loginGate, when set, blocks Login until it is closed.
	loginGate chan struct{}

	loginCalls    int
	registerCalls int
	userCalls     int
	refreshCalls  int
	forgotCalls   int
	resetCalls    int

	lastUserToken    string
	lastRefreshToken string
}

func (f *fakeAuthAPI) Login(ctx context.Context, _ domain.Credentials) domain.Result[domain.LoginResponse] {
	f.mu.Lock()
	f.loginCalls++
	gate := f.loginGate
	res := f.loginResult
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Fail[domain.LoginResponse](domain.ErrNetworkFailure.WithCause(ctx.Err()))
		}
	}
	return res
}

func (f *fakeAuthAPI) Register(context.Context, domain.RegisterRequest) domain.Result[domain.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	return f.registerResult
}

func (f *fakeAuthAPI) CurrentUser(_ context.Context, token string) domain.Result[*domain.User] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	f.lastUserToken = token
	return f.userResult
}

func (f *fakeAuthAPI) Refresh(_ context.Context, refreshToken string) domain.Result[domain.TokenPair] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	f.lastRefreshToken = refreshToken
	return f.refreshResult
}

func (f *fakeAuthAPI) ForgotPassword(context.Context, string) domain.Result[domain.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotCalls++
	return f.forgotResult
}

func (f *fakeAuthAPI) ResetPassword(context.Context, string, string) domain.Result[domain.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	return f.resetResult
}

func (f *fakeAuthAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls + f.registerCalls + f.userCalls + f.refreshCalls + f.forgotCalls + f.resetCalls
}

// recorder collects controller events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) intents() []domain.Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Intent
	for _, ev := range r.events {
		if ev.Kind == EventNavigate {
			out = append(out, ev.Intent)
		}
	}
	return out
}

func (r *recorder) states() []domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Status
	for _, ev := range r.events {
		if ev.Kind == EventStateChanged {
			out = append(out, ev.State.Status)
		}
	}
	return out
}

type testEnv struct {
	store *storage.TokenStore
	api   *fakeAuthAPI
	ctrl  *Controller
	rec   *recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewTokenStore(memory.New(), "http://localhost:8080/api")
	api := &fakeAuthAPI{}
	ctrl := NewController(store, NewTokenValidator(0), api,
		WithClock(func() time.Time { return testNow }))
	rec := &recorder{}
	ctrl.Subscribe(rec.record)
	return &testEnv{store: store, api: api, ctrl: ctrl, rec: rec}
}

func (e *testEnv) stored(t *testing.T) (string, bool) {
	t.Helper()
	tok, ok, err := e.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	return tok, ok
}
