package navigation

import (
	"context"
	"sync"
	"testing"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/core/service"
	"github.com/complitracker/complitracker-go/internal/storage"
	"github.com/complitracker/complitracker-go/internal/storage/memory"
	"github.com/complitracker/complitracker-go/internal/telemetry/logger"
)

// fakeSession lets tests set the state and push events directly.
type fakeSession struct {
	mu        sync.Mutex
	state     domain.State
	listeners []func(service.Event)
}

func (f *fakeSession) State() domain.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Subscribe(fn func(service.Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners[idx] = nil
	}
}

func (f *fakeSession) set(s domain.State) {
	f.mu.Lock()
	f.state = s
	ls := append([]func(service.Event){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range ls {
		if fn != nil {
			fn(service.Event{Kind: service.EventStateChanged, State: s})
		}
	}
}

func (f *fakeSession) navigate(kind domain.IntentKind, msg string) {
	f.mu.Lock()
	ev := service.Event{Kind: service.EventNavigate, State: f.state, Intent: domain.Intent{Kind: kind, Message: msg}}
	ls := append([]func(service.Event){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range ls {
		if fn != nil {
			fn(ev)
		}
	}
}

var testUser = &domain.User{ID: "1", Name: "Ada", Email: "ada@example.com"}

func TestRequest_ByState(t *testing.T) {
	tests := []struct {
		name       string
		state      domain.State
		route      domain.Route
		wantAction service.Action
		wantRoute  domain.Route
		wantReturn domain.Route
	}{
		{"unknown protected stays put", domain.UnknownState(), domain.RouteCompliance, service.ActionLoading, domain.RouteLogin, ""},
		{"anonymous protected redirects", domain.AnonymousState(), domain.RouteCompliance, service.ActionRedirect, domain.RouteLogin, domain.RouteCompliance},
		{"anonymous public renders", domain.AnonymousState(), domain.RouteRegister, service.ActionRender, domain.RouteRegister, ""},
		{"authenticated renders", domain.AuthenticatedState(testUser, "tok"), domain.RouteRisk, service.ActionRender, domain.RouteRisk, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSession{state: tt.state}
			n := New(s)
			defer n.Close()

			d := n.Request(tt.route)
			if d.Action != tt.wantAction {
				t.Errorf("Action = %v, want %v", d.Action, tt.wantAction)
			}
			if got := n.Current(); got != tt.wantRoute {
				t.Errorf("Current() = %q, want %q", got, tt.wantRoute)
			}
			if got := n.ReturnTo(); got != tt.wantReturn {
				t.Errorf("ReturnTo() = %q, want %q", got, tt.wantReturn)
			}
		})
	}
}

func TestIntentDefault_ReturnsToRequestedRoute(t *testing.T) {
	s := &fakeSession{state: domain.AnonymousState()}
	n := New(s)
	defer n.Close()

	n.Request("/compliance/42")
	s.set(domain.AuthenticatedState(testUser, "tok"))
	s.navigate(domain.IntentDefault, "")

	if got := n.Current(); got != "/compliance/42" {
		t.Errorf("Current() = %q, want /compliance/42", got)
	}
	if n.ReturnTo() != "" {
		t.Error("ReturnTo must be cleared after use")
	}
}

func TestIntentDefault_FallsBackToDefaultRoute(t *testing.T) {
	s := &fakeSession{state: domain.AnonymousState()}
	n := New(s, WithDefaultRoute(domain.RouteDocuments))
	defer n.Close()

	s.set(domain.AuthenticatedState(testUser, "tok"))
	s.navigate(domain.IntentDefault, "")

	if got := n.Current(); got != domain.RouteDocuments {
		t.Errorf("Current() = %q, want %q", got, domain.RouteDocuments)
	}
}

func TestIntentLogin_CarriesFlash(t *testing.T) {
	s := &fakeSession{state: domain.AnonymousState()}
	n := New(s, WithStart(domain.RouteRegister))
	defer n.Close()

	s.navigate(domain.IntentLogin, service.MsgRegistered)

	if got := n.Current(); got != domain.RouteLogin {
		t.Errorf("Current() = %q, want /login", got)
	}
	if got := n.TakeFlash(); got != service.MsgRegistered {
		t.Errorf("TakeFlash() = %q", got)
	}
	if got := n.TakeFlash(); got != "" {
		t.Errorf("second TakeFlash() = %q, want empty", got)
	}
}

func TestIntentLogin_KeepsExplicitReturnTo(t *testing.T) {
	s := &fakeSession{state: domain.AnonymousState()}
	n := New(s)
	defer n.Close()

	n.Request(domain.RouteRisk)
	n.Request(domain.RouteRegister)
	s.navigate(domain.IntentLogin, service.MsgRegistered)

	if got := n.ReturnTo(); got != domain.RouteRisk {
		t.Errorf("ReturnTo() = %q, want %q", got, domain.RouteRisk)
	}
}

func TestStateChange_ExternalLogoutRedirects(t *testing.T) {
	s := &fakeSession{state: domain.AuthenticatedState(testUser, "tok")}
	var changes []Change
	n := New(s, OnChange(func(c Change) { changes = append(changes, c) }))
	defer n.Close()

	n.Request(domain.RouteCompliance)
	s.set(domain.AnonymousState())

	if got := n.Current(); got != domain.RouteLogin {
		t.Fatalf("Current() = %q, want /login", got)
	}
	if got := n.ReturnTo(); got != domain.RouteCompliance {
		t.Errorf("ReturnTo() = %q, want /compliance", got)
	}
	if len(changes) != 2 || changes[1].Reason != ReasonGuard || changes[1].From != domain.RouteCompliance {
		t.Errorf("changes = %+v", changes)
	}
}

func TestExplicitLogoutForgetsRoute(t *testing.T) {
	s := &fakeSession{state: domain.AuthenticatedState(testUser, "tok")}
	n := New(s)
	defer n.Close()

	n.Request(domain.RouteCompliance)
	s.set(domain.AnonymousState())
	s.navigate(domain.IntentLogin, "")

	if n.ReturnTo() != "" {
		t.Errorf("ReturnTo() = %q, want empty after explicit logout", n.ReturnTo())
	}
}

func TestStateChange_PublicRouteUntouched(t *testing.T) {
	s := &fakeSession{state: domain.UnknownState()}
	n := New(s, WithStart(domain.RouteForgotPassword))
	defer n.Close()

	s.set(domain.AnonymousState())
	if got := n.Current(); got != domain.RouteForgotPassword {
		t.Errorf("Current() = %q", got)
	}
}

func TestClose_StopsListening(t *testing.T) {
	s := &fakeSession{state: domain.AnonymousState()}
	n := New(s, WithStart(domain.RouteRegister))
	n.Close()

	s.navigate(domain.IntentLogin, "x")
	if got := n.Current(); got != domain.RouteRegister {
		t.Errorf("Current() = %q, closed navigator moved", got)
	}
}

// loginAPI answers Login with a fixed session and nothing else.
type loginAPI struct {
	token string
}

func (a loginAPI) Login(context.Context, domain.Credentials) domain.Result[domain.LoginResponse] {
	return domain.Ok(domain.LoginResponse{Token: a.token, User: testUser})
}

func (loginAPI) Register(context.Context, domain.RegisterRequest) domain.Result[domain.Empty] {
	return domain.Ok(domain.Empty{})
}

func (loginAPI) CurrentUser(context.Context, string) domain.Result[*domain.User] {
	return domain.Fail[*domain.User](domain.ErrUnauthorized)
}

func (loginAPI) Refresh(context.Context, string) domain.Result[domain.TokenPair] {
	return domain.Fail[domain.TokenPair](domain.ErrUnauthorized)
}

func (loginAPI) ForgotPassword(context.Context, string) domain.Result[domain.Empty] {
	return domain.Ok(domain.Empty{})
}

func (loginAPI) ResetPassword(context.Context, string, string) domain.Result[domain.Empty] {
	return domain.Ok(domain.Empty{})
}

func TestWithController_RedirectAfterLogin(t *testing.T) {
	ctx := context.Background()
	store := storage.NewTokenStore(memory.New(), "http://localhost:8080/api")
	ctrl := service.NewController(store, service.NewTokenValidator(0), loginAPI{token: "opaque"},
		service.WithLogger(logger.Discard()))

	n := New(ctrl)
	defer n.Close()

	ctrl.Init(ctx)
	n.Request(domain.RouteDocuments)
	if n.Current() != domain.RouteLogin {
		t.Fatalf("Current() = %q, want /login", n.Current())
	}

	if !ctrl.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "pw"}) {
		t.Fatalf("Login() failed: %s", ctrl.LastError())
	}
	if n.Current() != domain.RouteDocuments {
		t.Errorf("Current() = %q, want /documents", n.Current())
	}

	ctrl.Logout(ctx)
	if n.Current() != domain.RouteLogin {
		t.Errorf("Current() = %q after logout, want /login", n.Current())
	}
}
