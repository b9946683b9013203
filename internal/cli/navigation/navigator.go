package navigation

import (
	"sync"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/core/service"
)

// Session is the part of the controller a Navigator needs.
type Session interface {
	State() domain.State
	Subscribe(fn func(service.Event)) (unsubscribe func())
}

// Change describes one route move.
type Change struct {
	From   domain.Route
	To     domain.Route
	Reason string
}

// Reasons reported in Change.
const (
	ReasonRequest  = "request"
	ReasonGuard    = "guard"
	ReasonLogin    = "login"
	ReasonLoggedIn = "logged_in"
)

// Option configures a Navigator.
type Option func(*Navigator)

// WithDefaultRoute sets where IntentDefault lands without a remembered route.
func WithDefaultRoute(r domain.Route) Option {
	return func(n *Navigator) {
		if r != "" {
			n.defaultRoute = r
		}
	}
}

// WithStart sets the initial route.
func WithStart(r domain.Route) Option {
	return func(n *Navigator) {
		n.current = r
	}
}

// OnChange registers fn to run after every route move. fn runs on the
// goroutine that caused the move and must not call back into the
// Navigator's mutating methods.
func OnChange(fn func(Change)) Option {
	return func(n *Navigator) {
		n.onChange = fn
	}
}

// Navigator tracks the current route.
type Navigator struct {
	session      Session
	defaultRoute domain.Route
	onChange     func(Change)
	unsubscribe  func()

	mu       sync.Mutex
	current  domain.Route
	returnTo domain.Route
	// implicit marks a returnTo recorded by a guard re-evaluation rather
	// than by a user request. An explicit logout forgets it.
	implicit bool
	flash    string
}

// New creates a Navigator subscribed to session.
func New(session Session, opts ...Option) *Navigator {
	n := &Navigator{
		session:      session,
		defaultRoute: domain.RouteDashboard,
		current:      domain.RouteLogin,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.unsubscribe = session.Subscribe(n.handle)
	return n
}

// Close stops listening to the session.
func (n *Navigator) Close() {
	n.unsubscribe()
}

// Current returns the current route.
func (n *Navigator) Current() domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// ReturnTo returns the remembered redirect-after-login target, if any.
func (n *Navigator) ReturnTo() domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.returnTo
}

// DefaultRoute returns the landing route.
func (n *Navigator) DefaultRoute() domain.Route {
	return n.defaultRoute
}

// TakeFlash returns and clears the pending flash message.
func (n *Navigator) TakeFlash() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msg := n.flash
	n.flash = ""
	return msg
}

// Request asks to show route. The guard decides: Render moves there,
// Redirect remembers route and moves to the login route, Loading leaves the
// current route alone.
func (n *Navigator) Request(route domain.Route) service.Decision {
	d := service.Guard(n.session.State(), route)

	n.mu.Lock()
	var ch *Change
	switch d.Action {
	case service.ActionRender:
		ch = n.moveLocked(route, ReasonRequest)
	case service.ActionRedirect:
		n.returnTo = d.ReturnTo
		n.implicit = false
		ch = n.moveLocked(d.To, ReasonGuard)
	}
	n.mu.Unlock()

	n.notify(ch)
	return d
}

func (n *Navigator) handle(ev service.Event) {
	n.mu.Lock()
	var ch *Change
	switch ev.Kind {
	case service.EventStateChanged:
		ch = n.reevaluateLocked(ev.State)
	case service.EventNavigate:
		ch = n.followLocked(ev.Intent)
	}
	n.mu.Unlock()

	n.notify(ch)
}

// reevaluateLocked re-runs the guard on the current route after a state
// change, so a session lost elsewhere moves a protected view to login.
func (n *Navigator) reevaluateLocked(state domain.State) *Change {
	d := service.Guard(state, n.current)
	if d.Action != service.ActionRedirect {
		return nil
	}
	n.returnTo = d.ReturnTo
	n.implicit = true
	return n.moveLocked(d.To, ReasonGuard)
}

func (n *Navigator) followLocked(intent domain.Intent) *Change {
	switch intent.Kind {
	case domain.IntentDefault:
		to := n.returnTo
		if to == "" {
			to = n.defaultRoute
		}
		n.returnTo = ""
		n.implicit = false
		return n.moveLocked(to, ReasonLoggedIn)
	case domain.IntentLogin:
		if n.implicit {
			n.returnTo = ""
			n.implicit = false
		}
		n.flash = intent.Message
		return n.moveLocked(domain.RouteLogin, ReasonLogin)
	}
	return nil
}

func (n *Navigator) moveLocked(to domain.Route, reason string) *Change {
	from := n.current
	n.current = to
	if from == to {
		return nil
	}
	return &Change{From: from, To: to, Reason: reason}
}

func (n *Navigator) notify(ch *Change) {
	if ch != nil && n.onChange != nil {
		n.onChange(*ch)
	}
}
