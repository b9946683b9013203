package service

import "github.com/complitracker/complitracker-go/internal/core/domain"

// Action is what a view should do with a requested route.
type Action int

const (
	// ActionLoading renders a loading indicator and nothing else.
	ActionLoading Action = iota + 1
	// ActionRedirect sends the user to Decision.To.
	ActionRedirect
	// ActionRender renders the requested route.
	ActionRender
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionLoading:
		return "loading"
	case ActionRedirect:
		return "redirect"
	case ActionRender:
		return "render"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one request.
type Decision struct {
	Action Action
	// To is the redirect target. Set only for ActionRedirect.
	To domain.Route
	// ReturnTo is the originally requested route, remembered for
	// redirect-after-login. Set only for ActionRedirect.
	ReturnTo domain.Route
}

// Guard decides how a requested route renders under state. Public routes
// always render. It is a pure function, safe to re-evaluate on every
// navigation and state change.
func Guard(state domain.State, requested domain.Route) Decision {
	if requested.IsPublic() {
		return Decision{Action: ActionRender}
	}

	switch state.Status {
	case domain.StatusAuthenticated:
		if state.IsAuthenticated() {
			return Decision{Action: ActionRender}
		}
	case domain.StatusUnknown:
		return Decision{Action: ActionLoading}
	}

	return Decision{
		Action:   ActionRedirect,
		To:       domain.RouteLogin,
		ReturnTo: requested,
	}
}
