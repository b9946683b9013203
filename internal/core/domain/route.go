package domain

import "strings"

// Route is a shell view path such as "/dashboard".
type Route string

// Well-known routes.
const (
	RouteLogin          Route = "/login"
	RouteRegister       Route = "/register"
	RouteForgotPassword Route = "/forgot-password"
	RouteResetPassword  Route = "/reset-password"
	RouteDashboard      Route = "/dashboard"
	RouteProfile        Route = "/profile"
	RouteCompliance     Route = "/compliance"
	RouteDocuments      Route = "/documents"
	RouteRisk           Route = "/risk"
	RouteSettings       Route = "/settings"
)

var publicRoutes = map[Route]bool{
	RouteLogin:          true,
	RouteRegister:       true,
	RouteForgotPassword: true,
	RouteResetPassword:  true,
}

// IsPublic reports whether the route renders without a session.
func (r Route) IsPublic() bool {
	return publicRoutes[r.Base()]
}

// Base returns the first path segment of the route, e.g. "/compliance/42"
// becomes "/compliance".
func (r Route) Base() Route {
	s := "/" + strings.TrimPrefix(string(r), "/")
	if i := strings.Index(s[1:], "/"); i >= 0 {
		s = s[:i+1]
	}
	return Route(s)
}

// IntentKind says what kind of navigation the controller is asking for.
type IntentKind int

const (
	// IntentDefault asks to navigate to the default landing page.
	IntentDefault IntentKind = iota + 1
	// IntentLogin asks to navigate to the login page.
	IntentLogin
)

// String returns the intent kind name.
func (k IntentKind) String() string {
	switch k {
	case IntentDefault:
		return "default"
	case IntentLogin:
		return "login"
	default:
		return "none"
	}
}

// Intent is a navigation request emitted by the session controller.
// The controller never navigates itself; a listener acts on intents.
type Intent struct {
	Kind    IntentKind
	Message string
}
