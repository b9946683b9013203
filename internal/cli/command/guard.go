package command

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/urfave/cli/v2"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/core/service"
	"github.com/complitracker/complitracker-go/internal/telemetry/logger"
)

// sessionAction is a command body that needs an authenticated session.
type sessionAction func(c *cli.Context, rt *Runtime, s *service.Controller) error

// protected runs action only when the guard renders route. A redirect
// fails with ErrLoginRequired before any backend call is made.
func protected(route domain.Route, action sessionAction) cli.ActionFunc {
	return protectedAt(func(*cli.Context) domain.Route { return route }, action)
}

// withArg routes to base plus the first argument, e.g. "/compliance/42".
func withArg(base domain.Route) func(*cli.Context) domain.Route {
	return func(c *cli.Context) domain.Route {
		if arg := c.Args().First(); arg != "" {
			return domain.Route(path.Join(string(base), arg))
		}
		return base
	}
}

func protectedAt(routeOf func(*cli.Context) domain.Route, action sessionAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt := runtimeFrom(c)
		s, err := rt.Session(c.Context)
		if err != nil {
			return err
		}

		switch d := rt.Navigator().Request(routeOf(c)); d.Action {
		case service.ActionRedirect:
			return loginRequired(d.ReturnTo)
		case service.ActionLoading:
			return domain.ErrLoginRequired.WithDetails("session check has not finished")
		}
		return action(c, rt, s)
	}
}

func loginRequired(route domain.Route) error {
	return domain.ErrLoginRequired.WithDetails(fmt.Sprintf("%s needs a session, run `login` first", route))
}

// remote unwraps a backend result. A rejected token makes the controller
// verify the stored token again, so an expired login ends the same way it
// would on start.
func remote[T any](ctx context.Context, s *service.Controller, res domain.Result[T]) (T, error) {
	v, err := res.Unwrap()
	if errors.Is(err, domain.ErrUnauthorized) {
		logger.L(ctx).Info("backend rejected session token, verifying session")
		if !s.Init(ctx) {
			return v, domain.ErrLoginRequired.WithDetails("session expired, run `login` again")
		}
	}
	return v, err
}
