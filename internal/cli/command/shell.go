package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/complitracker/complitracker-go/internal/cli/connection"
	"github.com/complitracker/complitracker-go/internal/cli/navigation"
	"github.com/complitracker/complitracker-go/internal/cli/repl"
	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/core/service"
	"github.com/complitracker/complitracker-go/internal/infra/shutdown"
	"github.com/complitracker/complitracker-go/internal/telemetry/logger"
	"github.com/complitracker/complitracker-go/internal/telemetry/metric"
)

const shutdownTimeout = 5 * time.Second

// routeViews maps a route typed at the prompt to the command that renders it.
var routeViews = map[domain.Route][]string{
	domain.RouteDashboard:      {"dashboard"},
	domain.RouteProfile:        {"whoami"},
	domain.RouteCompliance:     {"compliance", "list"},
	domain.RouteDocuments:      {"document", "list"},
	domain.RouteRisk:           {"risk", "organization"},
	domain.RouteSettings:       {"config", "show"},
	domain.RouteLogin:          {"login"},
	domain.RouteRegister:       {"register"},
	domain.RouteForgotPassword: {"forgot-password"},
	domain.RouteResetPassword:  {"reset-password"},
}

// detailViews names the subcommand that renders "/<route>/<id>".
var detailViews = map[domain.Route]string{
	domain.RouteCompliance: "get",
	domain.RouteDocuments:  "get",
	domain.RouteRisk:       "item",
}

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start the interactive shell",
		Action: runShell,
	}
}

type shell struct {
	rt   *Runtime
	app  *cli.App
	repl *repl.REPL
	nav  *navigation.Navigator
	sess *service.Controller

	// pending is a command refused for lack of a session, replayed after
	// the next successful login.
	pending []string

	// busy is set while a typed line runs. Guard moves it causes are the
	// user's own and are not announced.
	busy atomic.Bool
}

func runShell(c *cli.Context) error {
	if shared, _ := c.App.Metadata[metaShared].(bool); shared {
		return errors.New("already running a shell")
	}
	rt := runtimeFrom(c)

	handler := shutdown.NewHandler(shutdownTimeout)
	ctx, stop := handler.Context(c.Context)
	defer stop()

	sh := &shell{rt: rt, app: c.App}
	rt.onRoute = sh.routeChanged
	s, err := rt.Session(ctx)
	if err != nil {
		return err
	}
	sh.nav, sh.sess = rt.Navigator(), s
	log := rt.Logger()

	if err := sh.serveMetrics(handler); err != nil {
		return err
	}
	sh.watchStore(ctx, handler)

	history := repl.NewHistory(rt.Config.HistoryPath(), rt.Config.Shell.HistorySize)
	if err := history.Load(); err != nil {
		log.Warn("load shell history failed", "error", err)
	}
	handler.OnShutdown("history", func(context.Context) error { return history.Save() })

	sh.repl = repl.New(repl.Config{
		In:        c.App.Reader,
		Out:       rt.Out,
		Prompt:    sh.prompt,
		Exec:      sh.exec,
		History:   history,
		Completer: repl.NewCompleter(commandPaths(c.App.Commands)...),
	})
	rt.readLine = sh.repl.ReadLine
	defer func() { rt.readLine = rt.readStdin }()

	sh.greet()
	sh.nav.Request(sh.nav.DefaultRoute())

	runErr := sh.repl.Run(ctx)
	return errors.Join(runErr, handler.Shutdown())
}

// routeChanged announces guard moves caused by another process ending the
// session.
func (sh *shell) routeChanged(ch navigation.Change) {
	if sh.busy.Load() {
		return
	}
	if ch.Reason == navigation.ReasonGuard && ch.From != ch.To && !ch.From.IsPublic() {
		fmt.Fprintf(sh.rt.Err, "\nSession ended, moved from %s to %s\n", ch.From, ch.To)
	}
}

func (sh *shell) greet() {
	fmt.Fprintf(sh.rt.Out, "CompliTracker shell (%s). Type 'help' for commands, 'exit' to quit.\n", sh.rt.api.BaseURL())
	if st := sh.sess.State(); st.IsAuthenticated() {
		fmt.Fprintf(sh.rt.Out, "Logged in as %s <%s>\n", st.User.Name, st.User.Email)
	} else {
		fmt.Fprintln(sh.rt.Out, "Not logged in. Use 'login' to start a session.")
	}
}

func (sh *shell) prompt() string {
	var b strings.Builder
	if msg := sh.nav.TakeFlash(); msg != "" {
		b.WriteString(msg + "\n")
	}
	fmt.Fprintf(&b, "complitracker %s> ", sh.nav.Current())
	return b.String()
}

func (sh *shell) exec(ctx context.Context, args []string) error {
	if strings.HasPrefix(args[0], "/") {
		return sh.open(ctx, domain.Route(args[0]))
	}

	err := sh.dispatch(ctx, args)
	switch {
	case errors.Is(err, domain.ErrLoginRequired):
		sh.pending = args
		fmt.Fprintf(sh.rt.Out, "Login required. '%s' will run after you log in.\n", strings.Join(args, " "))
		return nil
	case err != nil:
		return err
	}

	switch args[0] {
	case "login":
		return sh.resume(ctx)
	case "logout":
		sh.pending = nil
	}
	return nil
}

// open navigates to route and renders its view.
func (sh *shell) open(ctx context.Context, route domain.Route) error {
	view, ok := routeViews[route.Base()]
	if !ok {
		return fmt.Errorf("unknown route %s", route)
	}
	if id := strings.Trim(strings.TrimPrefix(string(route), string(route.Base())), "/"); id != "" {
		sub, ok := detailViews[route.Base()]
		if !ok {
			return fmt.Errorf("unknown route %s", route)
		}
		view = []string{view[0], sub, id}
	}
	return sh.exec(ctx, view)
}

// resume replays the command refused before login.
func (sh *shell) resume(ctx context.Context) error {
	if sh.pending == nil || !sh.sess.State().IsAuthenticated() {
		return nil
	}
	args := sh.pending
	sh.pending = nil
	fmt.Fprintf(sh.rt.Out, "Resuming: %s\n", strings.Join(args, " "))
	return sh.exec(ctx, args)
}

// dispatch runs one line through a fresh App sharing the shell's Runtime.
func (sh *shell) dispatch(ctx context.Context, args []string) error {
	if name := args[0]; name != "help" && name != "h" && !strings.HasPrefix(name, "-") && sh.app.Command(name) == nil {
		msg := fmt.Sprintf("unknown command %q", name)
		if s := sh.repl.Suggest(name); len(s) > 0 {
			msg += ", did you mean: " + strings.Join(s, ", ")
		}
		return errors.New(msg)
	}

	sh.busy.Store(true)
	defer sh.busy.Store(false)

	app := newApp(sh.app.Reader, sh.rt.Out, sh.rt.Err)
	app.Metadata = map[string]any{
		metaRuntime: sh.rt,
		metaShared:  true,
	}
	app.ExitErrHandler = func(*cli.Context, error) {}

	// Requests issued by one line share a request ID.
	ctx = logger.WithRequestID(ctx, connection.NewRequestID())
	ctx = logger.WithLogger(ctx, sh.rt.Logger())
	return app.RunContext(ctx, append([]string{sh.app.Name}, args...))
}

// serveMetrics exposes /metrics while the shell runs.
func (sh *shell) serveMetrics(h *shutdown.Handler) error {
	addr := sh.rt.Config.Metrics.Addr
	if addr == "" {
		return nil
	}
	reg, err := sh.rt.Metrics()
	if err != nil {
		return err
	}
	srv, err := metric.Listen(addr, reg, sh.rt.Logger())
	if err != nil {
		return err
	}
	go func() {
		if err := srv.Serve(); err != nil {
			sh.rt.Logger().Error("metrics server failed", "error", err)
		}
	}()
	h.OnShutdown("metrics", srv.Shutdown)
	return nil
}

// watchStore resyncs the session when another process changes the token.
func (sh *shell) watchStore(ctx context.Context, h *shutdown.Handler) {
	ctx, cancel := context.WithCancel(ctx)
	h.OnShutdown("store-watch", func(context.Context) error {
		cancel()
		return nil
	})

	store := sh.rt.Store()
	log := sh.rt.Logger()
	go func() {
		ok, err := store.Watch(ctx, func() {
			log.Debug("session token changed by another process")
			sh.sess.Resync(ctx)
		})
		switch {
		case !ok:
			log.Debug("token store cannot report changes from other processes")
		case err != nil && ctx.Err() == nil:
			log.Warn("token store watch stopped", "error", err)
		}
	}()
}

// commandPaths lists "cmd" and "cmd sub" names for completion.
func commandPaths(cmds []*cli.Command) []string {
	var out []string
	for _, cmd := range cmds {
		out = append(out, cmd.Name)
		for _, sub := range cmd.Subcommands {
			out = append(out, cmd.Name+" "+sub.Name)
		}
	}
	for route := range routeViews {
		out = append(out, string(route))
	}
	return out
}
