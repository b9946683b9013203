package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/complitracker/complitracker-go/internal/cli/config"
	"github.com/complitracker/complitracker-go/internal/cli/connection"
	"github.com/complitracker/complitracker-go/internal/cli/navigation"
	"github.com/complitracker/complitracker-go/internal/cli/output"
	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/core/service"
	"github.com/complitracker/complitracker-go/internal/infra/tlsroots"
	"github.com/complitracker/complitracker-go/internal/storage"
	"github.com/complitracker/complitracker-go/internal/storage/file"
	"github.com/complitracker/complitracker-go/internal/storage/memory"
	"github.com/complitracker/complitracker-go/internal/storage/redis"
	"github.com/complitracker/complitracker-go/internal/telemetry/logger"
	"github.com/complitracker/complitracker-go/internal/telemetry/metric"
	"github.com/complitracker/complitracker-go/pkg/crypto/adaptive"
)

// Runtime holds what the commands of one process share: configuration,
// the backend clients and the session. In shell mode one Runtime serves
// every line.
type Runtime struct {
	Config *config.CLIConfig

	Out io.Writer
	Err io.Writer

	in       *bufio.Reader
	readLine func(ctx context.Context, prompt string) (string, error)

	setupOnce sync.Once
	setupErr  error
	logger    logger.Logger
	metrics   *metric.Registry
	api       *connection.Manager

	mu      sync.Mutex
	store   *storage.TokenStore
	session *service.Controller
	nav     *navigation.Navigator
	onRoute func(navigation.Change)
}

// NewRuntime creates a Runtime. Clients and the session are built on first
// use so that commands such as `config validate` work with a broken config.
func NewRuntime(cfg *config.CLIConfig, in io.Reader, out, errOut io.Writer) *Runtime {
	rt := &Runtime{
		Config: cfg,
		Out:    out,
		Err:    errOut,
		in:     bufio.NewReader(in),
	}
	rt.readLine = rt.readStdin
	return rt
}

func (rt *Runtime) setup() error {
	rt.setupOnce.Do(func() {
		if err := rt.Config.Validate(); err != nil {
			rt.setupErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		log, err := logger.New(logger.Config{
			Level:  rt.Config.Log.Level,
			Format: rt.Config.Log.Format,
			Output: rt.Err,
		})
		if err != nil {
			rt.setupErr = err
			return
		}
		rt.logger = log
		logger.SetDefault(log)
		rt.metrics = metric.NewRegistry()

		api := rt.Config.API
		opts := []connection.Option{
			connection.WithTimeout(api.Timeout),
			connection.WithRateLimit(api.RateLimit, api.RateBurst),
			connection.WithObserver(rt.metrics),
			connection.WithLogger(log),
		}
		tlsOpts := tlsroots.ClientOptions{
			CAFile:   api.CAFile,
			CertFile: api.CertFile,
			KeyFile:  api.KeyFile,
			Insecure: api.Insecure,
		}
		if tlsOpts.Enabled() {
			tc, err := tlsroots.ClientConfig(tlsOpts)
			if err != nil {
				rt.setupErr = fmt.Errorf("api tls: %w", err)
				return
			}
			opts = append(opts, connection.WithTLSConfig(tc))
		}
		rt.api = connection.NewManager(connection.NewHTTPClient(api.URL, opts...))
	})
	return rt.setupErr
}

// Logger returns the configured logger.
func (rt *Runtime) Logger() logger.Logger {
	if rt.setup() != nil {
		return logger.Default()
	}
	return rt.logger
}

// API returns the backend clients.
func (rt *Runtime) API() (*connection.Manager, error) {
	if err := rt.setup(); err != nil {
		return nil, err
	}
	return rt.api, nil
}

// Metrics returns the metrics registry.
func (rt *Runtime) Metrics() (*metric.Registry, error) {
	if err := rt.setup(); err != nil {
		return nil, err
	}
	return rt.metrics, nil
}

// Session opens the token store and settles the initial session state on
// first use. Later calls return the same controller.
func (rt *Runtime) Session(ctx context.Context) (*service.Controller, error) {
	if err := rt.setup(); err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.session != nil {
		return rt.session, nil
	}

	store, err := rt.openStore(ctx)
	if err != nil {
		return nil, domain.ErrStore.WithCause(err)
	}
	rt.store = store
	rt.session = service.NewController(store,
		service.NewTokenValidator(rt.Config.API.TokenLeeway),
		rt.api.Auth,
		service.WithLogger(rt.logger),
		service.WithRecorder(rt.metrics),
	)
	rt.nav = navigation.New(rt.session,
		navigation.WithDefaultRoute(domain.Route(rt.Config.Shell.DefaultRoute)),
		navigation.OnChange(rt.routeChanged),
	)
	rt.session.Init(ctx)
	return rt.session, nil
}

// Navigator returns the navigator. It is nil before Session.
func (rt *Runtime) Navigator() *navigation.Navigator {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.nav
}

// Store returns the token store. It is nil before Session.
func (rt *Runtime) Store() *storage.TokenStore {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store
}

func (rt *Runtime) routeChanged(ch navigation.Change) {
	rt.logger.Debug("route changed", "from", ch.From, "to", ch.To, "reason", ch.Reason)
	if rt.onRoute != nil {
		rt.onRoute(ch)
	}
}

func (rt *Runtime) openStore(ctx context.Context) (*storage.TokenStore, error) {
	sc := rt.Config.Store
	slogger := logger.Slog(rt.logger)

	var backend storage.Backend
	switch sc.Backend {
	case "memory":
		backend = memory.New()
	case "file":
		fs, err := file.New(filepath.Join(sc.Dir, "tokens"), file.WithLogger(slogger))
		if err != nil {
			return nil, err
		}
		backend = fs
	case "badger":
		bb, err := storage.NewBadgerBackend(storage.DefaultBadgerConfig(filepath.Join(sc.Dir, "badger")), slogger)
		if err != nil {
			return nil, err
		}
		if err := bb.RegisterMetrics(rt.metrics.Registerer()); err != nil {
			rt.logger.Warn("register badger metrics failed", "error", err)
		}
		backend = bb
	case "redis":
		opts := []redis.Option{redis.WithLogger(slogger)}
		if sc.RedisPrefix != "" {
			opts = append(opts, redis.WithPrefix(sc.RedisPrefix))
		}
		rs, err := redis.Dial(ctx, sc.RedisAddr, sc.RedisPassword, sc.RedisDB, opts...)
		if err != nil {
			return nil, err
		}
		backend = rs
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}

	opts := []storage.Option{storage.WithLogger(slogger)}
	if sc.Encrypt {
		key, err := storage.LoadOrCreateKey(rt.Config.StoreKeyFile())
		if err != nil {
			backend.Close()
			return nil, err
		}
		cipher, err := adaptive.New(key)
		if err != nil {
			backend.Close()
			return nil, err
		}
		opts = append(opts, storage.WithCipher(cipher))
	}

	rt.logger.Debug("token store opened", "backend", sc.Backend, "origin", storage.NormalizeOrigin(rt.api.BaseURL()))
	return storage.NewTokenStore(backend, rt.api.BaseURL(), opts...), nil
}

// Close releases the navigator and the token store.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.nav != nil {
		rt.nav.Close()
		rt.nav = nil
	}
	var err error
	if rt.store != nil {
		err = rt.store.Close()
		rt.store = nil
	}
	rt.session = nil
	return err
}

// Print writes data in the output format chosen by flag or config.
func (rt *Runtime) Print(c *cli.Context, data any) error {
	f, err := rt.format(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(f, c.Bool("wide")).Format(rt.Out, data)
}

// Printf writes a status line. Status lines are suppressed for json and
// yaml output so the output stays machine readable.
func (rt *Runtime) Printf(c *cli.Context, format string, args ...any) {
	if !rt.printsTable(c) {
		return
	}
	fmt.Fprintf(rt.Out, format+"\n", args...)
}

func (rt *Runtime) format(c *cli.Context) (output.Format, error) {
	name := rt.Config.Output
	if c.IsSet("output") {
		name = c.String("output")
	}
	return output.ParseFormat(name)
}

// interactive reports whether spinners and progress bars should draw.
func (rt *Runtime) interactive() bool {
	return output.IsTerminal(rt.Err)
}

// Prompt reads one line of input after printing label.
func (rt *Runtime) Prompt(ctx context.Context, label string) (string, error) {
	line, err := rt.readLine(ctx, label+": ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", domain.ErrMissingArgument.WithDetails(strings.ToLower(label))
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (rt *Runtime) readStdin(_ context.Context, prompt string) (string, error) {
	fmt.Fprint(rt.Err, prompt)
	line, err := rt.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (rt *Runtime) printsTable(c *cli.Context) bool {
	f, err := rt.format(c)
	return err == nil && f == output.FormatTable
}

// spin runs fn behind a spinner on an interactive stderr.
func spin[T any](rt *Runtime, message string, fn func() T) T {
	return output.Spin(rt.Err, rt.interactive(), message, fn)
}
