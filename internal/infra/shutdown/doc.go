// Package shutdown coordinates process termination for long-running CLI
// modes such as the interactive shell.
//
// Hooks run once in reverse registration order, either when the process
// receives SIGINT or SIGTERM or when the caller exits normally:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown("store", func(ctx context.Context) error { return store.Close() })
//	ctx, stop := h.Context(context.Background())
//	defer stop()
//	...
//	return h.Shutdown()
package shutdown
