// Package shutdown ties a command's lifetime to process signals and runs
// cleanup hooks once on the way out.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown("storage", func(ctx context.Context) error { return kv.Close() })
//	defer h.Shutdown()
package shutdown
