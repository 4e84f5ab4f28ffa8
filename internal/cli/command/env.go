package command

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cricket-go/internal/cli/config"
	"github.com/yndnr/cricket-go/internal/cli/connection"
	"github.com/yndnr/cricket-go/internal/cli/input"
	"github.com/yndnr/cricket-go/internal/cli/output"
	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/core/service"
	"github.com/yndnr/cricket-go/internal/infra/buildinfo"
	"github.com/yndnr/cricket-go/internal/infra/shutdown"
	"github.com/yndnr/cricket-go/internal/storage"
	"github.com/yndnr/cricket-go/internal/telemetry/logger"
	"github.com/yndnr/cricket-go/internal/telemetry/metric"
	"github.com/yndnr/cricket-go/internal/telemetry/tracer"
	"github.com/yndnr/cricket-go/pkg/crypto/adaptive"
)

// shutdownTimeout bounds the cleanup hooks run on exit.
const shutdownTimeout = 5 * time.Second

// Env is the state shared by every command of one process. Backend
// services are opened on first use so that config commands never touch
// the session store.
type Env struct {
	Config     *config.CLIConfig
	ConfigPath string
	Logger     logger.Logger
	Metrics    *metric.Registry

	configErr   error
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
	now         func() time.Time
	kvOverride  storage.KVEngine
	httpClient  *http.Client
	shutdown    *shutdown.Handler

	mu      sync.RWMutex
	format  output.Format
	timeout time.Duration

	openMu   sync.Mutex
	client   *connection.HTTPClient
	session  *service.SessionManager
	auth     *service.AuthAPI
	matches  *service.MatchAPI
	invites  *service.InviteAPI
	prompter *input.Prompter
}

func newEnv(c *cli.Context, o *options) (*Env, error) {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path, flagOverrides(c))
	if err != nil {
		return nil, domain.ErrConfigInvalid.WithDetails(err.Error()).WithCause(err)
	}
	// An invalid config still yields an env so that config commands can
	// report it. Backend services refuse to open.
	configErr := cfg.Validate()
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		format = output.FormatTable
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		timeout = config.DefaultTimeout
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: o.errOut,
	})
	if err != nil {
		def := config.Default()
		log, err = logger.New(logger.Config{Level: def.Log.Level, Format: def.Log.Format, Output: o.errOut})
		if err != nil {
			return nil, err
		}
	}
	logger.SetDefault(log)

	interactive := false
	if o.interactive != nil {
		interactive = *o.interactive
	} else if f, ok := o.in.(*os.File); ok {
		interactive = output.IsTerminal(f)
	}

	env := &Env{
		Config:      cfg,
		ConfigPath:  path,
		configErr:   configErr,
		Logger:      log,
		Metrics:     metric.NewRegistry(),
		in:          o.in,
		out:         o.out,
		errOut:      o.errOut,
		interactive: interactive,
		now:         o.now,
		kvOverride:  o.kv,
		httpClient:  o.httpClient,
		shutdown:    shutdown.NewHandler(shutdownTimeout),
		format:      format,
		timeout:     timeout,
	}

	if file := cfg.Metrics.File; file != "" {
		env.shutdown.OnShutdown("metrics", func(context.Context) error {
			return env.Metrics.WriteTextfile(config.ExpandHome(file))
		})
	}
	if configErr != nil {
		log.Warn("configuration is invalid", "path", path, "error", configErr)
	} else {
		log.Debug("config loaded", "path", path, "server", cfg.Server, "engine", cfg.Storage.Engine)
	}
	return env, nil
}

// open builds the backend services and restores the saved session.
func (e *Env) open(ctx context.Context) error {
	e.openMu.Lock()
	defer e.openMu.Unlock()
	if e.session != nil {
		return nil
	}
	if e.configErr != nil {
		return e.configErr
	}

	clientOpts := []connection.Option{
		connection.WithUserAgent(buildinfo.UserAgent()),
		connection.WithLogger(e.Logger),
		connection.WithMetrics(e.Metrics),
	}
	switch tlsCfg := e.Config.TLSClient(); {
	case e.httpClient != nil:
		clientOpts = append(clientOpts, connection.WithHTTPClient(e.httpClient))
	case !tlsCfg.IsZero():
		hc, err := tlsCfg.HTTPClient()
		if err != nil {
			return domain.ErrConfigInvalid.WithDetails(err.Error()).WithCause(err)
		}
		if tlsCfg.InsecureSkipVerify {
			e.Logger.Warn("TLS certificate verification is disabled", "server", e.Config.Server)
		}
		clientOpts = append(clientOpts, connection.WithHTTPClient(hc))
	}
	if e.Config.Trace.Enabled {
		tp, err := tracer.New(appName, e.errOut)
		if err != nil {
			return fmt.Errorf("start tracer: %w", err)
		}
		tp.Install()
		e.shutdown.OnShutdown("tracer", tp.Shutdown)
		clientOpts = append(clientOpts, connection.WithTracer(tp.Tracer()))
	}

	storeOpts := []storage.SessionStoreOption{
		storage.WithStoreLogger(e.Logger),
		storage.WithStoreObserver(e.Metrics),
	}
	if hexKey := e.Config.Storage.EncryptionKey; hexKey != "" {
		key, err := adaptive.KeyFromHex(hexKey)
		if err != nil {
			return domain.ErrConfigInvalid.WithDetails("storage.encryption_key: " + err.Error())
		}
		sealer, err := adaptive.NewSealer(key)
		if err != nil {
			return domain.ErrConfigInvalid.WithDetails("storage.encryption_key: " + err.Error())
		}
		e.Logger.Debug("session values sealed", "cipher", string(sealer.Type()))
		storeOpts = append(storeOpts, storage.WithSealer(sealer))
	}

	kv := e.kvOverride
	if kv == nil {
		var err error
		kv, err = storage.Open(ctx, e.Config.KVConfig(), e.Logger)
		if err != nil {
			return domain.NewPersistenceError("open", e.Config.Storage.Engine, err)
		}
		e.shutdown.OnShutdown("storage", func(context.Context) error {
			return kv.Close()
		})
	}
	if badgerKV, ok := kv.(*storage.BadgerEngine); ok {
		if err := badgerKV.RegisterMetrics(e.Metrics); err != nil {
			e.Logger.Warn("register storage metrics", "error", err)
		}
	}

	client := connection.NewHTTPClient(e.Config.Server, clientOpts...)
	session := service.NewSessionManager(
		storage.NewSessionStore(kv, storeOpts...),
		client,
		service.WithSessionLogger(e.Logger),
		service.WithSessionObserver(e.Metrics),
	)
	if err := e.Metrics.Register(metric.NewSessionCollector(session.StateValue)); err != nil {
		e.Logger.Warn("register session collector", "error", err)
	}
	if err := session.Restore(ctx); err != nil {
		e.Logger.Warn("could not restore session", "error", err)
	}

	e.client = client
	e.session = session
	e.auth = service.NewAuthAPI(client)
	e.matches = service.NewMatchAPI(client)
	e.invites = service.NewInviteAPI(client)
	return nil
}

// Close runs the shutdown hooks.
func (e *Env) Close() error {
	return e.shutdown.Shutdown()
}

// Context returns the context for one command: the signal-aware parent
// bounded by the configured timeout.
func (e *Env) Context(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	if t := e.Timeout(); t > 0 {
		return context.WithTimeout(parent, t)
	}
	return context.WithCancel(parent)
}

// Session returns the session manager, opening services if needed.
func (e *Env) Session(ctx context.Context) (*service.SessionManager, error) {
	if err := e.open(ctx); err != nil {
		return nil, err
	}
	return e.session, nil
}

// View returns the read-only session view, opening services if needed.
func (e *Env) View(ctx context.Context) (service.SessionView, error) {
	if err := e.open(ctx); err != nil {
		return nil, err
	}
	return e.session, nil
}

// requireSession fails with ErrNotAuthenticated when nobody is signed in.
func (e *Env) requireSession(ctx context.Context) error {
	view, err := e.View(ctx)
	if err != nil {
		return err
	}
	if !view.Session().Authenticated() {
		return domain.ErrNotAuthenticated
	}
	return nil
}

// Format returns the current output format.
func (e *Env) Format() output.Format {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.format
}

// Timeout returns the current per-command timeout.
func (e *Env) Timeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.timeout
}

// apply updates the settings that may change while the shell runs.
func (e *Env) apply(cfg *config.CLIConfig) error {
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	logger.SetLevel(cfg.Log.Level)

	e.mu.Lock()
	e.format = format
	e.timeout = timeout
	e.mu.Unlock()
	return nil
}

// Render writes data in the current output format.
func (e *Env) Render(data any) error {
	return output.NewFormatter(e.Format()).Format(e.out, data)
}

// Done reports a completed action. Tables get the message; json and yaml
// get data, or the message when data is nil.
func (e *Env) Done(message string, data any) error {
	if e.Format() == output.FormatTable {
		_, err := fmt.Fprintln(e.out, message)
		return err
	}
	if data == nil {
		data = map[string]string{"message": message}
	}
	return e.Render(data)
}

// ackData is the machine output for a backend acknowledgement. An empty
// body falls back to the message.
func ackData(ack domain.Ack) any {
	if ack.Empty() {
		return nil
	}
	return ack
}

// Prompter returns the shared prompter.
func (e *Env) Prompter() *input.Prompter {
	e.openMu.Lock()
	defer e.openMu.Unlock()
	if e.prompter == nil {
		e.prompter = input.NewPrompter(e.in, e.errOut)
	}
	return e.prompter
}

func (e *Env) usePrompter(p *input.Prompter) {
	e.openMu.Lock()
	defer e.openMu.Unlock()
	e.prompter = p
}

// fill prompts for the empty fields when running interactively.
func (e *Env) fill(fields ...promptField) error {
	if !e.interactive {
		return nil
	}
	p := e.Prompter()
	for _, f := range fields {
		if err := p.Fill(f.dst, f.label, f.def); err != nil {
			return err
		}
	}
	return nil
}

type promptField struct {
	dst   *string
	label string
	def   string
}

// spin runs fn with a spinner on stderr.
func (e *Env) spin(message string, fn func() error) error {
	s := output.NewSpinner(e.errOut, message)
	s.Start()
	defer s.Stop()
	return fn()
}
