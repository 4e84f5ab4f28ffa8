package command

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cricket-go/internal/infra/buildinfo"
	"github.com/yndnr/cricket-go/internal/storage"
)

const appName = "cricket-cli"

const envKey = "env"

type options struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive *bool
	kv          storage.KVEngine
	httpClient  *http.Client
	now         func() time.Time
	env         *Env
}

// Option configures App.
type Option func(*options)

// WithIO sets the streams used by commands.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
		o.errOut = errOut
	}
}

// WithInteractive forces prompting on or off. By default prompts are
// shown only when stdin is a terminal.
func WithInteractive(on bool) Option {
	return func(o *options) {
		o.interactive = &on
	}
}

// WithKVEngine uses kv instead of opening the configured engine. The
// caller keeps ownership.
func WithKVEngine(kv storage.KVEngine) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithClock sets the time source used for match badges and token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// withEnv reuses an existing environment. Used by the shell so every
// line shares one session.
func withEnv(env *Env) Option {
	return func(o *options) {
		o.env = env
	}
}

// App creates the CLI application.
func App(opts ...Option) *cli.App {
	o := &options{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	app := &cli.App{
		Name:                 appName,
		Usage:                "Cricket match client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands(),
		Reader:               o.in,
		Writer:               o.out,
		ErrWriter:            o.errOut,
		EnableBashCompletion: true,
		HideVersion:          o.env != nil,
		Metadata:             map[string]any{},
		// Exit codes are decided by the caller; the shell must survive failures.
		ExitErrHandler: func(*cli.Context, error) {},
	}

	app.Before = func(c *cli.Context) error {
		if o.env != nil {
			c.App.Metadata[envKey] = o.env
			return nil
		}
		env, err := newEnv(c, o)
		if err != nil {
			return err
		}
		c.App.Metadata[envKey] = env
		return nil
	}
	app.After = func(c *cli.Context) error {
		if o.env != nil {
			return nil
		}
		env, ok := c.App.Metadata[envKey].(*Env)
		if !ok {
			return nil
		}
		return env.Close()
	}
	return app
}

func commands() []*cli.Command {
	return []*cli.Command{
		AuthCommand(),
		MatchCommand(),
		InviteCommand(),
		ConfigCommand(),
		VersionCommand(),
		ShellCommand(),
	}
}

// CommandNames lists the top-level command names and aliases.
func CommandNames() []string {
	var names []string
	for _, cmd := range commands() {
		names = append(names, cmd.Name)
		names = append(names, cmd.Aliases...)
	}
	return append(names, "help", "h")
}

// globalFlags returns the global CLI flags. Values given here override
// the config file and CRICKET_* variables.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path (default ~/.cricket/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Backend base URL (e.g., http://localhost:5000)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "timeout",
			Usage: "Per-command timeout (e.g., 30s); 0 disables",
		},
		&cli.StringFlag{
			Name:  "storage",
			Usage: "Session storage engine: badger, redis, memory",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Session storage directory for badger",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json, console",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "Export request spans to stderr",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this file on exit",
		},
	}
}

// flagKeys maps string flags to config keys.
var flagKeys = map[string]string{
	"server":       "server",
	"output":       "output",
	"timeout":      "timeout",
	"storage":      "storage.engine",
	"data-dir":     "storage.dir",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics-file": "metrics.file",
}

// flagOverrides collects the flags set on the command line as config
// overrides.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for name, key := range flagKeys {
		if c.IsSet(name) {
			overrides[key] = c.String(name)
		}
	}
	if c.IsSet("trace") {
		overrides["trace.enabled"] = c.Bool("trace")
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

// envFrom retrieves the command environment from context.
func envFrom(c *cli.Context) (*Env, error) {
	for _, ctx := range c.Lineage() {
		if ctx.App == nil {
			continue
		}
		if env, ok := ctx.App.Metadata[envKey].(*Env); ok {
			return env, nil
		}
	}
	return nil, cli.Exit("command environment not initialized", 1)
}
