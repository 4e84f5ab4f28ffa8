package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cricket-go/internal/cli/config"
	"github.com/yndnr/cricket-go/internal/cli/input"
	"github.com/yndnr/cricket-go/internal/cli/repl"
	"github.com/yndnr/cricket-go/internal/infra/confloader"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive shell that keeps you signed in",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-banner",
				Usage: "Do not print the banner",
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	view, err := env.View(ctx)
	if err != nil {
		return fail(err, "Could not start shell")
	}

	// The shell and prompting commands read the same stream.
	reader := bufio.NewReader(env.in)
	env.usePrompter(input.NewPrompter(reader, env.errOut))

	history := repl.NewHistory(config.ExpandHome(env.Config.Shell.HistoryFile))
	if err := history.Load(); err != nil {
		env.Logger.Debug("could not load shell history", "error", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			env.Logger.Warn("could not save shell history", "error", err)
		}
	}()

	if w := watchConfig(env); w != nil {
		defer w.Stop()
	}

	exec := func(ctx context.Context, args []string) error {
		app := App(withEnv(env), WithIO(reader, env.out, env.errOut))
		return app.RunContext(ctx, append([]string{appName}, args...))
	}

	r := repl.New(exec,
		repl.WithIO(reader, env.out),
		repl.WithHistory(history),
		repl.WithCompleter(repl.NewCompleter(shellCommands())),
		repl.WithPrompt(func() string {
			s := view.Session()
			if s.Authenticated() {
				return fmt.Sprintf("cricket(%s)> ", s.Name())
			}
			return "cricket> "
		}),
		repl.WithBanner(!c.Bool("no-banner")),
	)
	return r.Run(ctx)
}

// shellCommands lists the commands accepted inside the shell.
func shellCommands() []string {
	var names []string
	for _, name := range CommandNames() {
		if name != "shell" {
			names = append(names, name)
		}
	}
	return names
}

// watchConfig applies edits to the config file while the shell runs.
// Only the output format, timeout and log level are reloaded; the session
// is never touched.
func watchConfig(env *Env) *confloader.Watcher {
	if _, err := os.Stat(filepath.Dir(env.ConfigPath)); err != nil {
		return nil
	}
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(env.Logger))
	if err != nil {
		env.Logger.Warn("could not watch config", "error", err)
		return nil
	}
	if err := w.Watch(env.ConfigPath); err != nil {
		_ = w.Stop()
		return nil
	}

	w.OnChange(func(path string) {
		cfg, err := config.Load(path, nil)
		if err == nil {
			err = cfg.Validate()
		}
		if err == nil {
			err = env.apply(cfg)
		}
		if err != nil {
			env.Logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		env.Logger.Info("config reloaded", "path", path, "output", cfg.Output, "log_level", cfg.Log.Level)
	})
	w.StartAsync()
	return w
}
