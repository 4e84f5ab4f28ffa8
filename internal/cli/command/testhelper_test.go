package command

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/cricket-go/internal/storage"
	"github.com/yndnr/cricket-go/internal/testserver"
)

// harness runs cricket-cli against an in-process backend. The session
// engine outlives each run, as the badger directory would.
type harness struct {
	t      *testing.T
	srv    *testserver.Server
	kv     *storage.MemoryEngine
	dir    string
	config string
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := testserver.New()
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	h := &harness{
		t:      t,
		srv:    srv,
		kv:     storage.NewMemoryEngine(),
		dir:    dir,
		config: filepath.Join(dir, "cli.yaml"),
		now:    time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local),
	}
	h.writeConfig("shell:\n  history_file: " + filepath.Join(dir, "history") + "\n")
	return h
}

func (h *harness) writeConfig(content string) {
	h.t.Helper()
	require.NoError(h.t, os.WriteFile(h.config, []byte(content), 0o600))
}

// result is the outcome of one run.
type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one command line with empty stdin.
func (h *harness) run(args ...string) result {
	return h.runWithInput("", args...)
}

// runWithInput executes one command line reading stdin from input.
func (h *harness) runWithInput(input string, args ...string) result {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	app := App(
		WithIO(strings.NewReader(input), &stdout, &stderr),
		WithKVEngine(h.kv),
		WithInteractive(false),
		WithClock(func() time.Time { return h.now }),
	)
	full := append([]string{appName,
		"--config", h.config,
		"--server", h.srv.URL,
		"--storage", "memory",
	}, args...)
	err := app.Run(full)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// runDefaultStorage executes one command line with the configured
// storage engine instead of the shared in-memory one.
func (h *harness) runDefaultStorage(args ...string) result {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	app := App(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithInteractive(false),
		WithClock(func() time.Time { return h.now }),
	)
	full := append([]string{appName,
		"--config", h.config,
		"--server", h.srv.URL,
		"--data-dir", filepath.Join(h.dir, "data"),
	}, args...)
	err := app.Run(full)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// login signs in through the CLI as a fresh user.
func (h *harness) login(name string) {
	h.t.Helper()
	email := strings.ToLower(name) + "@example.com"
	h.srv.AddUser(email, "secret", name)
	res := h.run("auth", "login", "--email", email, "--password", "secret")
	require.NoError(h.t, res.err)
}

// makeTestContext creates a CLI context with the global flags parsed
// from args the way App parses them, aliases included.
func makeTestContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	var captured *cli.Context
	app := &cli.App{
		Name:      appName,
		Flags:     globalFlags(),
		Metadata:  map[string]any{},
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Action: func(c *cli.Context) error {
			captured = c
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{appName}, args...)))
	require.NotNil(t, captured)
	return captured
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}
