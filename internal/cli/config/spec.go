package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/cricket-go/internal/cli/connection"
	"github.com/yndnr/cricket-go/internal/cli/input"
	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/infra/tlsroots"
	"github.com/yndnr/cricket-go/internal/storage"
)

// CLIConfig is the configuration for cricket-cli.
type CLIConfig struct {
	Server  string        `koanf:"server" yaml:"server" validate:"required"`
	Output  string        `koanf:"output" yaml:"output" validate:"oneof=table json yaml"`
	Timeout string        `koanf:"timeout" yaml:"timeout"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
	Storage StorageConfig `koanf:"storage" yaml:"storage"`
	Metrics MetricsConfig `koanf:"metrics" yaml:"metrics"`
	Trace   TraceConfig   `koanf:"trace" yaml:"trace"`
	TLS     TLSConfig     `koanf:"tls" yaml:"tls"`
	Shell   ShellConfig   `koanf:"shell" yaml:"shell"`
}

// LogConfig controls diagnostic logging. Logs go to stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=text json console"`
}

// StorageConfig selects where the session is kept between runs.
type StorageConfig struct {
	Engine        string      `koanf:"engine" yaml:"engine" validate:"oneof=badger redis memory"`
	Dir           string      `koanf:"dir" yaml:"dir"`
	EncryptionKey string      `koanf:"encryption_key" yaml:"encryption_key,omitempty" validate:"omitempty,hexadecimal,len=64"`
	Redis         RedisConfig `koanf:"redis" yaml:"redis"`
}

// RedisConfig is used when Storage.Engine is redis.
type RedisConfig struct {
	Addr     string `koanf:"addr" yaml:"addr"`
	Password string `koanf:"password" yaml:"password,omitempty"`
	DB       int    `koanf:"db" yaml:"db" validate:"gte=0"`
	Prefix   string `koanf:"prefix" yaml:"prefix"`
}

// MetricsConfig controls the Prometheus textfile written on exit.
type MetricsConfig struct {
	File string `koanf:"file" yaml:"file,omitempty"`
}

// TraceConfig controls span export to stderr.
type TraceConfig struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
}

// TLSConfig controls how HTTPS backends are verified.
type TLSConfig struct {
	CAFile             string `koanf:"ca_file" yaml:"ca_file,omitempty"`
	CertFile           string `koanf:"cert_file" yaml:"cert_file,omitempty"`
	KeyFile            string `koanf:"key_file" yaml:"key_file,omitempty"`
	InsecureSkipVerify bool   `koanf:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`
}

// ShellConfig configures the interactive shell.
type ShellConfig struct {
	HistoryFile string `koanf:"history_file" yaml:"history_file"`
}

// DefaultTimeout bounds one command's backend calls.
const DefaultTimeout = 30 * time.Second

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	redis := storage.DefaultRedisConfig()
	return &CLIConfig{
		Server:  connection.DefaultBaseURL,
		Output:  "table",
		Timeout: DefaultTimeout.String(),
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Storage: StorageConfig{
			Engine: storage.EngineBadger,
			Dir:    filepath.Join(baseDir(), "data"),
			Redis: RedisConfig{
				Addr:   redis.Addr,
				Prefix: redis.Prefix,
			},
		},
		Shell: ShellConfig{
			HistoryFile: filepath.Join(baseDir(), "history"),
		},
	}
}

// Keys lists every configuration key.
var Keys = []string{
	"server", "output", "timeout",
	"log.level", "log.format",
	"storage.engine", "storage.dir", "storage.encryption_key",
	"storage.redis.addr", "storage.redis.password", "storage.redis.db", "storage.redis.prefix",
	"metrics.file", "trace.enabled", "shell.history_file",
	"tls.ca_file", "tls.cert_file", "tls.key_file", "tls.insecure_skip_verify",
}

// defaultValues flattens Default for the loader's lowest layer.
func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"server":               d.Server,
		"output":               d.Output,
		"timeout":              d.Timeout,
		"log.level":            d.Log.Level,
		"log.format":           d.Log.Format,
		"storage.engine":       d.Storage.Engine,
		"storage.dir":          d.Storage.Dir,
		"storage.redis.addr":   d.Storage.Redis.Addr,
		"storage.redis.prefix": d.Storage.Redis.Prefix,
		"shell.history_file":   d.Shell.HistoryFile,
	}
}

// TimeoutDuration parses Timeout. Zero disables the per-command deadline.
func (c *CLIConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" || c.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout: must not be negative")
	}
	return d, nil
}

// Validate checks the configuration.
func (c *CLIConfig) Validate() error {
	if err := input.Validate(c); err != nil {
		return domain.ErrConfigInvalid.WithDetails(err.Error()).WithCause(err)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return domain.ErrConfigInvalid.WithDetails(err.Error()).WithCause(err)
	}
	if c.Storage.Engine == storage.EngineRedis && c.Storage.Redis.Addr == "" {
		return domain.ErrConfigInvalid.WithDetails("storage.redis.addr is required for the redis engine")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return domain.ErrConfigInvalid.WithDetails("tls.cert_file and tls.key_file must be set together")
	}
	if c.Storage.Engine == storage.EngineBadger && c.Storage.Dir == "" {
		return domain.ErrConfigInvalid.WithDetails("storage.dir is required for the badger engine")
	}
	return nil
}

// KVConfig converts the storage section for storage.Open.
func (c *CLIConfig) KVConfig() storage.KVConfig {
	kv := storage.DefaultKVConfig(ExpandHome(c.Storage.Dir))
	kv.Engine = c.Storage.Engine
	kv.Redis.Addr = c.Storage.Redis.Addr
	kv.Redis.Password = c.Storage.Redis.Password
	kv.Redis.DB = c.Storage.Redis.DB
	if c.Storage.Redis.Prefix != "" {
		kv.Redis.Prefix = c.Storage.Redis.Prefix
	}
	return kv
}

// TLSClient converts the tls section for tlsroots.
func (c *CLIConfig) TLSClient() tlsroots.ClientConfig {
	return tlsroots.ClientConfig{
		CAFile:             ExpandHome(c.TLS.CAFile),
		CertFile:           ExpandHome(c.TLS.CertFile),
		KeyFile:            ExpandHome(c.TLS.KeyFile),
		InsecureSkipVerify: c.TLS.InsecureSkipVerify,
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cricket"
	}
	return filepath.Join(home, ".cricket")
}
