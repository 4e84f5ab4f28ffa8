package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/cricket-go/internal/cli/config"
	"github.com/yndnr/cricket-go/internal/cli/output"
	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/pkg/crypto/adaptive"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration file",
				Action: configValidate,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
					&cli.BoolFlag{
						Name:  "encrypt",
						Usage: "Generate a key to encrypt the saved session",
					},
				},
				Action: configInit,
			},
		},
	}
}

const redacted = "******"

func configShow(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	cfg := *env.Config
	if cfg.Storage.EncryptionKey != "" {
		cfg.Storage.EncryptionKey = redacted
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = redacted
	}

	data, err := config.Marshal(&cfg)
	if err != nil {
		return err
	}
	if env.Format() != output.FormatJSON {
		_, err := env.out.Write(data)
		return err
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	return env.Render(tree)
}

func configValidate(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	cfg, unknown, err := config.Check(env.ConfigPath)
	if err != nil {
		return fail(domain.ErrConfigInvalid.WithDetails(err.Error()).WithCause(err), "")
	}
	for _, key := range unknown {
		fmt.Fprintf(env.errOut, "warning: unknown key %q\n", key)
	}
	if err := cfg.Validate(); err != nil {
		return fail(err, "")
	}
	return env.Done(fmt.Sprintf("Configuration %s is valid.", env.ConfigPath), map[string]any{
		"path":        env.ConfigPath,
		"valid":       true,
		"unknownKeys": unknown,
	})
}

func configPath(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.out, env.ConfigPath)
	return err
}

func configInit(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	path := env.ConfigPath
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := config.Default()
	if c.IsSet("server") {
		cfg.Server = env.Config.Server
	}
	if c.Bool("encrypt") {
		key, err := adaptive.GenerateKey()
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		cfg.Storage.EncryptionKey = key
	}

	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return env.Done(fmt.Sprintf("Configuration written to %s", path), map[string]string{"path": path})
}
