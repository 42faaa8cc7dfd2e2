package cli

import (
	"strconv"
	"strings"

	"hnterm/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit ~/.hnterm/config.json",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.configPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"path": p})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the config (session cookie masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, cfg.Redacted())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one config key",
		Long: strings.TrimSpace(`
Keys: baseUrl, userCookie, backend, dataDir, redisUrl, debounceMs,
logPath, logLevel, glyphs, profile. An empty value clears the key.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setConfigKey(cfg, args[0], strings.TrimSpace(args[1])); err != nil {
				return writeErr(cmd, err)
			}
			p, err := app.configPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := config.SaveFile(p, cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, cfg.Redacted())
		},
	})
	return cmd
}

func setConfigKey(cfg *config.Config, key, value string) error {
	backend := func() *config.BackendConfig {
		if cfg.Backend == nil {
			cfg.Backend = &config.BackendConfig{}
		}
		return cfg.Backend
	}
	tuiCfg := func() *config.TUIConfig {
		if cfg.TUI == nil {
			cfg.TUI = &config.TUIConfig{}
		}
		return cfg.TUI
	}

	switch key {
	case "baseUrl":
		cfg.BaseURL = value
	case "userCookie":
		cfg.UserCookie = value
	case "backend":
		switch value {
		case "", "file", "sqlite", "redis", "memory":
		default:
			return errUsage("invalid backend %q", value)
		}
		backend().Kind = value
	case "dataDir":
		backend().Dir = value
	case "redisUrl":
		backend().RedisURL = value
	case "debounceMs":
		if value == "" {
			cfg.DebounceMs = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return errUsage("invalid debounceMs %q", value)
		}
		cfg.DebounceMs = n
	case "logPath":
		cfg.LogPath = value
	case "logLevel":
		cfg.LogLevel = value
	case "glyphs":
		tuiCfg().Glyphs = value
	case "profile":
		tuiCfg().Profile = value
	default:
		return errUsage("unknown config key %q", key)
	}
	return nil
}
