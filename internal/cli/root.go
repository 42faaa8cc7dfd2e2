package cli

import (
	"fmt"
	"os"
	"strings"

	"hnterm/internal/config"
	"hnterm/internal/format"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigDir  string
	BaseURL    string
	UserCookie string
	Backend    string
	DataDir    string
	RedisURL   string
	LogPath    string
	LogLevel   string
	Glyphs     string
	Profile    string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "hnterm",
		Short:        "Terminal client for Hacker News threads",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse the front page
  hnterm

  # Open a thread (shortcut for: hnterm item <id>)
  hnterm 8863

  # Print a thread as YAML with one subtree collapsed
  hnterm thread 8863 --collapse 8952 --format yaml

  # Inspect locally remembered votes and favorites
  hnterm actions list --pretty
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, "")
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigDir, "config-dir", "", "Config directory (default ~/.hnterm, env "+config.DirEnv+")")
	pf.StringVar(&app.BaseURL, "base-url", envOr("HNTERM_BASE_URL", ""), "Site root URL (default from config, else the public site)")
	pf.StringVar(&app.UserCookie, "cookie", envOr("HNTERM_USER_COOKIE", ""), "Value of the site's \"user\" session cookie")
	pf.StringVar(&app.Backend, "backend", envOr("HNTERM_BACKEND", ""), "Action store backend (file|sqlite|redis|memory)")
	pf.StringVar(&app.DataDir, "data-dir", envOr("HNTERM_DATA_DIR", ""), "Data directory for the file and sqlite backends")
	pf.StringVar(&app.RedisURL, "redis-url", envOr("HNTERM_REDIS_URL", ""), "redis:// URL for the redis backend")
	pf.StringVar(&app.LogPath, "log", envOr("HNTERM_LOG", ""), "Log file (default <config-dir>/hnterm.log)")
	pf.StringVar(&app.LogLevel, "log-level", envOr("HNTERM_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")
	pf.StringVar(&app.Glyphs, "glyphs", envOr("HNTERM_TUI_GLYPHS", ""), "TUI glyph set (unicode|ascii)")
	pf.StringVar(&app.Profile, "color-profile", envOr("HNTERM_TUI_PROFILE", ""), "TUI color profile (truecolor|ansi256|ansi|ascii)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	pf.StringVar(&app.Format, "format", envOr("HNTERM_FORMAT", "json"), "Output format ("+strings.Join(format.Formats, "|")+")")

	cmd.AddCommand(newItemCmd(app))
	cmd.AddCommand(newThreadCmd(app))
	cmd.AddCommand(newVoteCmd(app))
	cmd.AddCommand(newFavoriteCmd(app))
	cmd.AddCommand(newActionsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
