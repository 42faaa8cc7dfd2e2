package cli

import (
	"context"
	"strings"

	"hnterm/internal/hn"
	"hnterm/internal/tui"

	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "item <id>",
		Short: "Open a thread in the TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !isItemID(id) {
				return writeErr(cmd, errUsage("invalid item id: %q", args[0]))
			}
			return runTUI(cmd, app, hn.ItemPath(id))
		},
	}
}

func runTUI(cmd *cobra.Command, app *App, startPath string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}

	tuiCfg := s.cfg.TUI
	glyphs, profile := app.Glyphs, app.Profile
	if tuiCfg != nil {
		glyphs = firstNonEmpty(glyphs, tuiCfg.Glyphs)
		profile = firstNonEmpty(profile, tuiCfg.Profile)
	}

	runErr := tui.Run(tui.Options{
		Fetcher:    s.client,
		Store:      s.store,
		Reconciler: s.recon,
		Logger:     s.logger.With("component", "tui"),
		StartPath:  startPath,
		Glyphs:     glyphs,
		Profile:    profile,
	})
	closeErr := s.Close(context.WithoutCancel(ctx))
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	if closeErr != nil {
		return writeErr(cmd, closeErr)
	}
	return nil
}

// isItemID reports whether s looks like a numeric item id.
func isItemID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsItemID is exported for the argv shortcut in main.
func IsItemID(s string) bool { return isItemID(s) }
