package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hnterm/internal/actions"
	"hnterm/internal/config"
	"hnterm/internal/hn"
	"hnterm/internal/reconcile"
)

// session is everything a command needs to talk to the site and the
// action store. Close must be called to flush pending state.
type session struct {
	cfg     *config.Config
	dir     string
	logger  *slog.Logger
	logFile *os.File
	store   *actions.Store
	client  *hn.Client
	recon   *reconcile.Reconciler
}

func (app *App) configDir() (string, error) {
	if d := strings.TrimSpace(app.ConfigDir); d != "" {
		return d, nil
	}
	return config.Dir()
}

func (app *App) configPath() (string, error) {
	dir, err := app.configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func (app *App) loadConfig() (*config.Config, string, error) {
	dir, err := app.configDir()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, "", err
	}
	return cfg, dir, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func openSession(ctx context.Context, app *App) (*session, error) {
	cfg, dir, err := app.loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, dir: dir}
	s.logger, s.logFile = newLogger(app, cfg, dir)

	be := cfg.Backend
	if be == nil {
		be = &config.BackendConfig{}
	}
	opts := actions.BackendOptions{
		Kind:     actions.BackendKind(firstNonEmpty(app.Backend, cfg.BackendKind())),
		Dir:      firstNonEmpty(app.DataDir, be.Dir, dir),
		RedisURL: firstNonEmpty(app.RedisURL, be.RedisURL),
	}
	backend, err := actions.OpenBackend(ctx, opts)
	if err != nil {
		// Votes and favorites still work for this session, they just
		// are not remembered.
		s.logger.Warn("action store unavailable, using memory", "backend", string(opts.Kind), "err", err)
		backend = actions.NewMemoryBackend()
	}
	s.store = actions.NewStore(actions.Options{
		Backend:  backend,
		Debounce: time.Duration(cfg.DebounceMs) * time.Millisecond,
		Logger:   s.logger.With("component", "actions"),
	})

	s.client, err = hn.NewClient(hn.ClientOptions{
		BaseURL:    firstNonEmpty(app.BaseURL, cfg.BaseURL),
		UserCookie: firstNonEmpty(app.UserCookie, cfg.UserCookie),
		Logger:     s.logger.With("component", "hn"),
	})
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	s.recon = reconcile.New(reconcile.Options{
		Store:     s.store,
		Requester: s.client,
		Logger:    s.logger.With("component", "reconcile"),
	})
	return s, nil
}

// Close waits briefly for detached action requests, then flushes the
// action store.
func (s *session) Close(ctx context.Context) error {
	var errs []error
	if s.recon != nil {
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := s.recon.Wait(wctx); err != nil {
			s.logger.Warn("detached requests still running at exit", "err", err)
		}
		cancel()
	}
	if s.store != nil {
		errs = append(errs, s.store.Close(ctx))
	}
	if s.logFile != nil {
		errs = append(errs, s.logFile.Close())
	}
	return errors.Join(errs...)
}

// newLogger opens the log file. The TUI owns the terminal, so logs never
// go to stderr; when the file cannot be opened logging is discarded.
func newLogger(app *App, cfg *config.Config, dir string) (*slog.Logger, *os.File) {
	level := slog.LevelInfo
	if raw := firstNonEmpty(app.LogLevel, cfg.LogLevel); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = slog.LevelInfo
		}
	}
	path := firstNonEmpty(app.LogPath, cfg.LogPath, filepath.Join(dir, "hnterm.log"))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f
}
