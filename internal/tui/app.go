// Package tui is the interactive front end: a story list and a comment
// thread view built on Bubble Tea.
package tui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"hnterm/internal/actions"
	"hnterm/internal/hn"
	"hnterm/internal/reconcile"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Fetcher loads host pages.
type Fetcher interface {
	Page(ctx context.Context, path string) (*hn.Page, error)
}

type Options struct {
	Fetcher    Fetcher
	Store      *actions.Store
	Reconciler *reconcile.Reconciler
	Logger     *slog.Logger

	// StartPath is the first page to show ("news", "item?id=…").
	StartPath string
	Glyphs    string
	Profile   string
	// RequestTimeout bounds page loads and awaited actions.
	RequestTimeout time.Duration
}

type view int

const (
	viewList view = iota
	viewThread
)

type appModel struct {
	fetch   Fetcher
	store   *actions.Store
	recon   *reconcile.Reconciler
	logger  *slog.Logger
	timeout time.Duration

	width  int
	height int

	view    view
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	vp      viewport.Model

	startPath string
	user      string
	loading   bool
	loadSeq   int
	flash     string
	flashErr  bool

	list   listState
	thread threadState

	composing bool
	composer  textarea.Model
}

func newAppModel(opts Options) appModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	m := appModel{
		fetch:   opts.Fetcher,
		store:   opts.Store,
		recon:   opts.Reconciler,
		logger:  logger,
		timeout: timeout,
		view:    viewList,
		keys:    DefaultKeyMap,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		vp:      viewport.New(80, 20),
		width:   80,
		height:  24,
	}
	m.list.page = 1
	if opts.StartPath != "" {
		m.startPath = opts.StartPath
		m.loading = true
		m.loadSeq = 1
	}

	m.composer = textarea.New()
	m.composer.Placeholder = "Write a reply…"
	m.composer.CharLimit = 0
	m.composer.ShowLineNumbers = false
	m.composer.SetWidth(72)
	m.composer.SetHeight(6)
	return m
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	applyThemePreference()
	applyColorProfilePreference(opts.Profile)
	applyGlyphPreference(opts.Glyphs)

	if opts.StartPath == "" {
		opts.StartPath = hn.NewsPath(1)
	}
	_, err := tea.NewProgram(newAppModel(opts), tea.WithAltScreen()).Run()
	return err
}

func (m appModel) Init() tea.Cmd {
	if m.startPath == "" {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.loadCmd(m.startPath, m.loadSeq))
}
