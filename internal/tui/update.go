package tui

import (
	"context"
	"errors"
	"strings"

	"hnterm/internal/actions"
	"hnterm/internal/hn"
	"hnterm/internal/reconcile"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type pageLoadedMsg struct {
	seq  int
	path string
	page *hn.Page
	err  error
}

type favoriteDoneMsg struct {
	kind    actions.Kind
	id      string
	action  *reconcile.FavoriteAction
	outcome reconcile.FavoriteOutcome
}

type replyDoneMsg struct {
	id  string
	err error
}

// loadCmd fetches path and makes sure the action store is loaded before
// the page is reconciled and rendered.
func (m appModel) loadCmd(path string, seq int) tea.Cmd {
	fetch, store, timeout := m.fetch, m.store, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		page, err := fetch.Page(ctx, path)
		if store != nil {
			store.Load(ctx)
		}
		return pageLoadedMsg{seq: seq, path: path, page: page, err: err}
	}
}

func (m *appModel) navigate(path string) tea.Cmd {
	m.loadSeq++
	m.loading = true
	m.flash = ""
	return tea.Batch(m.spinner.Tick, m.loadCmd(path, m.loadSeq))
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.composer.SetWidth(max(20, msg.Width-4))
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.logger.Warn("page load failed", "path", msg.path, "err", msg.err)
			m.setFlash("load failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.applyPage(msg.path, msg.page)
		m.vp.SetYOffset(0)
		m.refreshViewport()
		return m, nil

	case favoriteDoneMsg:
		st := m.recon.CompleteFavorite(msg.action, msg.outcome)
		for _, r := range m.rowsByID(msg.kind, msg.id) {
			r.fav = st
			r.favPending = false
		}
		if !msg.outcome.Sent {
			m.setFlash("favorite unavailable for this item", true)
		}
		m.refreshViewport()
		return m, nil

	case replyDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, hn.ErrMissingActionTarget) {
				m.setFlash("reply unavailable for this item", true)
			} else {
				m.setFlash("reply failed", true)
			}
			return m, nil
		}
		m.setFlash("reply posted", false)
		if m.view == viewThread {
			cmd := m.navigate(m.thread.path)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.composing {
			return m.updateComposer(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.forView(m.view)

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.refreshViewport()
		return m, nil
	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, keys.Upvote):
		m.vote(actions.VoteUp)
		return m, nil
	case key.Matches(msg, keys.Downvote):
		m.vote(actions.VoteDown)
		return m, nil
	case key.Matches(msg, keys.Favorite):
		cmd := m.favorite()
		return m, cmd
	case key.Matches(msg, keys.Reload):
		if m.view == viewThread {
			cmd := m.navigate(m.thread.path)
			return m, cmd
		}
		cmd := m.navigate(hn.NewsPath(m.list.page))
		return m, cmd
	}

	if m.view == viewList {
		return m.updateListKey(msg, keys)
	}
	return m.updateThreadKey(msg, keys)
}

func (m appModel) updateListKey(msg tea.KeyMsg, keys KeyMap) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Open):
		if r := m.selectedRow(); r != nil {
			cmd := m.navigate(hn.ItemPath(r.id))
			return m, cmd
		}
	case key.Matches(msg, keys.NextPage):
		if m.list.more != "" || len(m.list.rows) > 0 {
			m.list.page++
			cmd := m.navigate(hn.NewsPath(m.list.page))
			return m, cmd
		}
	case key.Matches(msg, keys.PrevPage):
		if m.list.page > 1 {
			m.list.page--
			cmd := m.navigate(hn.NewsPath(m.list.page))
			return m, cmd
		}
	}
	m.refreshViewport()
	return m, nil
}

func (m appModel) updateThreadKey(msg tea.KeyMsg, keys KeyMap) (tea.Model, tea.Cmd) {
	ts := &m.thread
	switch {
	case key.Matches(msg, keys.Back):
		m.syncListRow()
		m.view = viewList
		if len(m.list.rows) == 0 {
			cmd := m.navigate(hn.NewsPath(m.list.page))
			return m, cmd
		}
	case key.Matches(msg, keys.Toggle):
		if it, ok := ts.t.Item(ts.cur); ok && it.HasChildren {
			ts.t.Toggle(ts.cur)
		}
	case key.Matches(msg, keys.CollapseAll):
		ts.t.CollapseAll()
		m.revealCursor()
	case key.Matches(msg, keys.ExpandAll):
		ts.t.ExpandAll()
	case key.Matches(msg, keys.Parent):
		if p := ts.t.Parent(ts.cur); p >= 0 {
			ts.cur = p
		} else if ts.story != nil {
			ts.cur = -1
		}
	case key.Matches(msg, keys.NextSibling):
		if n := ts.t.NextSibling(ts.cur); n >= 0 {
			ts.cur = n
		}
	case key.Matches(msg, keys.PrevSibling):
		if p := ts.t.PrevSibling(ts.cur); p >= 0 {
			ts.cur = p
		}
	case key.Matches(msg, keys.Reply):
		cmd := m.startReply()
		return m, cmd
	}
	m.refreshViewport()
	return m, nil
}

// moveCursor moves the selection by delta over visible rows.
func (m *appModel) moveCursor(delta int) {
	if m.view == viewList {
		m.list.cursor = clamp(m.list.cursor+delta, 0, len(m.list.rows)-1)
		m.refreshViewport()
		return
	}

	ts := &m.thread
	vis := ts.t.Visible()
	order := make([]int, 0, len(vis)+1)
	if ts.story != nil {
		order = append(order, -1)
	}
	order = append(order, vis...)
	if len(order) == 0 {
		return
	}
	pos := 0
	for i, idx := range order {
		if idx == ts.cur {
			pos = i
			break
		}
	}
	ts.cur = order[clamp(pos+delta, 0, len(order)-1)]
	m.refreshViewport()
}

// revealCursor moves a selection that became hidden to its nearest
// visible ancestor.
func (m *appModel) revealCursor() {
	ts := &m.thread
	for {
		it, ok := ts.t.Item(ts.cur)
		if !ok || !it.Hidden() {
			return
		}
		ts.cur = ts.t.Parent(ts.cur)
	}
}

func (m *appModel) vote(dir actions.Vote) {
	r := m.selectedRow()
	if r == nil || m.recon == nil {
		return
	}
	v, ok := m.recon.Vote(r.vote, dir)
	if !ok {
		m.setFlash("voting unavailable for this item", true)
		return
	}
	for _, row := range m.rowsByID(r.kind, r.id) {
		row.vote.Current = v.Current
	}
	m.refreshViewport()
}

func (m *appModel) favorite() tea.Cmd {
	r := m.selectedRow()
	if r == nil || m.recon == nil || r.favPending {
		return nil
	}
	a := m.recon.BeginFavorite(r.fav)
	for _, row := range m.rowsByID(r.kind, r.id) {
		row.fav = a.Optimistic()
		row.favPending = true
	}
	m.refreshViewport()

	recon, timeout, kind, id := m.recon, m.timeout, r.kind, r.id
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return favoriteDoneMsg{kind: kind, id: id, action: a, outcome: recon.RunFavorite(ctx, a)}
	}
}

func (m *appModel) startReply() tea.Cmd {
	if m.user == "" {
		m.setFlash("log in to reply", true)
		return nil
	}
	r := m.selectedRow()
	if r == nil {
		return nil
	}
	m.composing = true
	m.composer.Reset()
	m.refreshViewport()
	return m.composer.Focus()
}

func (m appModel) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.composing = false
		m.composer.Blur()
		m.refreshViewport()
		return m, nil
	case "ctrl+s":
		text := strings.TrimSpace(m.composer.Value())
		r := m.selectedRow()
		m.composing = false
		m.composer.Blur()
		m.refreshViewport()
		if text == "" || r == nil {
			return m, nil
		}
		m.setFlash("posting reply…", false)
		recon, timeout, id, href := m.recon, m.timeout, r.id, r.controls().ReplyHref
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return replyDoneMsg{id: id, err: recon.Reply(ctx, id, href, text)}
		}
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m *appModel) setFlash(s string, isErr bool) {
	m.flash = s
	m.flashErr = isErr
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
