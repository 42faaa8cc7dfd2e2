package tui

import (
	"hnterm/internal/actions"
	"hnterm/internal/hn"
	"hnterm/internal/reconcile"
	"hnterm/internal/thread"
)

// itemRow is one story or comment together with its reconciled action
// state.
type itemRow struct {
	kind    actions.Kind
	id      string
	story   *hn.Story
	comment *hn.Comment
	vote    reconcile.VoteState
	fav     reconcile.FavoriteState
	// favPending is set while a favorite request is in flight.
	favPending bool
}

func (r *itemRow) controls() hn.Controls {
	if r.story != nil {
		return r.story.Controls
	}
	if r.comment != nil {
		return r.comment.Controls
	}
	return hn.Controls{}
}

type listState struct {
	path   string
	page   int
	more   string
	rows   []*itemRow
	cursor int
}

type threadState struct {
	path  string
	story *itemRow
	rows  []*itemRow
	t     *thread.Thread
	// cur is the selected comment index, or -1 for the story header.
	cur int
}

func (m appModel) storyRow(s hn.Story) *itemRow {
	s2 := s
	return &itemRow{
		kind:  actions.KindStory,
		id:    s.ID,
		story: &s2,
		vote:  reconcile.ResolveVote(m.store, actions.KindStory, s.ID, s.Controls),
		fav:   reconcile.ResolveFavorite(m.store, actions.KindStory, s.ID, s.Controls),
	}
}

func (m appModel) commentRow(c hn.Comment) *itemRow {
	c2 := c
	return &itemRow{
		kind:    actions.KindComment,
		id:      c.ID,
		comment: &c2,
		vote:    reconcile.ResolveVote(m.store, actions.KindComment, c.ID, c.Controls),
		fav:     reconcile.ResolveFavorite(m.store, actions.KindComment, c.ID, c.Controls),
	}
}

// applyPage builds the view state for a freshly loaded page. The store
// must be loaded and told about the page's user first.
func (m *appModel) applyPage(path string, page *hn.Page) {
	if m.store != nil {
		m.store.BeginPage(page.User)
	}
	m.user = page.User

	if page.Kind == hn.PageItem || page.Item != nil || len(page.Comments) > 0 {
		ts := threadState{path: path, cur: 0}
		if page.Item != nil {
			ts.story = m.storyRow(*page.Item)
			ts.cur = -1
		}
		ts.rows = make([]*itemRow, len(page.Comments))
		for i, c := range page.Comments {
			ts.rows[i] = m.commentRow(c)
		}
		ts.t = thread.New(hn.ThreadItems(page.Comments))
		if ts.story == nil && ts.t.Len() == 0 {
			ts.cur = -1
		}
		m.thread = ts
		m.view = viewThread
		return
	}

	ls := listState{path: path, page: m.list.page, more: page.MoreHref}
	ls.rows = make([]*itemRow, len(page.Stories))
	for i, s := range page.Stories {
		ls.rows[i] = m.storyRow(s)
	}
	m.list = ls
	m.view = viewList
}

// selectedRow returns the row the action keys apply to.
func (m *appModel) selectedRow() *itemRow {
	switch m.view {
	case viewList:
		if m.list.cursor >= 0 && m.list.cursor < len(m.list.rows) {
			return m.list.rows[m.list.cursor]
		}
	case viewThread:
		if m.thread.cur < 0 {
			return m.thread.story
		}
		if m.thread.cur < len(m.thread.rows) {
			return m.thread.rows[m.thread.cur]
		}
	}
	return nil
}

// rowsByID finds the rows of both views showing the given item.
func (m *appModel) rowsByID(kind actions.Kind, id string) []*itemRow {
	var out []*itemRow
	if s := m.thread.story; s != nil && s.kind == kind && s.id == id {
		out = append(out, s)
	}
	for _, rows := range [][]*itemRow{m.thread.rows, m.list.rows} {
		for _, r := range rows {
			if r.kind == kind && r.id == id {
				out = append(out, r)
			}
		}
	}
	return out
}

// syncListRow carries the thread header's action state back to the list
// row of the same story.
func (m *appModel) syncListRow() {
	s := m.thread.story
	if s == nil {
		return
	}
	for _, r := range m.list.rows {
		if r.kind == s.kind && r.id == s.id {
			r.vote.Current = s.vote.Current
			r.fav.Favorited = s.fav.Favorited
			if s.fav.Href != "" {
				r.fav.Href = s.fav.Href
			}
		}
	}
}
