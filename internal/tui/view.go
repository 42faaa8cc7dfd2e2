package tui

import (
	"fmt"
	"strings"

	"hnterm/internal/actions"
	"hnterm/internal/hn"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.loading && m.isEmpty() {
		b.WriteString(m.spinner.View() + " Loading…")
		b.WriteString(strings.Repeat("\n", max(1, m.bodyHeight())))
	} else {
		b.WriteString(m.vp.View())
		b.WriteString("\n")
	}
	b.WriteString(m.footerView())
	return b.String()
}

func (m appModel) isEmpty() bool {
	if m.view == viewList {
		return len(m.list.rows) == 0
	}
	return m.thread.story == nil && len(m.thread.rows) == 0
}

func (m appModel) headerView() string {
	left := "hnterm"
	switch m.view {
	case viewList:
		left += fmt.Sprintf(" %s page %d", glyphDot(), m.list.page)
	case viewThread:
		left += " " + glyphDot() + " " + m.thread.path
	}
	if m.loading && !m.isEmpty() {
		left += " " + m.spinner.View()
	}
	right := m.user
	if right == "" {
		right = "not logged in"
	}
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return styleHeader().Width(max(1, m.width)).Render(left + strings.Repeat(" ", gap) + right)
}

func (m appModel) footerView() string {
	var lines []string
	if m.composing {
		lines = append(lines, styleChrome().Render("Reply (ctrl+s send, esc cancel)"), m.composer.View())
	}
	if m.flash != "" {
		st := styleMuted()
		if m.flashErr {
			st = styleError()
		}
		lines = append(lines, st.Render(m.flash))
	}
	if !m.composing {
		lines = append(lines, m.help.View(m.keys.forView(m.view)))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) bodyHeight() int {
	used := 1 + lipgloss.Height(m.footerView())
	return max(3, m.height-used-1)
}

// refreshViewport re-renders the active view into the viewport and
// scrolls the selection into sight.
func (m *appModel) refreshViewport() {
	m.vp.Width = max(1, m.width)
	m.vp.Height = m.bodyHeight()

	var lines []string
	var selStart, selEnd int
	if m.view == viewList {
		lines, selStart, selEnd = m.renderList()
	} else {
		lines, selStart, selEnd = m.renderThread()
	}
	m.vp.SetContent(strings.Join(lines, "\n"))

	switch {
	case selStart < m.vp.YOffset:
		m.vp.SetYOffset(selStart)
	case selEnd > m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(max(selStart, selEnd-m.vp.Height))
	}
}

func (m appModel) renderList() (lines []string, selStart, selEnd int) {
	w := max(20, m.width)
	if len(m.list.rows) == 0 {
		return []string{styleMuted().Render("No stories.")}, 0, 1
	}
	for i, r := range m.list.rows {
		s := r.story
		title := fmt.Sprintf("%3d. %s %s", s.Rank, m.voteMarker(r), styleTitle().Render(s.Title))
		if s.Site != "" {
			title += styleMuted().Render(" (" + s.Site + ")")
		}
		sub := "     " + m.storyByline(r)

		rowLines := []string{
			xansi.Truncate(title, w, "…"),
			xansi.Truncate(sub, w, "…"),
		}
		if i == m.list.cursor {
			selStart = len(lines)
			selEnd = selStart + len(rowLines)
			for j := range rowLines {
				rowLines[j] = styleSelected().Width(w).Render(rowLines[j])
			}
		}
		lines = append(lines, rowLines...)
	}
	return lines, selStart, selEnd
}

func (m appModel) storyByline(r *itemRow) string {
	s := r.story
	parts := []string{}
	if s.Score > 0 {
		parts = append(parts, fmt.Sprintf("%d points", s.Score))
	}
	if s.Author != "" {
		parts = append(parts, "by "+s.Author)
	}
	if s.Age != "" {
		parts = append(parts, s.Age)
	}
	parts = append(parts, fmt.Sprintf("%d comments", s.CommentCount))
	out := styleMuted().Render(strings.Join(parts, " "+glyphDot()+" "))
	if fav := m.favoriteMarker(r); fav != "" {
		out += " " + fav
	}
	return out
}

func (m appModel) renderThread() (lines []string, selStart, selEnd int) {
	w := max(20, m.width)
	ts := m.thread

	if r := ts.story; r != nil {
		start := len(lines)
		s := r.story
		head := []string{
			xansi.Truncate(m.voteMarker(r)+" "+styleTitle().Render(s.Title), w, "…"),
		}
		if s.URL != "" {
			head = append(head, xansi.Truncate(styleMuted().Render(s.URL), w, "…"))
		}
		head = append(head, xansi.Truncate(m.storyByline(r), w, "…"))
		if ts.cur == -1 {
			for j := range head {
				head[j] = styleSelected().Width(w).Render(head[j])
			}
		}
		lines = append(lines, head...)
		if strings.TrimSpace(s.Text) != "" {
			lines = append(lines, "", renderCommentBody(hn.CommentMarkdown(s.Text), w-2))
		}
		lines = append(lines, styleMuted().Render(strings.Repeat(glyphHRule(), w)))
		if ts.cur == -1 {
			selStart, selEnd = start, len(lines)
		}
	}

	for _, i := range ts.t.Visible() {
		it, _ := ts.t.Item(i)
		r := ts.rows[i]
		indent := 2 * it.Depth
		inner := max(10, w-indent)
		pad := strings.Repeat(" ", indent)

		start := len(lines)
		byline := m.commentByline(r, i)
		if i == ts.cur {
			byline = styleSelected().Render(byline)
		}
		lines = append(lines, pad+xansi.Truncate(byline, inner, "…"))
		if !it.Collapsed {
			for _, l := range strings.Split(m.commentBody(r, inner), "\n") {
				lines = append(lines, pad+l)
			}
		}
		lines = append(lines, "")
		if i == ts.cur {
			selStart, selEnd = start, len(lines)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, styleMuted().Render("No comments."))
		selEnd = 1
	}
	return lines, selStart, selEnd
}

func (m appModel) commentByline(r *itemRow, i int) string {
	c := r.comment
	it, _ := m.thread.t.Item(i)

	parts := []string{}
	if it.HasChildren {
		parts = append(parts, styleAffordance().Render(m.thread.t.Affordance(i).Label))
	}
	if v := m.voteMarker(r); v != "" {
		parts = append(parts, v)
	}
	author := c.Author
	if author == "" {
		author = "?"
	}
	parts = append(parts, lipgloss.NewStyle().Bold(true).Render(author), styleMuted().Render(c.Age))
	if fav := m.favoriteMarker(r); fav != "" {
		parts = append(parts, fav)
	}
	if c.Dead {
		parts = append(parts, styleMuted().Render("[dead]"))
	}
	return strings.Join(parts, " ")
}

func (m appModel) commentBody(r *itemRow, width int) string {
	c := r.comment
	if c.Deleted {
		return styleMuted().Render("[deleted]")
	}
	body := renderCommentBody(hn.CommentMarkdown(c.Body), width)
	if body == "" {
		return styleMuted().Render("[empty]")
	}
	return body
}

func (m appModel) voteMarker(r *itemRow) string {
	switch r.vote.Current {
	case actions.VoteUp:
		return styleVoted().Render(glyphUp())
	case actions.VoteDown:
		return styleVoted().Render(glyphDown())
	}
	if r.vote.CanVote() {
		return styleMuted().Render(glyphUp())
	}
	return ""
}

func (m appModel) favoriteMarker(r *itemRow) string {
	if r.favPending {
		return styleMuted().Render(glyphFavorite() + "…")
	}
	if r.fav.Favorited {
		return styleFavorite().Render(glyphFavorite())
	}
	return ""
}
