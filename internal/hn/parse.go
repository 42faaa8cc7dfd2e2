// Package hn reads the discussion site's server-rendered pages and talks
// to its action endpoints.
package hn

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"hnterm/internal/thread"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type PageKind int

const (
	PageOther PageKind = iota
	PageList
	PageItem
)

// Page is the parsed content of one host page.
type Page struct {
	Kind PageKind

	// User is the logged-in username from the profile link, or "".
	User string

	// Stories holds the submission rows of a list page.
	Stories []Story

	// Item is the submission at the top of an item page. It is nil when
	// the item is itself a comment.
	Item *Story

	// Comments is the flattened comment sequence in document order.
	Comments []Comment

	MoreHref string
}

type Story struct {
	ID           string
	Rank         int
	Title        string
	URL          string
	Site         string
	Author       string
	Age          string
	Score        int
	CommentCount int
	// Text is the submission body HTML (Ask/Show posts).
	Text     string
	Controls Controls
}

type Comment struct {
	ID       string
	Author   string
	Age      string
	IndentPx int
	Depth    int
	// Collapsed is the host's own persisted collapse state.
	Collapsed bool
	// Body is the comment HTML.
	Body     string
	Dead     bool
	Deleted  bool
	Controls Controls
}

// ParsePage parses a host page. Malformed markup is tolerated; missing
// pieces simply come back empty.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	p := &Page{}
	if me := find(doc, byID("me")); me != nil {
		p.User = trimmedText(me)
	}
	if more := find(doc, byClass(atom.A, "morelink")); more != nil {
		p.MoreHref = attr(more, "href")
	}

	if fat := find(doc, byClass(atom.Table, "fatitem")); fat != nil {
		p.Kind = PageItem
		if row := find(fat, isSubmissionRow); row != nil {
			st := parseStory(row)
			if t := find(fat, byClass(0, "toptext")); t != nil {
				st.Text = strings.TrimSpace(innerHTML(t))
			}
			p.Item = &st
		}
	}

	for _, row := range findAll(doc, isCommentRow) {
		p.Comments = append(p.Comments, parseComment(row))
	}

	if p.Kind != PageItem {
		for _, row := range findAll(doc, isSubmissionRow) {
			p.Stories = append(p.Stories, parseStory(row))
		}
		if len(p.Stories) > 0 {
			p.Kind = PageList
		}
	}
	return p, nil
}

func isSubmissionRow(n *html.Node) bool {
	return isElem(n, atom.Tr) && hasClass(n, "athing") && hasClass(n, "submission")
}

func isCommentRow(n *html.Node) bool {
	return isElem(n, atom.Tr) && hasClass(n, "athing") && hasClass(n, "comtr")
}

func parseStory(row *html.Node) Story {
	st := Story{ID: attr(row, "id")}
	if r := find(row, byClass(atom.Span, "rank")); r != nil {
		st.Rank, _ = strconv.Atoi(strings.TrimSuffix(trimmedText(r), "."))
	}
	if tl := find(row, byClass(atom.Span, "titleline")); tl != nil {
		if a := find(tl, func(n *html.Node) bool { return isElem(n, atom.A) }); a != nil {
			st.Title = trimmedText(a)
			st.URL = attr(a, "href")
		}
	}
	if s := find(row, byClass(atom.Span, "sitestr")); s != nil {
		st.Site = trimmedText(s)
	}

	rows := []*html.Node{row}
	if sub := nextElementSibling(row); sub != nil && find(sub, byClass(0, "subtext")) != nil {
		rows = append(rows, sub)
		if s := find(sub, byClass(atom.Span, "score")); s != nil {
			st.Score = leadingInt(trimmedText(s))
		}
		if u := find(sub, byClass(atom.A, "hnuser")); u != nil {
			st.Author = trimmedText(u)
		}
		if a := find(sub, byClass(atom.Span, "age")); a != nil {
			st.Age = trimmedText(a)
		}
		for _, a := range findAll(sub, func(n *html.Node) bool { return isElem(n, atom.A) }) {
			t := strings.ToLower(trimmedText(a))
			if strings.HasSuffix(t, "comments") || strings.HasSuffix(t, "comment") {
				st.CommentCount = leadingInt(t)
			}
		}
	}
	st.Controls = scanControls(st.ID, rows...)
	return st
}

func parseComment(row *html.Node) Comment {
	c := Comment{
		ID:        attr(row, "id"),
		Collapsed: hasClass(row, "coll"),
	}
	if ind := find(row, byClass(atom.Td, "ind")); ind != nil {
		c.IndentPx, c.Depth = indentation(ind)
	}
	if u := find(row, byClass(atom.A, "hnuser")); u != nil {
		c.Author = trimmedText(u)
	}
	if a := find(row, byClass(atom.Span, "age")); a != nil {
		c.Age = trimmedText(a)
	}
	if body := find(row, byClass(0, "commtext")); body != nil {
		c.Body = strings.TrimSpace(innerHTML(body))
	}
	if box := find(row, byClass(0, "comment")); box != nil && c.Body == "" {
		t := trimmedText(box)
		c.Deleted = strings.Contains(t, "[deleted]")
		c.Dead = strings.Contains(t, "[dead]") || strings.Contains(t, "[flagged]")
	}
	c.Controls = scanControls(c.ID, row)
	return c
}

// indentation reads the spacer image width, falling back to the cell's
// recorded indent level.
func indentation(ind *html.Node) (px, depth int) {
	if img := find(ind, func(n *html.Node) bool { return isElem(n, atom.Img) }); img != nil && hasAttr(img, "width") {
		if w, err := strconv.Atoi(strings.TrimSpace(attr(img, "width"))); err == nil {
			return w, thread.DepthFromIndent(w)
		}
	}
	if hasAttr(ind, "indent") {
		d := thread.DepthFromAttr(attr(ind, "indent"))
		return d * thread.IndentUnit, d
	}
	return 0, 0
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// ThreadItems converts parsed comments into Collapse Engine items.
func ThreadItems(comments []Comment) []thread.Item {
	out := make([]thread.Item, len(comments))
	for i, c := range comments {
		out[i] = thread.Item{ID: c.ID, Depth: c.Depth, Collapsed: c.Collapsed}
	}
	return out
}
