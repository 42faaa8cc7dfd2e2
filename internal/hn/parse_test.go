package hn

import (
	"os"
	"strings"
	"testing"
)

func parseFixture(t *testing.T, name string) *Page {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	p, err := ParsePage(f)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return p
}

func TestParsePage_ListPage(t *testing.T) {
	p := parseFixture(t, "news.html")
	if p.Kind != PageList {
		t.Fatalf("expected list page, got %v", p.Kind)
	}
	if p.User != "pg" {
		t.Fatalf("expected user pg, got %q", p.User)
	}
	if p.MoreHref != "news?p=2" {
		t.Fatalf("unexpected more href %q", p.MoreHref)
	}
	if len(p.Stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(p.Stories))
	}

	s := p.Stories[0]
	if s.ID != "1001" || s.Rank != 1 || s.Title != "First story" || s.URL != "https://example.com/a" {
		t.Fatalf("unexpected first story: %+v", s)
	}
	if s.Site != "example.com" || s.Score != 120 || s.Author != "alice" || s.CommentCount != 45 {
		t.Fatalf("unexpected first story meta: %+v", s)
	}
	if s.Controls.Vote != VoteObservedUp {
		t.Fatalf("expected observed upvote, got %v", s.Controls.Vote)
	}
	if !strings.Contains(s.Controls.UnvoteHref, "how=un") {
		t.Fatalf("expected unvote href, got %q", s.Controls.UnvoteHref)
	}

	s2 := p.Stories[1]
	if s2.Controls.Vote != VoteNotVoted || s2.CommentCount != 0 {
		t.Fatalf("unexpected second story: %+v", s2)
	}
	if s2.Controls.Favorite != FavoriteUnknown {
		t.Fatalf("list rows carry no favorite link, got %v", s2.Controls.Favorite)
	}
}

func TestParsePage_ItemPage(t *testing.T) {
	p := parseFixture(t, "item.html")
	if p.Kind != PageItem || p.Item == nil {
		t.Fatalf("expected item page with a story, got kind=%v item=%v", p.Kind, p.Item)
	}
	if p.Item.Controls.Favorite != FavoriteFavorited {
		t.Fatalf("expected un-favorite link observed, got %v", p.Item.Controls.Favorite)
	}
	if p.Item.Controls.FavoriteHref != "fave?id=1001&un=t&auth=t1" {
		t.Fatalf("unexpected favorite href %q", p.Item.Controls.FavoriteHref)
	}
	if p.Item.Controls.Vote != VoteNotVoted {
		t.Fatalf("expected not-voted story, got %v", p.Item.Controls.Vote)
	}
	if !strings.Contains(p.Item.Text, "<i>body</i>") {
		t.Fatalf("expected top text, got %q", p.Item.Text)
	}

	if len(p.Comments) != 4 {
		t.Fatalf("expected 4 comments, got %d", len(p.Comments))
	}
	wantDepths := []int{0, 1, 2, 0}
	for i, c := range p.Comments {
		if c.Depth != wantDepths[i] {
			t.Fatalf("comment %s depth=%d, want %d", c.ID, c.Depth, wantDepths[i])
		}
	}

	c0 := p.Comments[0]
	if c0.Author != "carol" || c0.Controls.Vote != VoteObservedUp || c0.Controls.ReplyHref == "" {
		t.Fatalf("unexpected first comment: %+v", c0)
	}
	if p.Comments[1].Controls.Vote != VoteNotVoted {
		t.Fatalf("expected not-voted reply, got %v", p.Comments[1].Controls.Vote)
	}

	own := p.Comments[2]
	if !own.Collapsed || own.Controls.Vote != VoteUnknown || own.Controls.DeleteHref == "" {
		t.Fatalf("unexpected own comment: %+v", own)
	}
	if !p.Comments[3].Deleted || p.Comments[3].Body != "" {
		t.Fatalf("expected deleted comment, got %+v", p.Comments[3])
	}

	items := ThreadItems(p.Comments)
	if len(items) != 4 || items[2].ID != "2004" || !items[2].Collapsed || items[1].Depth != 1 {
		t.Fatalf("unexpected thread items: %+v", items)
	}
}

func TestParsePage_DownvoteAndFavoriteByID(t *testing.T) {
	const page = `<table><tr class="athing comtr" id="9"><td>
	<td class="ind" indent="3"></td>
	<a id="up_9" class="clicky" href="vote?id=9&how=up">up</a>
	<a id="down_9" class="clicky nosee" href="vote?id=9&how=down">down</a>
	<a id="fav_9" href="fave?id=9&auth=x">favorite</a>
	</td></tr></table>`
	p, err := ParsePage(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Comments) != 1 {
		t.Fatalf("expected one comment, got %d", len(p.Comments))
	}
	c := p.Comments[0]
	if c.Depth != 3 || c.IndentPx != 120 {
		t.Fatalf("expected depth from indent attr, got depth=%d px=%d", c.Depth, c.IndentPx)
	}
	if c.Controls.Vote != VoteObservedDown {
		t.Fatalf("expected observed downvote, got %v", c.Controls.Vote)
	}
	if c.Controls.Favorite != FavoriteNotFavorited || c.Controls.FavoriteHref != "fave?id=9&auth=x" {
		t.Fatalf("unexpected favorite controls: %+v", c.Controls)
	}
}

func TestFavoriteFromText_ExactMatchOnly(t *testing.T) {
	cases := map[string]FavoriteObservation{
		"favorite":     FavoriteNotFavorited,
		"Favorite":     FavoriteNotFavorited,
		"un-favorite":  FavoriteFavorited,
		"unfavorite":   FavoriteFavorited,
		"favorites":    FavoriteUnknown,
		"my favorite":  FavoriteUnknown,
		"":             FavoriteUnknown,
	}
	for in, want := range cases {
		if got := favoriteFromText(in); got != want {
			t.Fatalf("favoriteFromText(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestFavoriteHrefMarker(t *testing.T) {
	if !IsUnfavoriteHref("fave?id=1&un=t&auth=x") {
		t.Fatalf("expected un marker detected")
	}
	if IsUnfavoriteHref("fave?id=1&auth=x") {
		t.Fatalf("unexpected un marker")
	}
	on := ToggleUnfavoriteHref("fave?id=1&auth=x")
	if !IsUnfavoriteHref(on) {
		t.Fatalf("expected toggle to add marker: %q", on)
	}
	if off := ToggleUnfavoriteHref(on); IsUnfavoriteHref(off) {
		t.Fatalf("expected toggle to remove marker: %q", off)
	}
}

func TestCommentMarkdown(t *testing.T) {
	p := parseFixture(t, "item.html")
	md := CommentMarkdown(p.Comments[0].Body)
	want := "Top level *comment* with a [https://example.com/very/long/path](https://example.com/very/long/path)\n\nSecond paragraph."
	if md != want {
		t.Fatalf("unexpected markdown:\n%q\nwant\n%q", md, want)
	}

	code := CommentMarkdown(`Look:<p><pre><code>  x := 1
</code></pre>`)
	if !strings.Contains(code, "```\n  x := 1\n```") {
		t.Fatalf("expected fenced code block, got %q", code)
	}
	if got := CommentMarkdown("2*3 = 6"); got != `2\*3 = 6` {
		t.Fatalf("expected escaped asterisk, got %q", got)
	}
}
