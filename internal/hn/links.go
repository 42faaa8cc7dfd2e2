package hn

import (
	"net/url"
	"strconv"
	"strings"
)

// ItemPath is the host path of an item's own page.
func ItemPath(id string) string { return "item?id=" + url.QueryEscape(strings.TrimSpace(id)) }

// NewsPath is the host path of a front-page listing page (1-based).
func NewsPath(page int) string {
	if page <= 1 {
		return "news"
	}
	return "news?p=" + strconv.Itoa(page)
}

// IsUnfavoriteHref reports whether a favorite action URL carries the
// un-favorite marker (un=t).
func IsUnfavoriteHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return strings.Contains(href, "un=t")
	}
	return u.Query().Get("un") == "t"
}

// ToggleUnfavoriteHref returns href with the un-favorite marker flipped:
// added when absent, removed when present.
func ToggleUnfavoriteHref(href string) string {
	u, err := url.Parse(href)
	if err != nil || href == "" {
		return href
	}
	q := u.Query()
	if q.Get("un") == "t" {
		q.Del("un")
	} else {
		q.Set("un", "t")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// VoteHref rewrites a known vote link of the same item to the given
// direction ("up", "down" or "un"). The host only renders the links that
// apply to the current state, so after an optimistic vote the link for
// the next click has to be derived.
func VoteHref(known, how string) string {
	if known == "" {
		return ""
	}
	u, err := url.Parse(known)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("how", how)
	u.RawQuery = q.Encode()
	return u.String()
}
