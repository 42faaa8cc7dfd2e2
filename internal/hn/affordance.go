package hn

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// VoteObservation is what the host markup says about the user's vote.
type VoteObservation int

const (
	// VoteUnknown: no vote control at all (own item, logged out, or
	// markup without the affordance).
	VoteUnknown VoteObservation = iota
	// VoteNotVoted: controls present, none active.
	VoteNotVoted
	VoteObservedUp
	VoteObservedDown
)

func (v VoteObservation) String() string {
	switch v {
	case VoteNotVoted:
		return "none"
	case VoteObservedUp:
		return "up"
	case VoteObservedDown:
		return "down"
	default:
		return "unknown"
	}
}

// FavoriteObservation is what the host markup says about the favorite
// flag.
type FavoriteObservation int

const (
	FavoriteUnknown FavoriteObservation = iota
	// FavoriteNotFavorited: a "favorite" link is shown.
	FavoriteNotFavorited
	// FavoriteFavorited: an "unfavorite" link is shown.
	FavoriteFavorited
)

func (f FavoriteObservation) String() string {
	switch f {
	case FavoriteNotFavorited:
		return "favorite"
	case FavoriteFavorited:
		return "unfavorite"
	default:
		return "unknown"
	}
}

// Controls are the action affordances found for one item.
type Controls struct {
	Vote       VoteObservation
	UpHref     string
	DownHref   string
	UnvoteHref string

	Favorite     FavoriteObservation
	FavoriteHref string

	ReplyHref  string
	DeleteHref string
}

// Id prefixes and link texts the host uses for item actions.
const (
	prefixUp     = "up_"
	prefixDown   = "down_"
	prefixUnvote = "un_"
	prefixFav    = "fav_"
	prefixFave   = "fave_"

	textFavorite   = "favorite"
	textUnfavorite = "unfavorite"
	textReply      = "reply"
	textDelete     = "delete"

	// classVoted marks a vote arrow the user has already used.
	classVoted = "nosee"
)

// scanControls collects the controls for item id from the given rows.
func scanControls(id string, rows ...*html.Node) Controls {
	var c Controls
	var up, down, un *html.Node
	for _, row := range rows {
		walk(row, func(n *html.Node) bool {
			if !isElem(n, atom.A) {
				return true
			}
			nid := attr(n, "id")
			switch nid {
			case prefixUp + id:
				up = n
				return true
			case prefixDown + id:
				down = n
				return true
			case prefixUnvote + id:
				un = n
				return true
			case prefixFav + id, prefixFave + id:
				c.FavoriteHref = attr(n, "href")
				c.Favorite = favoriteFromText(trimmedText(n))
				if c.Favorite == FavoriteUnknown {
					c.Favorite = favoriteFromHref(c.FavoriteHref)
				}
				return true
			}
			t := strings.ToLower(trimmedText(n))
			switch {
			case c.FavoriteHref == "" && favoriteFromText(t) != FavoriteUnknown:
				c.FavoriteHref = attr(n, "href")
				c.Favorite = favoriteFromText(t)
			case t == textReply && c.ReplyHref == "":
				c.ReplyHref = attr(n, "href")
			case t == textDelete && c.DeleteHref == "":
				c.DeleteHref = attr(n, "href")
			}
			return true
		})
	}

	if up != nil {
		c.UpHref = attr(up, "href")
	}
	if down != nil {
		c.DownHref = attr(down, "href")
	}
	if un != nil {
		c.UnvoteHref = attr(un, "href")
	}
	c.Vote = observeVote(up, down, un)
	return c
}

func observeVote(up, down, un *html.Node) VoteObservation {
	if un != nil {
		switch strings.ToLower(trimmedText(un)) {
		case "unvote":
			return VoteObservedUp
		case "undown":
			return VoteObservedDown
		}
	}
	if hasClass(up, classVoted) {
		return VoteObservedUp
	}
	if hasClass(down, classVoted) {
		return VoteObservedDown
	}
	if up != nil || down != nil {
		return VoteNotVoted
	}
	return VoteUnknown
}

// favoriteFromText matches the link text exactly; the host writes the
// negative form as "un-favorite".
func favoriteFromText(s string) FavoriteObservation {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case textFavorite:
		return FavoriteNotFavorited
	case textUnfavorite:
		return FavoriteFavorited
	default:
		return FavoriteUnknown
	}
}

func favoriteFromHref(href string) FavoriteObservation {
	if href == "" {
		return FavoriteUnknown
	}
	if IsUnfavoriteHref(href) {
		return FavoriteFavorited
	}
	return FavoriteNotFavorited
}
