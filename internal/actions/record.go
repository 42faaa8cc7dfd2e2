// Package actions persists a user's vote and favorite state per item.
//
// The store is a single JSON document kept under one backend key:
//
//	{ "version": 1, "byUser": { "<user>": { "stories": {...}, "comments": {...} } } }
//
// It is loaded once, mutated in memory, and written back on a trailing
// debounce. A document with any other version is discarded on load.
package actions

import "strings"

// SchemaVersion is the only document version Load accepts.
const SchemaVersion = 1

// AnonymousUser is the bucket used when no logged-in user can be resolved.
const AnonymousUser = "anonymous"

// Kind selects the per-user map a record lives in.
type Kind string

const (
	KindStory   Kind = "stories"
	KindComment Kind = "comments"
)

func (k Kind) valid() bool { return k == KindStory || k == KindComment }

// ParseKind accepts the map names plus their singular forms.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stories", "story":
		return KindStory, true
	case "comments", "comment":
		return KindComment, true
	default:
		return "", false
	}
}

// Vote is a vote direction. The zero value means no vote.
type Vote string

const (
	VoteNone Vote = ""
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// Record is the stored state for one item. Up and down are exclusive by
// construction; a Record with no vote and no favorite is never stored.
type Record struct {
	Vote      Vote  `json:"vote,omitempty" yaml:"vote,omitempty"`
	Favorite  bool  `json:"favorite,omitempty" yaml:"favorite,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

func (r Record) empty() bool { return r.Vote == VoteNone && !r.Favorite }

// Bucket holds one user's records.
type Bucket struct {
	Stories  map[string]Record `json:"stories,omitempty" yaml:"stories,omitempty"`
	Comments map[string]Record `json:"comments,omitempty" yaml:"comments,omitempty"`
}

func (b *Bucket) records(k Kind) map[string]Record {
	if b == nil {
		return nil
	}
	if k == KindStory {
		return b.Stories
	}
	return b.Comments
}

func (b *Bucket) setRecords(k Kind, m map[string]Record) {
	if k == KindStory {
		b.Stories = m
		return
	}
	b.Comments = m
}

func (b *Bucket) empty() bool { return len(b.Stories) == 0 && len(b.Comments) == 0 }

// Document is the persisted store layout.
type Document struct {
	Version int                `json:"version" yaml:"version"`
	ByUser  map[string]*Bucket `json:"byUser" yaml:"byUser"`
}

func newDocument() *Document {
	return &Document{Version: SchemaVersion, ByUser: map[string]*Bucket{}}
}

func (d *Document) clone() *Document {
	out := &Document{Version: d.Version, ByUser: make(map[string]*Bucket, len(d.ByUser))}
	for user, b := range d.ByUser {
		if b == nil {
			continue
		}
		nb := &Bucket{}
		if len(b.Stories) > 0 {
			nb.Stories = make(map[string]Record, len(b.Stories))
			for id, r := range b.Stories {
				nb.Stories[id] = r
			}
		}
		if len(b.Comments) > 0 {
			nb.Comments = make(map[string]Record, len(b.Comments))
			for id, r := range b.Comments {
				nb.Comments[id] = r
			}
		}
		out.ByUser[user] = nb
	}
	return out
}

// Patch is a partial update. A nil field is left untouched; a non-nil
// field is applied, and VoteNone / false clear the stored value.
type Patch struct {
	Vote     *Vote
	Favorite *bool
}

// SetVote returns a Patch that sets (or with VoteNone clears) the vote.
func SetVote(v Vote) Patch { return Patch{Vote: &v} }

// SetFavorite returns a Patch that sets or clears the favorite flag.
func SetFavorite(fav bool) Patch { return Patch{Favorite: &fav} }

func (p Patch) apply(r Record) Record {
	if p.Vote != nil {
		switch *p.Vote {
		case VoteUp, VoteDown:
			r.Vote = *p.Vote
		default:
			r.Vote = VoteNone
		}
	}
	if p.Favorite != nil {
		r.Favorite = *p.Favorite
	}
	return r
}
