package reconcile

import (
	"context"

	"hnterm/internal/actions"
	"hnterm/internal/hn"
)

// VoteState is the displayed vote of one item and the links to change it.
type VoteState struct {
	Kind    actions.Kind
	ID      string
	Current actions.Vote

	// Known vote links of the item, used to derive the next request.
	UpHref     string
	DownHref   string
	UnvoteHref string
}

// CanVote reports whether any vote link is known for the item.
func (v VoteState) CanVote() bool {
	return v.UpHref != "" || v.DownHref != "" || v.UnvoteHref != ""
}

// ResolveVote decides the initial vote of an item. An observed up/down
// vote wins and is written to the store when the store disagrees. When
// the markup shows no active vote (or no control at all) the stored
// direction is used and the store is left alone.
func ResolveVote(st Store, kind actions.Kind, id string, c hn.Controls) VoteState {
	v := VoteState{
		Kind:       kind,
		ID:         id,
		UpHref:     c.UpHref,
		DownHref:   c.DownHref,
		UnvoteHref: c.UnvoteHref,
	}
	rec, _ := st.Get(kind, id)

	var observed actions.Vote
	switch c.Vote {
	case hn.VoteObservedUp:
		observed = actions.VoteUp
	case hn.VoteObservedDown:
		observed = actions.VoteDown
	}

	if observed != actions.VoteNone {
		v.Current = observed
		if rec.Vote != observed {
			st.Update(kind, id, actions.SetVote(observed))
		}
		return v
	}
	v.Current = rec.Vote
	return v
}

// Vote applies a click on the up or down control. Clicking the active
// direction removes the vote. The new state is returned immediately and
// stored; the host request is fired detached and its result is only
// logged. It reports false, changing nothing, when no link is known.
func (r *Reconciler) Vote(v VoteState, dir actions.Vote) (VoteState, bool) {
	next := dir
	if v.Current == dir {
		next = actions.VoteNone
	}

	how := "un"
	switch next {
	case actions.VoteUp:
		how = "up"
	case actions.VoteDown:
		how = "down"
	}
	href := voteLink(v, how)
	if href == "" {
		return v, false
	}

	v.Current = next
	r.store.Update(v.Kind, v.ID, actions.SetVote(next))
	r.detach("vote", href)
	return v, true
}

func voteLink(v VoteState, how string) string {
	switch {
	case how == "up" && v.UpHref != "":
		return v.UpHref
	case how == "down" && v.DownHref != "":
		return v.DownHref
	case how == "un" && v.UnvoteHref != "":
		return v.UnvoteHref
	}
	for _, known := range []string{v.UpHref, v.DownHref, v.UnvoteHref} {
		if known != "" {
			return hn.VoteHref(known, how)
		}
	}
	return ""
}

// detach fires a request without waiting for it. Failures are logged
// and otherwise ignored; the optimistic state stands.
func (r *Reconciler) detach(action, href string) {
	r.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if _, err := r.req.Follow(ctx, href); err != nil {
			r.logger.Info("action request failed", "action", action, "href", href, "err", err)
		}
	})
}
