package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"hnterm/internal/actions"
	"hnterm/internal/hn"
)

// FavoriteState is the displayed favorite flag of one item and the link
// the next click will follow.
type FavoriteState struct {
	Kind      actions.Kind
	ID        string
	Favorited bool
	Href      string
}

// ResolveFavorite decides the initial favorite flag. An observed
// "unfavorite" link means favorited and is synced into the store when
// the store disagrees. An observed "favorite" link, or none, shows the
// stored flag and never overwrites the store.
func ResolveFavorite(st Store, kind actions.Kind, id string, c hn.Controls) FavoriteState {
	f := FavoriteState{Kind: kind, ID: id, Href: c.FavoriteHref}
	rec, _ := st.Get(kind, id)
	if c.Favorite == hn.FavoriteFavorited {
		f.Favorited = true
		if !rec.Favorite {
			st.Update(kind, id, actions.SetFavorite(true))
		}
		return f
	}
	f.Favorited = rec.Favorite
	return f
}

// FavoriteAction is an in-flight favorite click.
type FavoriteAction struct {
	prev       FavoriteState
	optimistic FavoriteState
}

// Optimistic is the state shown while the request runs.
func (a *FavoriteAction) Optimistic() FavoriteState { return a.optimistic }

// FavoriteOutcome is the result of running a FavoriteAction.
type FavoriteOutcome struct {
	// Sent is false when no request was attempted because no link could
	// be resolved.
	Sent bool
	// Favorited is the canonical state derived from the followed URL.
	Favorited bool
	// Href is the link that was followed.
	Href string
	Err  error
}

// BeginFavorite flips the flag optimistically and stores it at once.
func (r *Reconciler) BeginFavorite(f FavoriteState) *FavoriteAction {
	opt := f
	opt.Favorited = !f.Favorited
	r.store.Update(f.Kind, f.ID, actions.SetFavorite(opt.Favorited))
	return &FavoriteAction{prev: f, optimistic: opt}
}

// RunFavorite resolves the favorite link if needed (side fetch of the
// item page) and follows it. It blocks on the network and is meant to
// run off the UI goroutine.
func (r *Reconciler) RunFavorite(ctx context.Context, a *FavoriteAction) FavoriteOutcome {
	href := a.prev.Href
	if href == "" {
		resolved, err := r.resolveFavoriteHref(ctx, a.prev.ID)
		if err != nil {
			r.logger.Info("favorite link unresolved", "id", a.prev.ID, "err", err)
			return FavoriteOutcome{Err: err}
		}
		href = resolved
	}
	final, err := r.req.Follow(ctx, href)
	if err != nil {
		r.logger.Info("favorite request failed", "id", a.prev.ID, "href", href, "err", err)
		return FavoriteOutcome{Sent: true, Href: href, Err: err}
	}
	return FavoriteOutcome{Sent: true, Href: href, Favorited: favoritedAfter(href, final)}
}

// favoritedAfter derives the canonical favorite flag. The host normally
// redirects a fave request to the item page, which carries no marker, so
// the followed link decides; a final URL still on the fave endpoint wins.
func favoritedAfter(href string, final *url.URL) bool {
	if final != nil && path.Base(final.Path) == "fave" {
		return !hn.IsUnfavoriteHref(final.String())
	}
	return !hn.IsUnfavoriteHref(href)
}

func (r *Reconciler) resolveFavoriteHref(ctx context.Context, id string) (string, error) {
	page, err := r.req.Page(ctx, hn.ItemPath(id))
	if err != nil {
		return "", fmt.Errorf("fetch item %s: %w", id, err)
	}
	if c, ok := controlsFor(page, id); ok && c.FavoriteHref != "" {
		return c.FavoriteHref, nil
	}
	return "", hn.ErrMissingActionTarget
}

func controlsFor(p *hn.Page, id string) (hn.Controls, bool) {
	if p == nil {
		return hn.Controls{}, false
	}
	if p.Item != nil && p.Item.ID == id {
		return p.Item.Controls, true
	}
	for _, c := range p.Comments {
		if c.ID == id {
			return c.Controls, true
		}
	}
	for _, s := range p.Stories {
		if s.ID == id {
			return s.Controls, true
		}
	}
	return hn.Controls{}, false
}

// CompleteFavorite settles a favorite click:
//   - no request sent: the optimistic flip is reverted (UI and store);
//   - request failed: the optimistic state stands;
//   - request succeeded: the canonical state from the followed URL wins,
//     correcting UI and store if the optimistic guess was wrong.
//
// The returned state carries the link for the next click.
func (r *Reconciler) CompleteFavorite(a *FavoriteAction, o FavoriteOutcome) FavoriteState {
	if !o.Sent {
		r.store.Update(a.prev.Kind, a.prev.ID, actions.SetFavorite(a.prev.Favorited))
		return a.prev
	}
	st := a.optimistic
	if o.Err != nil {
		return st
	}
	// The next click must undo the canonical state.
	st.Href = hn.ToggleUnfavoriteHref(o.Href)
	if hn.IsUnfavoriteHref(st.Href) != o.Favorited {
		st.Href = hn.ToggleUnfavoriteHref(st.Href)
	}
	if o.Favorited != st.Favorited {
		st.Favorited = o.Favorited
		r.store.Update(st.Kind, st.ID, actions.SetFavorite(o.Favorited))
	}
	return st
}

// ToggleFavorite runs a whole favorite click synchronously.
func (r *Reconciler) ToggleFavorite(ctx context.Context, f FavoriteState) FavoriteState {
	a := r.BeginFavorite(f)
	return r.CompleteFavorite(a, r.RunFavorite(ctx, a))
}

// Reply posts text as a reply to item id. Without a known reply link the
// item's own page is used, which carries the reply form.
func (r *Reconciler) Reply(ctx context.Context, id, replyHref, text string) error {
	href := replyHref
	if href == "" {
		if id == "" {
			return hn.ErrMissingActionTarget
		}
		href = hn.ItemPath(id)
	}
	err := r.req.Reply(ctx, href, text)
	if err != nil && !errors.Is(err, hn.ErrMissingActionTarget) {
		r.logger.Info("reply request failed", "id", id, "err", err)
	}
	return err
}
