package cli

import (
	"context"
	"strings"

	"hnterm/internal/actions"
	"hnterm/internal/hn"
	"hnterm/internal/reconcile"

	"github.com/spf13/cobra"
)

type voteOut struct {
	ID      string `json:"id" yaml:"id"`
	Kind    string `json:"kind" yaml:"kind"`
	Vote    string `json:"vote" yaml:"vote"`
	Changed bool   `json:"changed" yaml:"changed"`
}

type favoriteOut struct {
	ID       string `json:"id" yaml:"id"`
	Kind     string `json:"kind" yaml:"kind"`
	Favorite bool   `json:"favorite" yaml:"favorite"`
	Changed  bool   `json:"changed" yaml:"changed"`
}

// itemSession opens a session and loads the item's own page with the
// store ready for reconciliation.
func itemSession(cmd *cobra.Command, app *App, id string) (*session, *hn.Page, actions.Kind, hn.Controls, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, app)
	if err != nil {
		return nil, nil, "", hn.Controls{}, err
	}
	page, err := s.client.Page(ctx, hn.ItemPath(id))
	if err != nil {
		_ = s.Close(context.WithoutCancel(ctx))
		return nil, nil, "", hn.Controls{}, err
	}
	s.store.Load(ctx)
	s.store.BeginPage(page.User)
	kind, ctl, err := locate(page, id)
	if err != nil {
		_ = s.Close(context.WithoutCancel(ctx))
		return nil, nil, "", hn.Controls{}, err
	}
	return s, page, kind, ctl, nil
}

func newVoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "vote <id> <up|down|none>",
		Short: "Vote on a story or comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !isItemID(id) {
				return writeErr(cmd, errUsage("invalid item id: %q", args[0]))
			}
			var want actions.Vote
			switch strings.ToLower(strings.TrimSpace(args[1])) {
			case "up":
				want = actions.VoteUp
			case "down":
				want = actions.VoteDown
			case "none", "un", "unvote":
				want = actions.VoteNone
			default:
				return writeErr(cmd, errUsage("invalid vote %q (want up, down or none)", args[1]))
			}

			s, _, kind, ctl, err := itemSession(cmd, app, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(context.WithoutCancel(cmd.Context()))

			v := reconcile.ResolveVote(s.store, kind, id, ctl)
			out := voteOut{ID: id, Kind: string(kind), Vote: string(v.Current)}
			if v.Current == want {
				return writeOut(cmd, app, out)
			}
			dir := want
			if want == actions.VoteNone {
				// Clicking the active direction removes the vote.
				dir = v.Current
			}
			nv, ok := s.recon.Vote(v, dir)
			if !ok {
				return writeErr(cmd, hn.ErrMissingActionTarget)
			}
			out.Vote = string(nv.Current)
			out.Changed = true
			return writeOut(cmd, app, out)
		},
	}
}

func newFavoriteCmd(app *App) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Favorite (or with --off unfavorite) a story or comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !isItemID(id) {
				return writeErr(cmd, errUsage("invalid item id: %q", args[0]))
			}
			s, _, kind, ctl, err := itemSession(cmd, app, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := context.WithoutCancel(cmd.Context())
			defer s.Close(ctx)

			f := reconcile.ResolveFavorite(s.store, kind, id, ctl)
			out := favoriteOut{ID: id, Kind: string(kind), Favorite: f.Favorited}
			if f.Favorited == !off {
				return writeOut(cmd, app, out)
			}
			a := s.recon.BeginFavorite(f)
			o := s.recon.RunFavorite(cmd.Context(), a)
			nf := s.recon.CompleteFavorite(a, o)
			if !o.Sent {
				return writeErr(cmd, o.Err)
			}
			out.Favorite = nf.Favorited
			out.Changed = nf.Favorited != f.Favorited
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Remove the favorite instead")
	return cmd
}
