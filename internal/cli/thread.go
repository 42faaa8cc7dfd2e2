package cli

import (
	"context"
	"fmt"
	"strings"

	"hnterm/internal/actions"
	"hnterm/internal/hn"
	"hnterm/internal/reconcile"
	"hnterm/internal/thread"

	"github.com/spf13/cobra"
)

type actionOut struct {
	Vote     string `json:"vote,omitempty" yaml:"vote,omitempty"`
	Favorite bool   `json:"favorite,omitempty" yaml:"favorite,omitempty"`
}

type storyOut struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Age      string `json:"age,omitempty" yaml:"age,omitempty"`
	Score    int    `json:"score" yaml:"score"`
	Comments int    `json:"comments" yaml:"comments"`
	actionOut `yaml:",inline"`
}

type commentOut struct {
	ID          string `json:"id" yaml:"id"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Age         string `json:"age,omitempty" yaml:"age,omitempty"`
	Depth       int    `json:"depth" yaml:"depth"`
	HasChildren bool   `json:"hasChildren" yaml:"hasChildren"`
	Collapsed   bool   `json:"collapsed" yaml:"collapsed"`
	Hidden      bool   `json:"hidden" yaml:"hidden"`
	Affordance  string `json:"affordance,omitempty" yaml:"affordance,omitempty"`
	Dead        bool   `json:"dead,omitempty" yaml:"dead,omitempty"`
	Deleted     bool   `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Text        string `json:"text,omitempty" yaml:"text,omitempty"`
	actionOut   `yaml:",inline"`
}

type threadOut struct {
	ID       string       `json:"id" yaml:"id"`
	User     string       `json:"user" yaml:"user"`
	Story    *storyOut    `json:"story,omitempty" yaml:"story,omitempty"`
	Comments []commentOut `json:"comments" yaml:"comments"`
}

func newThreadCmd(app *App) *cobra.Command {
	var (
		collapse    []string
		collapseAll bool
		expandAll   bool
		visibleOnly bool
		withText    bool
	)
	cmd := &cobra.Command{
		Use:   "thread <id>",
		Short: "Print a thread with its depth and collapse state",
		Long: strings.TrimSpace(`
Fetch an item page and print its comments in document order. Each
comment carries its depth, whether it has replies, and whether it is
collapsed or hidden after the requested toggles are applied.

Toggles run in order: --expand-all, --collapse-all, then each --collapse id.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !isItemID(id) {
				return writeErr(cmd, errUsage("invalid item id: %q", args[0]))
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(context.WithoutCancel(ctx))

			page, err := s.client.Page(ctx, hn.ItemPath(id))
			if err != nil {
				return writeErr(cmd, err)
			}
			if page.Item == nil && len(page.Comments) == 0 {
				return writeErr(cmd, errNotFound("item", id))
			}
			s.store.Load(ctx)
			s.store.BeginPage(page.User)

			t := thread.New(hn.ThreadItems(page.Comments))
			if expandAll {
				t.ExpandAll()
			}
			if collapseAll {
				t.CollapseAll()
			}
			for _, raw := range collapse {
				for _, cid := range strings.Split(raw, ",") {
					cid = strings.TrimSpace(cid)
					if cid == "" {
						continue
					}
					i := t.Index(cid)
					if i < 0 {
						return writeErr(cmd, errNotFound("comment", cid))
					}
					t.Toggle(i)
				}
			}

			out := threadOut{ID: id, User: s.store.User(), Comments: []commentOut{}}
			if st := page.Item; st != nil {
				out.Story = &storyOut{
					ID:        st.ID,
					Title:     st.Title,
					URL:       st.URL,
					Author:    st.Author,
					Age:       st.Age,
					Score:     st.Score,
					Comments:  st.CommentCount,
					actionOut: resolveActions(s.store, actions.KindStory, st.ID, st.Controls),
				}
			}
			for i, c := range page.Comments {
				it, _ := t.Item(i)
				if visibleOnly && it.Hidden() {
					continue
				}
				co := commentOut{
					ID:          c.ID,
					Author:      c.Author,
					Age:         c.Age,
					Depth:       it.Depth,
					HasChildren: it.HasChildren,
					Collapsed:   it.Collapsed,
					Hidden:      it.Hidden(),
					Dead:        c.Dead,
					Deleted:     c.Deleted,
					actionOut:   resolveActions(s.store, actions.KindComment, c.ID, c.Controls),
				}
				if it.HasChildren {
					co.Affordance = t.Affordance(i).Label
				}
				if withText {
					co.Text = hn.CommentMarkdown(c.Body)
				}
				out.Comments = append(out.Comments, co)
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringSliceVar(&collapse, "collapse", nil, "Toggle the collapse state of these comment ids (repeatable, comma-separated)")
	cmd.Flags().BoolVar(&collapseAll, "collapse-all", false, "Collapse every comment with replies")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "Expand comments the site marked collapsed")
	cmd.Flags().BoolVar(&visibleOnly, "visible", false, "Only print comments that are not hidden")
	cmd.Flags().BoolVar(&withText, "text", false, "Include comment text as Markdown")
	return cmd
}

// resolveActions reconciles the markup's action state with the store.
func resolveActions(st reconcile.Store, kind actions.Kind, id string, c hn.Controls) actionOut {
	v := reconcile.ResolveVote(st, kind, id, c)
	f := reconcile.ResolveFavorite(st, kind, id, c)
	return actionOut{Vote: string(v.Current), Favorite: f.Favorited}
}

// locate finds an item on its own page and reports its kind.
func locate(page *hn.Page, id string) (actions.Kind, hn.Controls, error) {
	if page.Item != nil && page.Item.ID == id {
		return actions.KindStory, page.Item.Controls, nil
	}
	for _, c := range page.Comments {
		if c.ID == id {
			return actions.KindComment, c.Controls, nil
		}
	}
	return "", hn.Controls{}, fmt.Errorf("locate %s: %w", id, errNotFound("item", id))
}
