package cli

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"hnterm/internal/actions"

	"github.com/spf13/cobra"
)

type recordOut struct {
	User string `json:"user" yaml:"user"`
	Kind string `json:"kind" yaml:"kind"`
	ID   string `json:"id" yaml:"id"`
	actions.Record `yaml:",inline"`
}

func newActionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Inspect the locally remembered votes and favorites",
	}
	cmd.AddCommand(newActionsListCmd(app))
	cmd.AddCommand(newActionsGetCmd(app))
	cmd.AddCommand(newActionsClearCmd(app))
	return cmd
}

// withStore opens a session with the action store loaded.
func withStore(cmd *cobra.Command, app *App, fn func(s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	s.store.Load(ctx)
	fnErr := fn(s)
	closeErr := s.Close(context.WithoutCancel(ctx))
	if fnErr != nil {
		return fnErr
	}
	if closeErr != nil {
		return writeErr(cmd, closeErr)
	}
	return nil
}

func userOrDefault(s *session, user string) string {
	if u := strings.TrimSpace(user); u != "" {
		return u
	}
	return s.store.User()
}

func newActionsListCmd(app *App) *cobra.Command {
	var (
		user string
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records of one user (default: the last seen user)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(s *session) error {
				doc := s.store.Snapshot()
				if all {
					return writeOut(cmd, app, doc)
				}
				u := userOrDefault(s, user)
				out := []recordOut{}
				if b := doc.ByUser[u]; b != nil {
					out = appendRecords(out, u, actions.KindStory, b.Stories)
					out = appendRecords(out, u, actions.KindComment, b.Comments)
				}
				return writeOut(cmd, app, out)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Username bucket (\"anonymous\" for logged-out records)")
	cmd.Flags().BoolVar(&all, "all", false, "Print the whole document")
	return cmd
}

func appendRecords(out []recordOut, user string, kind actions.Kind, recs map[string]actions.Record) []recordOut {
	ids := make([]string, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	sortItemIDs(ids)
	for _, id := range ids {
		out = append(out, recordOut{User: user, Kind: string(kind), ID: id, Record: recs[id]})
	}
	return out
}

// sortItemIDs orders numeric ids numerically (shorter first), then
// lexically.
func sortItemIDs(ids []string) {
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func newActionsGetCmd(app *App) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "get <story|comment> <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := actions.ParseKind(args[0])
			if !ok {
				return writeErr(cmd, errUsage("invalid kind %q (want story or comment)", args[0]))
			}
			id := strings.TrimSpace(args[1])
			return withStore(cmd, app, func(s *session) error {
				u := userOrDefault(s, user)
				doc := s.store.Snapshot()
				b := doc.ByUser[u]
				var recs map[string]actions.Record
				if b != nil {
					if kind == actions.KindStory {
						recs = b.Stories
					} else {
						recs = b.Comments
					}
				}
				rec, ok := recs[id]
				if !ok {
					return writeErr(cmd, errNotFound(string(kind), id))
				}
				return writeOut(cmd, app, recordOut{User: u, Kind: string(kind), ID: id, Record: rec})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Username bucket")
	return cmd
}

func newActionsClearCmd(app *App) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every record of one user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(s *session) error {
				u := userOrDefault(s, user)
				s.store.ClearUser(u)
				return writeOut(cmd, app, map[string]any{"user": u, "cleared": true})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Username bucket")
	return cmd
}
