package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of both views. Bindings that only apply
// to one view are disabled while the other is shown.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding
	Open key.Binding
	Back key.Binding

	NextPage key.Binding
	PrevPage key.Binding
	Reload   key.Binding

	Toggle      key.Binding // Collapse/expand the selected comment.
	CollapseAll key.Binding
	ExpandAll   key.Binding
	Parent      key.Binding
	NextSibling key.Binding
	PrevSibling key.Binding

	Upvote   key.Binding
	Downvote key.Binding
	Favorite key.Binding
	Reply    key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap uses vim-style movement alongside the arrow keys.
var DefaultKeyMap = KeyMap{
	Up:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Open: key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter", "open thread")),
	Back: key.NewBinding(key.WithKeys("esc", "h", "left", "backspace"), key.WithHelp("esc", "back")),

	NextPage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
	PrevPage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
	Reload:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "reload")),

	Toggle:      key.NewBinding(key.WithKeys(" ", "enter", "tab"), key.WithHelp("space", "collapse")),
	CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
	ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
	Parent:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "parent")),
	NextSibling: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
	PrevSibling: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev")),

	Upvote:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upvote")),
	Downvote: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "downvote")),
	Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
	Reply:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reply")),

	Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// forView enables the bindings that apply to v.
func (k KeyMap) forView(v view) KeyMap {
	list := v == viewList
	k.Open.SetEnabled(list)
	k.NextPage.SetEnabled(list)
	k.PrevPage.SetEnabled(list)

	k.Back.SetEnabled(!list)
	k.Toggle.SetEnabled(!list)
	k.CollapseAll.SetEnabled(!list)
	k.ExpandAll.SetEnabled(!list)
	k.Parent.SetEnabled(!list)
	k.NextSibling.SetEnabled(!list)
	k.PrevSibling.SetEnabled(!list)
	k.Reply.SetEnabled(!list)
	return k
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Toggle, k.Back, k.Upvote, k.Favorite, k.Reply, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back, k.NextPage, k.PrevPage, k.Reload},
		{k.Toggle, k.CollapseAll, k.ExpandAll, k.Parent, k.NextSibling, k.PrevSibling},
		{k.Upvote, k.Downvote, k.Favorite, k.Reply},
		{k.Help, k.Quit},
	}
}
