// Package thread keeps the show/hide state of a flattened comment thread.
//
// The host site encodes nesting as an indentation width, so a page is a
// flat, ordered sequence of items each carrying a depth. The subtree of
// item i is the maximal contiguous run after i whose depth is strictly
// greater than depth(i). All operations here are linear scans over that
// sequence; no parent/child pointers are ever built.
package thread

import "fmt"

// Item is one row of a flattened thread.
type Item struct {
	ID    string
	Depth int

	// HasChildren is decided once, when the Thread is built, by comparing
	// the item's depth to the next item's. It is not recomputed on toggle.
	HasChildren bool

	Collapsed bool

	// hidden is derived by the collapse scans; it is never set directly.
	hidden bool
}

// Hidden reports whether the item is currently hidden by a collapsed
// ancestor.
func (it Item) Hidden() bool { return it.hidden }

// Affordance describes an item's collapse control after a toggle.
type Affordance struct {
	// Label is the text shown on the control: "[-]" when expanded,
	// "[+N]" when collapsed (N = number of items in the subtree).
	Label string
	// Expanded mirrors aria-expanded.
	Expanded bool
}

// Thread is the ordered item sequence of one page. It is owned by the
// view that rendered the page and is not safe for concurrent use.
type Thread struct {
	items []Item
}

// New builds a Thread, deciding HasChildren for every item. Items that
// arrive already collapsed have their subtrees hidden immediately.
func New(items []Item) *Thread {
	t := &Thread{items: make([]Item, len(items))}
	copy(t.items, items)
	for i := range t.items {
		if t.items[i].Depth < 0 {
			t.items[i].Depth = 0
		}
		t.items[i].hidden = false
	}
	for i := range t.items {
		t.items[i].HasChildren = i+1 < len(t.items) && t.items[i+1].Depth > t.items[i].Depth
	}
	for i := range t.items {
		if t.items[i].Collapsed && !t.items[i].hidden {
			t.hideDescendants(i)
		}
	}
	return t
}

func (t *Thread) Len() int {
	if t == nil {
		return 0
	}
	return len(t.items)
}

func (t *Thread) valid(i int) bool { return t != nil && i >= 0 && i < len(t.items) }

// Item returns a copy of item i and whether i is in range.
func (t *Thread) Item(i int) (Item, bool) {
	if !t.valid(i) {
		return Item{}, false
	}
	return t.items[i], true
}

// Index returns the position of the item with the given id, or -1.
func (t *Thread) Index(id string) int {
	if t == nil || id == "" {
		return -1
	}
	for i := range t.items {
		if t.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Visible returns the indexes of items that are not hidden, in order.
func (t *Thread) Visible() []int {
	if t == nil {
		return nil
	}
	out := make([]int, 0, len(t.items))
	for i := range t.items {
		if !t.items[i].hidden {
			out = append(out, i)
		}
	}
	return out
}

// HiddenSet returns the ids of all hidden items.
func (t *Thread) HiddenSet() map[string]bool {
	out := map[string]bool{}
	if t == nil {
		return out
	}
	for _, it := range t.items {
		if it.hidden {
			out[it.ID] = true
		}
	}
	return out
}

// subtreeEnd returns the index one past the last descendant of i.
func (t *Thread) subtreeEnd(i int) int {
	d := t.items[i].Depth
	j := i + 1
	for j < len(t.items) && t.items[j].Depth > d {
		j++
	}
	return j
}

// SubtreeSize returns how many items follow i at a greater depth.
func (t *Thread) SubtreeSize(i int) int {
	if !t.valid(i) {
		return 0
	}
	return t.subtreeEnd(i) - i - 1
}

// hideDescendants hides the whole run under i, regardless of any nested
// collapsed flags.
func (t *Thread) hideDescendants(i int) {
	end := t.subtreeEnd(i)
	for j := i + 1; j < end; j++ {
		t.items[j].hidden = true
	}
}

// restoreVisibility reveals the run under i while keeping the subtrees
// of still-collapsed descendants hidden. stack holds the depths of the
// collapsed items whose scope the scan is currently inside.
func (t *Thread) restoreVisibility(i int) {
	end := t.subtreeEnd(i)
	var stack []int
	for j := i + 1; j < end; j++ {
		d := t.items[j].Depth
		for len(stack) > 0 && stack[len(stack)-1] >= d {
			stack = stack[:len(stack)-1]
		}
		t.items[j].hidden = len(stack) > 0
		if !t.items[j].hidden && t.items[j].Collapsed {
			stack = append(stack, d)
		}
	}
}

// Toggle flips item i between expanded and collapsed and rescans its
// subtree. An item hidden by a collapsed ancestor only has its flag
// flipped; its subtree stays hidden until that ancestor is expanded.
// Out-of-range indexes are a no-op returning a zero Affordance.
func (t *Thread) Toggle(i int) Affordance {
	if !t.valid(i) {
		return Affordance{}
	}
	t.items[i].Collapsed = !t.items[i].Collapsed
	if t.items[i].hidden {
		return t.Affordance(i)
	}
	if t.items[i].Collapsed {
		t.hideDescendants(i)
	} else {
		t.restoreVisibility(i)
	}
	return t.Affordance(i)
}

// Affordance returns the current collapse control state of item i.
func (t *Thread) Affordance(i int) Affordance {
	if !t.valid(i) {
		return Affordance{}
	}
	if t.items[i].Collapsed {
		return Affordance{Label: fmt.Sprintf("[+%d]", t.SubtreeSize(i)), Expanded: false}
	}
	return Affordance{Label: "[-]", Expanded: true}
}

// CollapseAll collapses every item that has children, outermost first.
func (t *Thread) CollapseAll() {
	if t == nil {
		return
	}
	for i := range t.items {
		if t.items[i].HasChildren && !t.items[i].Collapsed {
			t.Toggle(i)
		}
	}
}

// ExpandAll expands every collapsed item, outermost first. An item is
// only toggled once all its ancestors are expanded, so each restore scan
// never reveals rows under a collapsed ancestor.
func (t *Thread) ExpandAll() {
	if t == nil {
		return
	}
	for i := range t.items {
		if t.items[i].Collapsed {
			t.Toggle(i)
		}
	}
}

// Parent returns the index of the nearest preceding item with a smaller
// depth, or -1 for top-level items.
func (t *Thread) Parent(i int) int {
	if !t.valid(i) {
		return -1
	}
	d := t.items[i].Depth
	for j := i - 1; j >= 0; j-- {
		if t.items[j].Depth < d {
			return j
		}
	}
	return -1
}

// NextSibling returns the index of the next item at the same depth
// under the same parent, or -1.
func (t *Thread) NextSibling(i int) int {
	if !t.valid(i) {
		return -1
	}
	j := t.subtreeEnd(i)
	if j < len(t.items) && t.items[j].Depth == t.items[i].Depth {
		return j
	}
	return -1
}

// PrevSibling returns the index of the previous item at the same depth
// under the same parent, or -1.
func (t *Thread) PrevSibling(i int) int {
	if !t.valid(i) {
		return -1
	}
	d := t.items[i].Depth
	for j := i - 1; j >= 0; j-- {
		switch {
		case t.items[j].Depth == d:
			return j
		case t.items[j].Depth < d:
			return -1
		}
	}
	return -1
}

// Root returns the index of the top-level ancestor of i.
func (t *Thread) Root(i int) int {
	if !t.valid(i) {
		return -1
	}
	for {
		p := t.Parent(i)
		if p < 0 {
			return i
		}
		i = p
	}
}
