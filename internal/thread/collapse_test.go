package thread

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func itemsWithDepths(depths ...int) []Item {
	out := make([]Item, len(depths))
	for i, d := range depths {
		out[i] = Item{ID: fmt.Sprintf("c%d", i), Depth: d}
	}
	return out
}

func hiddenIndexes(t *Thread) []int {
	var out []int
	for i := 0; i < t.Len(); i++ {
		it, _ := t.Item(i)
		if it.Hidden() {
			out = append(out, i)
		}
	}
	return out
}

func TestNew_DecidesHasChildrenFromNextDepth(t *testing.T) {
	th := New(itemsWithDepths(0, 1, 1, 2, 0))
	want := []bool{true, false, true, false, false}
	for i, w := range want {
		it, _ := th.Item(i)
		if it.HasChildren != w {
			t.Fatalf("item %d: hasChildren=%v, want %v", i, it.HasChildren, w)
		}
	}
}

func TestToggle_CollapseHidesContiguousRunOnly(t *testing.T) {
	th := New(itemsWithDepths(0, 1, 1, 0))
	aff := th.Toggle(0)
	if aff.Expanded || aff.Label != "[+2]" {
		t.Fatalf("unexpected affordance after collapse: %+v", aff)
	}
	if got := hiddenIndexes(th); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("expected items 1,2 hidden; got %v", got)
	}
}

func TestToggle_ExpandKeepsNestedCollapsedSubtreeHidden(t *testing.T) {
	items := itemsWithDepths(0, 1, 2, 0)
	items[1].Collapsed = true
	th := New(items)
	if got := hiddenIndexes(th); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("expected depth-2 child hidden initially; got %v", got)
	}

	th.Toggle(0)
	if got := hiddenIndexes(th); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("expected 1,2 hidden after collapsing root; got %v", got)
	}

	aff := th.Toggle(0)
	if !aff.Expanded || aff.Label != "[-]" {
		t.Fatalf("unexpected affordance after expand: %+v", aff)
	}
	if got := hiddenIndexes(th); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("expected only depth-2 child hidden after expanding root; got %v", got)
	}
}

func TestToggle_ExpandRevealsOnlyFirstVisibleLayer(t *testing.T) {
	// 0
	//   1 (collapsed)
	//     2
	//       3
	//   1
	//     2 (collapsed)
	//       3
	items := itemsWithDepths(0, 1, 2, 3, 1, 2, 3)
	items[1].Collapsed = true
	items[5].Collapsed = true
	th := New(items)
	th.Toggle(0)
	th.Toggle(0)
	if got := hiddenIndexes(th); !reflect.DeepEqual(got, []int{2, 3, 6}) {
		t.Fatalf("unexpected hidden set: %v", got)
	}
}

func TestToggle_LeafAndOutOfRangeAreNoOps(t *testing.T) {
	th := New(itemsWithDepths(0, 0))
	th.Toggle(1)
	if got := hiddenIndexes(th); len(got) != 0 {
		t.Fatalf("leaf toggle hid items: %v", got)
	}
	if aff := th.Toggle(7); aff != (Affordance{}) {
		t.Fatalf("expected zero affordance for out of range, got %+v", aff)
	}
	if aff := th.Toggle(-1); aff != (Affordance{}) {
		t.Fatalf("expected zero affordance for negative index, got %+v", aff)
	}

	empty := New(nil)
	empty.Toggle(0)
	empty.CollapseAll()
	empty.ExpandAll()
	if empty.Len() != 0 || len(empty.Visible()) != 0 {
		t.Fatalf("expected empty thread to stay empty")
	}
}

func TestToggle_DoubleToggleRestoresHiddenSet(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := rng.Intn(12)
		depths := make([]int, n)
		d := 0
		for i := range depths {
			// Depth may rise by at most one per row, like real markup.
			d = rng.Intn(d + 2)
			depths[i] = d
		}
		items := itemsWithDepths(depths...)
		for i := range items {
			items[i].Collapsed = rng.Intn(4) == 0
		}
		th := New(items)

		for step := 0; step < 5 && n > 0; step++ {
			i := rng.Intn(n)
			before := th.HiddenSet()
			th.Toggle(i)
			th.Toggle(i)
			if after := th.HiddenSet(); !reflect.DeepEqual(before, after) {
				t.Fatalf("round %d depths=%v toggle(%d): before=%v after=%v", round, depths, i, before, after)
			}
		}
	}
}

func TestToggle_HiddenItemKeepsSubtreeHidden(t *testing.T) {
	th := New(itemsWithDepths(0, 1, 2))
	th.Toggle(0)
	before := th.HiddenSet()

	th.Toggle(1)
	if it, _ := th.Item(1); !it.Collapsed {
		t.Fatalf("expected the hidden item's flag to flip")
	}
	th.Toggle(1)
	if after := th.HiddenSet(); !reflect.DeepEqual(before, after) {
		t.Fatalf("double toggle of hidden item changed hidden set: before=%v after=%v", before, after)
	}
	if it, _ := th.Item(2); !it.Hidden() {
		t.Fatalf("expected row 2 hidden while row 0 is collapsed")
	}
}

func TestToggle_ExpandUnderCollapsedRootStaysHidden(t *testing.T) {
	th := New(itemsWithDepths(0, 1, 2, 0))
	th.CollapseAll()
	th.Toggle(1)
	if got := hiddenIndexes(th); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("expected rows 1 and 2 hidden under collapsed root, got %v", got)
	}

	// Expanding the root now reveals row 1 but keeps its own state.
	th.Toggle(0)
	if got := hiddenIndexes(th); len(got) != 0 {
		t.Fatalf("expected nothing hidden once root and child are expanded, got %v", got)
	}
}

func TestCollapseAllExpandAll(t *testing.T) {
	th := New(itemsWithDepths(0, 1, 2, 1, 0, 1))
	th.CollapseAll()
	if got := hiddenIndexes(th); !reflect.DeepEqual(got, []int{1, 2, 3, 5}) {
		t.Fatalf("unexpected hidden set after CollapseAll: %v", got)
	}
	th.ExpandAll()
	if got := hiddenIndexes(th); len(got) != 0 {
		t.Fatalf("expected nothing hidden after ExpandAll, got %v", got)
	}
}

func TestNavigation(t *testing.T) {
	th := New(itemsWithDepths(0, 1, 2, 1, 0))
	if p := th.Parent(2); p != 1 {
		t.Fatalf("parent of 2: %d", p)
	}
	if p := th.Parent(0); p != -1 {
		t.Fatalf("parent of root: %d", p)
	}
	if s := th.NextSibling(1); s != 3 {
		t.Fatalf("next sibling of 1: %d", s)
	}
	if s := th.NextSibling(3); s != -1 {
		t.Fatalf("next sibling of 3: %d", s)
	}
	if s := th.PrevSibling(3); s != 1 {
		t.Fatalf("prev sibling of 3: %d", s)
	}
	if s := th.NextSibling(0); s != 4 {
		t.Fatalf("next sibling of 0: %d", s)
	}
	if r := th.Root(2); r != 0 {
		t.Fatalf("root of 2: %d", r)
	}
	if n := th.SubtreeSize(0); n != 3 {
		t.Fatalf("subtree size of 0: %d", n)
	}
	if i := th.Index("c3"); i != 3 {
		t.Fatalf("index of c3: %d", i)
	}
}
