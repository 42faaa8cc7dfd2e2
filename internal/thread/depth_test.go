package thread

import "testing"

func TestDepthFromIndent(t *testing.T) {
	cases := []struct {
		px   int
		want int
	}{
		{0, 0},
		{40, 1},
		{80, 2},
		{120, 3},
		{19, 0},
		{20, 1}, // rounds half away from zero
		{59, 1},
		{61, 2},
		{-40, 0},
	}
	for _, c := range cases {
		if got := DepthFromIndent(c.px); got != c.want {
			t.Fatalf("DepthFromIndent(%d)=%d, want %d", c.px, got, c.want)
		}
	}
}

func TestDepthFromAttr(t *testing.T) {
	if got := DepthFromAttr(" 3 "); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := DepthFromAttr("x"); got != 0 {
		t.Fatalf("expected 0 for junk, got %d", got)
	}
	if got := DepthFromAttr("-2"); got != 0 {
		t.Fatalf("expected 0 for negative, got %d", got)
	}
}
