package thread

import (
	"math"
	"strconv"
	"strings"
)

// IndentUnit is the width in pixels of one nesting level in the host's
// comment markup (the spacer image in td.ind is 40px per level).
const IndentUnit = 40

// DepthFromIndent converts a host indentation width into a nesting depth:
// round(px / IndentUnit), never below zero.
func DepthFromIndent(px int) int {
	d := int(math.Round(float64(px) / IndentUnit))
	if d < 0 {
		return 0
	}
	return d
}

// DepthFromAttr reads a depth that was recorded on an already rendered
// item. The value is taken verbatim; anything unparsable is depth 0.
func DepthFromAttr(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
