package tui

import (
	"strings"
	"sync"
)

// Terminal apps can't change the user's font. Instead we choose between
// Unicode and ASCII glyph sets for vote arrows, favorite stars and rules.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphUp() string {
	if glyphs() == glyphSetASCII {
		return "^"
	}
	return "▲"
}

func glyphDown() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▼"
}

func glyphFavorite() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "★"
}

func glyphDot() string {
	if glyphs() == glyphSetASCII {
		return "|"
	}
	return "·"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}
