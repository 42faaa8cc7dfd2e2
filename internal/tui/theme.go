package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds.
// We use lipgloss.AdaptiveColor everywhere and only apply "faint" styling
// on dark backgrounds (faint text on light terminals often becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      = ac("240", "243")
	colorChromeFg   = ac("240", "245")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorSurfaceFg  = ac("235", "252")
	colorControlBg  = ac("252", "235")
	colorAccent     = ac("27", "62")
	// The site's own orange, used for the header bar and active votes.
	colorBrand      = ac("166", "208")
	colorBrandFg    = ac("255", "235")
	colorFavorite   = ac("136", "220")
	colorFlashError = ac("196", "160")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorBrandFg).Background(colorBrand).Padding(0, 1)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg)
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleVoted() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
}

func styleFavorite() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFavorite)
}

func styleAffordance() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFlashError)
}

func styleChrome() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorChromeFg)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// An explicit profile name (config or flag) wins. Otherwise NO_COLOR is honored and
// termenv's detection is used, upgraded when TERM/COLORTERM advertise more colors than
// the probe reports.
func applyColorProfilePreference(name string) {
	if p, ok := parseColorProfile(name); ok {
		lipgloss.SetColorProfile(p)
		return
	}
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

func parseColorProfile(name string) (termenv.Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "truecolor", "24bit":
		return termenv.TrueColor, true
	case "ansi256", "256":
		return termenv.ANSI256, true
	case "ansi", "16":
		return termenv.ANSI, true
	case "ascii", "none":
		return termenv.Ascii, true
	}
	return termenv.Ascii, false
}

// applyThemePreference configures Lip Gloss's background detection.
//
// Priority:
// 1) HNTERM_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic (format like "15;0" = fg;bg)
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("HNTERM_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
