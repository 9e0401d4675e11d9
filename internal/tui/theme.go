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
// The TUI has to stay readable on both light and dark terminal backgrounds,
// so everything routes through lipgloss.AdaptiveColor. "Faint" styling is only
// applied on dark backgrounds; faint text on light terminals often becomes
// illegible.

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
	colorSurfaceFg  = ac("235", "252")
	colorAccent     = ac("27", "62") // blue
	colorControlBg  = ac("252", "235")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorError      = ac("160", "203")
	colorOK         = ac("28", "77")
	colorWarn       = ac("130", "214")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleNotice() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorOK).Bold(true)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the
// interactive TUI. termenv.EnvColorProfile honors CLICOLOR, which is right
// for piped CLI output but can silently strip a TUI of all color; here only
// NO_COLOR is honored, otherwise the terminal's capabilities decide.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust the env when it reports stronger support than probing did; some
	// terminals under-report and end up with washed-out grays.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection. Some
// terminals don't report their background reliably, which makes AdaptiveColor
// pick the wrong variant.
//
// Priority: SONSOLES_TUI_THEME=light|dark|auto, then SONSOLES_TUI_DARKBG,
// then the common COLORFGBG "fg;bg" heuristic.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SONSOLES_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("SONSOLES_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// xterm palette: 0-6 are dark, 7-15 light.
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
