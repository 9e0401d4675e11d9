package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by style + wrap width. Building a renderer with
	// WithAutoStyle can block on terminal capability queries, so a fixed
	// style plus caching keeps task-detail rendering fast and predictable.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders task notes for the detail pane.
func renderMarkdown(md string, width int) string {
	return renderWith("", md, width)
}

// renderMarkdownCompact drops block margins; used for comment bodies in the
// thread, where paragraph margins make short comments feel too airy.
func renderMarkdownCompact(md string, width int) string {
	return renderWith("compact", md, width)
}

func renderWith(variant, md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	styleName := markdownStyle()
	key := styleName + ":" + variant + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		cfg := markdownStyleConfig(styleName)
		if variant == "compact" {
			zero := uint(0)
			cfg.Document.Margin = &zero
			cfg.Paragraph.Margin = &zero
			cfg.List.Margin = &zero
			cfg.BlockQuote.Margin = &zero
		}
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(styleName string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	if styleName == "light" {
		cfg = styles.LightStyleConfig
	} else {
		cfg = styles.DarkStyleConfig
	}

	// Keep markdown aligned with the rest of the palette: plain headings,
	// accent-colored links, base-colored body text.
	fg := mdColor(colorSurfaceFg, styleName)
	cfg.Heading.Color = fg
	cfg.H1.Color = fg
	cfg.H2.Color = fg
	cfg.Text.Color = fg
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil

	link := mdColor(colorAccent, styleName)
	cfg.Link.Color = link
	cfg.LinkText.Color = link

	if cfg.CodeBlock.BackgroundColor == nil {
		cfg.CodeBlock.BackgroundColor = mdColor(colorControlBg, styleName)
	}
	return cfg
}

func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SONSOLES_TUI_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SONSOLES_TUI_THEME"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	// Align with Lip Gloss's detection so notes don't render with a dark
	// palette on light terminals.
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func mdColor(c lipgloss.AdaptiveColor, styleName string) *string {
	s := c.Dark
	if styleName == "light" {
		s = c.Light
	}
	return &s
}
