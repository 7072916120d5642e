package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/twoway/internal/config"
	"github.com/chojs23/twoway/internal/merge"
)

// Theme holds the styles of the conflict resolver, derived from the theme
// section of the config file.
type Theme struct {
	Title       lipgloss.Style
	OtherPane   lipgloss.Style
	CurrentPane lipgloss.Style
	OtherLine   lipgloss.Style
	CurrentLine lipgloss.Style
	Caret       lipgloss.Style
	Cursor      lipgloss.Style
	Help        lipgloss.Style
}

func NewTheme(cfg config.ThemeConfig) Theme {
	other := lipgloss.Color(cfg.Other)
	current := lipgloss.Color(cfg.Current)
	accent := lipgloss.Color(cfg.Accent)
	muted := lipgloss.Color(cfg.Muted)

	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1),
		OtherPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(other).
			Padding(0, 1),
		CurrentPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(current).
			Padding(0, 1),
		OtherLine:   lipgloss.NewStyle().Foreground(other),
		CurrentLine: lipgloss.NewStyle().Foreground(current),
		Caret: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		Cursor: lipgloss.NewStyle().Foreground(accent),
		Help:   lipgloss.NewStyle().Foreground(muted),
	}
}

// PromptStyles adapts the theme for the line-oriented prompt resolver.
func (t Theme) PromptStyles() merge.PromptStyles {
	return merge.PromptStyles{
		Theirs: t.OtherLine,
		Mine:   t.CurrentLine,
		Caret:  t.Caret,
	}
}
