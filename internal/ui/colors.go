// Package ui holds the terminal palette and styled output helpers shared by
// the dossier commands.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorPrimary   = lipgloss.Color("#a78bfa") // Purple - headers
	ColorSecondary = lipgloss.Color("#67e8f9") // Cyan - names and paths
	ColorTertiary  = lipgloss.Color("#fbbf24") // Amber - warnings
	ColorSuccess   = lipgloss.Color("#34d399")
	ColorError     = lipgloss.Color("#ef4444")
	ColorMuted     = lipgloss.Color("#6b7280")
	ColorSubtle    = lipgloss.Color("#374151")

	ColorText    = lipgloss.Color("#e5e7eb")
	ColorTextDim = lipgloss.Color("#9ca3af")
	ColorBgDark  = lipgloss.Color("#1f2937")
)

// Status icons.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "△"
	IconBullet  = "•"
)

// Clamp constrains a value to a range.
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PadRight pads s with spaces to width visible cells.
func PadRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Truncate shortens s to max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
