// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for attrspec's terminal output. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// HeaderForeground colors title lines.
	HeaderForeground lipgloss.Color

	// OffsetForeground colors byte offsets in dumps.
	OffsetForeground lipgloss.Color

	// BytesForeground colors raw hex bytes in dumps.
	BytesForeground lipgloss.Color

	// DepthColors color decoded labels by nesting depth, cycling for
	// anything deeper than the palette.
	DepthColors [4]lipgloss.Color

	// Outcome colors.
	ErrorForeground   lipgloss.Color
	SuccessForeground lipgloss.Color
}

// DepthColor returns the label color for a nesting depth. Negative
// depths return NormalText.
func (theme Theme) DepthColor(depth int) lipgloss.Color {
	if depth < 0 {
		return theme.NormalText
	}
	return theme.DepthColors[depth%len(theme.DepthColors)]
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	OffsetForeground: lipgloss.Color("240"),
	BytesForeground:  lipgloss.Color("75"), // blue

	DepthColors: [4]lipgloss.Color{
		lipgloss.Color("252"), // top level: normal text
		lipgloss.Color("114"), // green
		lipgloss.Color("220"), // yellow/amber
		lipgloss.Color("141"), // light purple
	},

	ErrorForeground:   lipgloss.Color("196"), // red
	SuccessForeground: lipgloss.Color("114"), // green
}

// Styles binds a theme to the color profile of one output. Writers
// that are not terminals get plain text.
type Styles struct {
	Header  lipgloss.Style
	Faint   lipgloss.Style
	Offset  lipgloss.Style
	Bytes   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style

	depth [4]lipgloss.Style
}

// NewStyles returns the styles of theme for output written to w.
func NewStyles(w io.Writer, theme Theme) *Styles {
	renderer := lipgloss.NewRenderer(w)
	styles := &Styles{
		Header:  renderer.NewStyle().Foreground(theme.HeaderForeground).Bold(true),
		Faint:   renderer.NewStyle().Foreground(theme.FaintText),
		Offset:  renderer.NewStyle().Foreground(theme.OffsetForeground),
		Bytes:   renderer.NewStyle().Foreground(theme.BytesForeground),
		Error:   renderer.NewStyle().Foreground(theme.ErrorForeground).Bold(true),
		Success: renderer.NewStyle().Foreground(theme.SuccessForeground),
	}
	for index := range styles.depth {
		styles.depth[index] = renderer.NewStyle().Foreground(theme.DepthColor(index))
	}
	return styles
}

// Depth returns the label style for a nesting depth.
func (s *Styles) Depth(depth int) lipgloss.Style {
	if depth < 0 {
		depth = 0
	}
	return s.depth[depth%len(s.depth)]
}
