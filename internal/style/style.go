// Package style describes how boundary features are drawn and decides which
// style each feature gets.
package style

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/lucasb-eyer/go-colorful"
)

// Style is the visual description of a boundary: border color and weight,
// fill color and fill opacity.
type Style struct {
	BorderColor  string  `json:"border_color"`
	BorderWeight float64 `json:"border_weight"`
	FillColor    string  `json:"fill_color"`
	FillOpacity  float64 `json:"fill_opacity"`
}

// Built-in styles
var (
	Default = Style{
		BorderColor:  "#D32F2F",
		BorderWeight: 3,
		FillColor:    "#FFCC80",
		FillOpacity:  0.4,
	}
	Highlight = Style{
		BorderColor:  "#B71C1C",
		BorderWeight: 6,
		FillColor:    "#FFA726",
		FillOpacity:  0.6,
	}
	Emphasis = Style{
		BorderColor:  "#D32F2F",
		BorderWeight: 3,
		FillColor:    "#FFCC80",
		FillOpacity:  0.5,
	}
	Background = Style{
		BorderColor:  "#9E9E9E",
		BorderWeight: 1,
		FillColor:    "#F5F5F5",
		FillOpacity:  0.2,
	}
)

// Validate reports every problem with the style
func (s Style) Validate() error {
	var result *multierror.Error

	if _, err := colorful.Hex(s.BorderColor); err != nil {
		result = multierror.Append(result, fmt.Errorf("border color %q is not a hex color", s.BorderColor))
	}
	if _, err := colorful.Hex(s.FillColor); err != nil {
		result = multierror.Append(result, fmt.Errorf("fill color %q is not a hex color", s.FillColor))
	}
	if s.BorderWeight < 0 {
		result = multierror.Append(result, fmt.Errorf("border weight %v is negative", s.BorderWeight))
	}
	if s.FillOpacity < 0 || s.FillOpacity > 1 {
		result = multierror.Append(result, fmt.Errorf("fill opacity %v is outside [0,1]", s.FillOpacity))
	}

	return result.ErrorOrNil()
}

// BorderGlyph returns the rune used to draw a border of the style's weight.
// A zero weight draws no border.
func (s Style) BorderGlyph() rune {
	return GlyphForWeight(s.BorderWeight)
}

// GlyphForWeight maps a border weight to a rune, heavier weights use denser glyphs
func GlyphForWeight(w float64) rune {
	switch {
	case w <= 0:
		return 0
	case w <= 1.5:
		return '·'
	case w <= 3:
		return '•'
	case w <= 5:
		return '●'
	default:
		return '█'
	}
}

// Border returns the parsed border color, falling back to backdrop when the
// color is invalid.
func (s Style) Border(backdrop colorful.Color) colorful.Color {
	c, err := colorful.Hex(s.BorderColor)
	if err != nil {
		return backdrop
	}
	return c
}

// Fill blends the fill color over backdrop by the fill opacity. Opacity 0
// leaves the backdrop untouched, opacity 1 replaces it.
func (s Style) Fill(backdrop colorful.Color) colorful.Color {
	return Blend(s.FillColor, s.FillOpacity, backdrop)
}

// Blend mixes hex over backdrop with the given opacity
func Blend(hex string, opacity float64, backdrop colorful.Color) colorful.Color {
	if opacity <= 0 {
		return backdrop
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return backdrop
	}
	if opacity >= 1 {
		return c
	}
	return backdrop.BlendRgb(c, opacity).Clamped()
}

// MustHex parses a hex color, returning black on error
func MustHex(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
