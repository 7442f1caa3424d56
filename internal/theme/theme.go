// Package theme provides color schemes for the borderview interface chrome
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines the colors of everything drawn around the map: panels,
// controls, popup and status bar.
type Theme struct {
	Name        string
	Description string

	// Primary colors
	Primary       lipgloss.Color
	PrimaryBright lipgloss.Color
	Secondary     lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI elements
	Border    lipgloss.Color
	BorderDim lipgloss.Color
	Text      lipgloss.Color
	TextDim   lipgloss.Color
	Panel     lipgloss.Color
	Selected  lipgloss.Color
}

// themes contains all available theme definitions
var themes = map[string]*Theme{
	"midnight": {
		Name:          "Midnight",
		Description:   "Dark slate panels with warm accents",
		Primary:       lipgloss.Color("#FFA726"),
		PrimaryBright: lipgloss.Color("#FFCC80"),
		Secondary:     lipgloss.Color("#4FC3F7"),
		Success:       lipgloss.Color("#66BB6A"),
		Warning:       lipgloss.Color("#FFEE58"),
		Error:         lipgloss.Color("#EF5350"),
		Info:          lipgloss.Color("#4FC3F7"),
		Border:        lipgloss.Color("#90A4AE"),
		BorderDim:     lipgloss.Color("#455A64"),
		Text:          lipgloss.Color("#ECEFF1"),
		TextDim:       lipgloss.Color("#90A4AE"),
		Panel:         lipgloss.Color("#263238"),
		Selected:      lipgloss.Color("#FFCC80"),
	},
	"paper": {
		Name:          "Paper",
		Description:   "Light panels like a printed atlas",
		Primary:       lipgloss.Color("#B71C1C"),
		PrimaryBright: lipgloss.Color("#D32F2F"),
		Secondary:     lipgloss.Color("#1565C0"),
		Success:       lipgloss.Color("#2E7D32"),
		Warning:       lipgloss.Color("#EF6C00"),
		Error:         lipgloss.Color("#C62828"),
		Info:          lipgloss.Color("#1565C0"),
		Border:        lipgloss.Color("#5D4037"),
		BorderDim:     lipgloss.Color("#A1887F"),
		Text:          lipgloss.Color("#212121"),
		TextDim:       lipgloss.Color("#616161"),
		Panel:         lipgloss.Color("#FFF8E1"),
		Selected:      lipgloss.Color("#D32F2F"),
	},
	"amber": {
		Name:          "Amber",
		Description:   "Vintage amber monochrome display",
		Primary:       lipgloss.Color("#FFB000"),
		PrimaryBright: lipgloss.Color("#FFD060"),
		Secondary:     lipgloss.Color("#FFD060"),
		Success:       lipgloss.Color("#FFD060"),
		Warning:       lipgloss.Color("#FFFFFF"),
		Error:         lipgloss.Color("#FF3030"),
		Info:          lipgloss.Color("#FFD060"),
		Border:        lipgloss.Color("#FFB000"),
		BorderDim:     lipgloss.Color("#8A5A00"),
		Text:          lipgloss.Color("#FFB000"),
		TextDim:       lipgloss.Color("#8A5A00"),
		Panel:         lipgloss.Color("#1A1000"),
		Selected:      lipgloss.Color("#FFFFFF"),
	},
	"ice": {
		Name:          "Blue Ice",
		Description:   "Cold blue tactical display",
		Primary:       lipgloss.Color("#2979FF"),
		PrimaryBright: lipgloss.Color("#82B1FF"),
		Secondary:     lipgloss.Color("#00E5FF"),
		Success:       lipgloss.Color("#00E5FF"),
		Warning:       lipgloss.Color("#FFEA00"),
		Error:         lipgloss.Color("#FF1744"),
		Info:          lipgloss.Color("#82B1FF"),
		Border:        lipgloss.Color("#2979FF"),
		BorderDim:     lipgloss.Color("#0D47A1"),
		Text:          lipgloss.Color("#BBDEFB"),
		TextDim:       lipgloss.Color("#5C7CAB"),
		Panel:         lipgloss.Color("#0A1929"),
		Selected:      lipgloss.Color("#FFFFFF"),
	},
	"high_contrast": {
		Name:          "High Contrast",
		Description:   "Maximum visibility",
		Primary:       lipgloss.Color("#FFFFFF"),
		PrimaryBright: lipgloss.Color("#FFFFFF"),
		Secondary:     lipgloss.Color("#FFFF00"),
		Success:       lipgloss.Color("#00FF00"),
		Warning:       lipgloss.Color("#FFFF00"),
		Error:         lipgloss.Color("#FF0000"),
		Info:          lipgloss.Color("#00FFFF"),
		Border:        lipgloss.Color("#FFFFFF"),
		BorderDim:     lipgloss.Color("#C0C0C0"),
		Text:          lipgloss.Color("#FFFFFF"),
		TextDim:       lipgloss.Color("#C0C0C0"),
		Panel:         lipgloss.Color("#000000"),
		Selected:      lipgloss.Color("#FFFF00"),
	},
}

var order = []string{"midnight", "paper", "amber", "ice", "high_contrast"}

// DefaultName is the theme used when none or an unknown one is configured
const DefaultName = "midnight"

// Get returns a theme by name, or the default theme if not found
func Get(name string) *Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultName]
}

// Exists reports whether name is a known theme
func Exists(name string) bool {
	_, ok := themes[name]
	return ok
}

// List returns all available theme names
func List() []string {
	names := make([]string, 0, len(themes))
	for _, name := range order {
		if _, ok := themes[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// ThemeInfo contains theme metadata for display
type ThemeInfo struct {
	Key         string
	Name        string
	Description string
}

// GetInfo returns information about all themes
func GetInfo() []ThemeInfo {
	info := make([]ThemeInfo, 0, len(order))
	for _, key := range order {
		if t, ok := themes[key]; ok {
			info = append(info, ThemeInfo{
				Key:         key,
				Name:        t.Name,
				Description: t.Description,
			})
		}
	}
	return info
}

// RGB converts a theme color to a colorful color for canvas drawing.
// Colors that are not hex fall back to black.
func RGB(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{}
	}
	return col
}

// Style helpers for creating lipgloss styles

// PrimaryStyle returns a style using the primary color
func (t *Theme) PrimaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary)
}

// PrimaryBrightStyle returns a style using the bright primary color
func (t *Theme) PrimaryBrightStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.PrimaryBright).Bold(true)
}

// SecondaryStyle returns a style using the secondary color
func (t *Theme) SecondaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Secondary)
}

// BorderStyle returns a style using the border color
func (t *Theme) BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Border)
}

// TextStyle returns a style using the text color
func (t *Theme) TextStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

// TextDimStyle returns a style using the dim text color
func (t *Theme) TextDimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.TextDim)
}

// SuccessStyle returns a style using the success color
func (t *Theme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success)
}

// WarningStyle returns a style using the warning color
func (t *Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

// ErrorStyle returns a style using the error color
func (t *Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

// InfoStyle returns a style using the info color
func (t *Theme) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Info)
}

// PanelStyle returns a bordered panel style
func (t *Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)
}
