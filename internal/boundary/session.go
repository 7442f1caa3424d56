// Package boundary loads the country boundary dataset and puts the selected,
// styled and interactive overlay on the map.
package boundary

import (
	"errors"
	"fmt"

	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/style"
)

// Mode selects which features are rendered and how they are styled
type Mode string

// Target modes
const (
	// ModeSingle renders only the target country with the default style
	ModeSingle Mode = "single"
	// ModeHighlight renders every country, emphasizing the target
	ModeHighlight Mode = "highlight"
	// ModeAll renders every country with the default style
	ModeAll Mode = "all"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingle, ModeHighlight, ModeAll:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown target mode %q (want single, highlight or all)", s)
}

// DefaultOverlayName labels the boundary overlay in the layer control
const DefaultOverlayName = "Country Boundary"

// Styles are the named styles of a session
type Styles struct {
	Default    style.Style
	Highlight  style.Style
	Emphasis   style.Style
	Background style.Style
}

// DefaultStyles returns the built-in styles
func DefaultStyles() Styles {
	return Styles{
		Default:    style.Default,
		Highlight:  style.Highlight,
		Emphasis:   style.Emphasis,
		Background: style.Background,
	}
}

// Session is everything a load needs to know besides its collaborators
type Session struct {
	Country      string
	Mode         Mode
	NameProperty string
	OverlayName  string
	Styles       Styles
	ZoomPolicy   layer.ZoomPolicy
}

// Selection returns the features to render for the session's mode
func (s Session) Selection() geo.Selection {
	if s.Mode == ModeSingle {
		return geo.SelectName(s.Country)
	}
	return geo.SelectAll()
}

// Resolver returns the style resolver for the session's mode
func (s Session) Resolver() style.Resolver {
	if s.Mode == ModeHighlight {
		return style.Conditional{
			Property:   s.nameProperty(),
			Match:      s.Country,
			Emphasis:   s.Styles.Emphasis,
			Background: s.Styles.Background,
		}
	}
	return style.Constant{Style: s.Styles.Default}
}

// Validate checks the session is usable
func (s Session) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.Mode != ModeAll && s.Country == "" {
		return errors.New("a country is required in single and highlight mode")
	}
	return nil
}

func (s Session) nameProperty() string {
	if s.NameProperty == "" {
		return geo.DefaultNameProperty
	}
	return s.NameProperty
}

func (s Session) overlayName() string {
	if s.OverlayName == "" {
		return DefaultOverlayName
	}
	return s.OverlayName
}

// Describe returns a short description like "India (single)"
func (s Session) Describe() string {
	if s.Mode == ModeAll {
		return "all countries"
	}
	return fmt.Sprintf("%s (%s)", s.Country, s.Mode)
}
