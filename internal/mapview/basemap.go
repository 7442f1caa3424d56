package mapview

import (
	"math"

	"github.com/borderview/borderview-go/internal/style"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
)

// BaseKind selects how a base layer paints the backdrop
type BaseKind string

// Base layer kinds
const (
	KindStreet    BaseKind = "street"
	KindSatellite BaseKind = "satellite"
	KindTerrain   BaseKind = "terrain"
)

// ValidKind reports whether k is a known base layer kind
func ValidKind(k BaseKind) bool {
	switch k {
	case KindStreet, KindSatellite, KindTerrain:
		return true
	}
	return false
}

// BaseLayer is a named backdrop drawn beneath the overlays
type BaseLayer struct {
	Name       string   `json:"name"`
	Kind       BaseKind `json:"kind"`
	Background string   `json:"background"`
	Foreground string   `json:"foreground"`
}

// DefaultBaseLayers returns the built-in Street, Satellite and Terrain layers
func DefaultBaseLayers() []BaseLayer {
	return []BaseLayer{
		{Name: "Street", Kind: KindStreet, Background: "#1B2631", Foreground: "#566573"},
		{Name: "Satellite", Kind: KindSatellite, Background: "#0B1A12", Foreground: "#1E3B2C"},
		{Name: "Terrain", Kind: KindTerrain, Background: "#2E2A1F", Foreground: "#6E6450"},
	}
}

// Terrain band tints
var (
	tropicsTint   = style.MustHex("#3E7B3A")
	temperateTint = style.MustHex("#8A7F4E")
	polarTint     = style.MustHex("#D8E1E8")
)

// Paint returns the glyph and colors of the backdrop cell covering the
// geographic span [nw, se] at zoom z.
func (b BaseLayer) Paint(nw, se orb.Point, z int) (rune, colorful.Color, colorful.Color) {
	bg := style.MustHex(b.Background)
	fg := style.MustHex(b.Foreground)
	mid := orb.Point{(nw.Lon() + se.Lon()) / 2, (nw.Lat() + se.Lat()) / 2}

	switch b.Kind {
	case KindSatellite:
		shade := 0.5 + 0.5*math.Sin(mid.Lon()*0.35)*math.Cos(mid.Lat()*0.45)
		return ' ', fg, bg.BlendRgb(fg, shade*0.6).Clamped()

	case KindTerrain:
		lat := math.Abs(mid.Lat())
		tint := temperateTint
		switch {
		case lat < 23.5:
			tint = tropicsTint
		case lat >= 66.5:
			tint = polarTint
		}
		return ' ', fg, bg.BlendRgb(tint, 0.35).Clamped()

	default:
		step := GraticuleStep(z)
		onLon := crosses(nw.Lon(), se.Lon(), step)
		onLat := crosses(se.Lat(), nw.Lat(), step)
		switch {
		case onLon && onLat:
			return '┼', fg, bg
		case onLon:
			return '│', fg, bg
		case onLat:
			return '─', fg, bg
		}
		return ' ', fg, bg
	}
}

// GraticuleStep returns the spacing in degrees of street graticule lines
func GraticuleStep(z int) float64 {
	switch {
	case z <= 2:
		return 30
	case z <= 4:
		return 10
	case z <= 6:
		return 5
	default:
		return 1
	}
}

// crosses reports whether [lo, hi) contains a multiple of step
func crosses(lo, hi, step float64) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return math.Floor(lo/step) != math.Floor(hi/step) || math.Mod(lo, step) == 0
}
