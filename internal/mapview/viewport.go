package mapview

import (
	"math"

	"github.com/borderview/borderview-go/internal/geo"
	"github.com/paulmach/orb"
)

// Terminal cell size in world pixels. Cells are roughly twice as tall as wide.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Zoom limits
const (
	DefaultMinZoom = 0
	DefaultMaxZoom = 10
)

// Viewport maps geographic coordinates to terminal cells. Center is lon/lat,
// Width and Height are in cells.
type Viewport struct {
	Center  orb.Point
	Zoom    int
	Width   int
	Height  int
	MinZoom int
	MaxZoom int
}

// NewViewport creates a viewport centered on center at zoom
func NewViewport(center orb.Point, zoom, minZoom, maxZoom int) Viewport {
	if maxZoom < minZoom {
		minZoom, maxZoom = maxZoom, minZoom
	}
	v := Viewport{MinZoom: minZoom, MaxZoom: maxZoom}
	v.FlyTo(center, zoom)
	return v
}

// ClampZoom limits z to the viewport's zoom range
func (v Viewport) ClampZoom(z int) int {
	if z < v.MinZoom {
		return v.MinZoom
	}
	if z > v.MaxZoom {
		return v.MaxZoom
	}
	return z
}

// FlyTo recenters the viewport at zoom z
func (v *Viewport) FlyTo(center orb.Point, z int) {
	v.Zoom = v.ClampZoom(z)
	v.Center = clampLatLng(center)
}

// ZoomBy changes the zoom by delta keeping the center
func (v *Viewport) ZoomBy(delta int) bool {
	z := v.ClampZoom(v.Zoom + delta)
	if z == v.Zoom {
		return false
	}
	v.Zoom = z
	return true
}

// Pan moves the center by dx, dy cells
func (v *Viewport) Pan(dx, dy int) {
	c := geo.Project(v.Center, v.Zoom)
	c[0] += float64(dx * CellWidth)
	c[1] += float64(dy * CellHeight)
	v.Center = clampLatLng(geo.Unproject(wrapPixel(c, v.Zoom), v.Zoom))
}

// SetSize updates the viewport dimensions in cells
func (v *Viewport) SetSize(width, height int) {
	v.Width = max(width, 0)
	v.Height = max(height, 0)
}

// CenterPixel returns the center in world pixels
func (v Viewport) CenterPixel() orb.Point {
	return geo.Project(v.Center, v.Zoom)
}

// CellToPixel returns the world pixel at the center of cell (col, row)
func (v Viewport) CellToPixel(col, row int) orb.Point {
	c := v.CenterPixel()
	return orb.Point{
		c[0] + (float64(col)+0.5-float64(v.Width)/2)*CellWidth,
		c[1] + (float64(row)+0.5-float64(v.Height)/2)*CellHeight,
	}
}

// PixelToCell returns the cell containing world pixel px
func (v Viewport) PixelToCell(px orb.Point) (int, int) {
	c := v.CenterPixel()
	col := math.Floor((px[0]-c[0])/CellWidth + float64(v.Width)/2)
	row := math.Floor((px[1]-c[1])/CellHeight + float64(v.Height)/2)
	return int(col), int(row)
}

// CellToLatLng returns the geographic point at the center of cell (col, row)
func (v Viewport) CellToLatLng(col, row int) orb.Point {
	return geo.Unproject(v.CellToPixel(col, row), v.Zoom)
}

// LatLngToCell returns the cell containing the geographic point p
func (v Viewport) LatLngToCell(p orb.Point) (int, int) {
	return v.PixelToCell(geo.Project(p, v.Zoom))
}

// PixelBounds returns the visible area in world pixels
func (v Viewport) PixelBounds() orb.Bound {
	c := v.CenterPixel()
	hw := float64(v.Width*CellWidth) / 2
	hh := float64(v.Height*CellHeight) / 2
	return orb.Bound{
		Min: orb.Point{c[0] - hw, c[1] - hh},
		Max: orb.Point{c[0] + hw, c[1] + hh},
	}
}

// Bounds returns the visible geographic area
func (v Viewport) Bounds() orb.Bound {
	pb := v.PixelBounds()
	nw := geo.Unproject(pb.Min, v.Zoom)
	se := geo.Unproject(pb.Max, v.Zoom)
	return orb.Bound{
		Min: orb.Point{nw.Lon(), se.Lat()},
		Max: orb.Point{se.Lon(), nw.Lat()},
	}
}

// FitBounds centers the viewport on b at the highest zoom that shows all of it.
// It reports false when the viewport has no size yet.
func (v *Viewport) FitBounds(b orb.Bound) bool {
	if v.Width <= 0 || v.Height <= 0 {
		return false
	}
	w := float64(v.Width * CellWidth)
	h := float64(v.Height * CellHeight)

	z := v.MinZoom
	for candidate := v.MaxZoom; candidate >= v.MinZoom; candidate-- {
		pb := geo.ProjectBound(b, candidate)
		if pb.Max[0]-pb.Min[0] <= w && pb.Max[1]-pb.Min[1] <= h {
			z = candidate
			break
		}
	}

	pb := geo.ProjectBound(b, z)
	mid := orb.Point{(pb.Min[0] + pb.Max[0]) / 2, (pb.Min[1] + pb.Max[1]) / 2}
	v.Zoom = z
	v.Center = geo.Unproject(mid, z)
	return true
}

// Contains reports whether the geographic point p is visible
func (v Viewport) Contains(p orb.Point) bool {
	col, row := v.LatLngToCell(p)
	return col >= 0 && col < v.Width && row >= 0 && row < v.Height
}

func clampLatLng(p orb.Point) orb.Point {
	lat := math.Max(-geo.MaxLatitude, math.Min(geo.MaxLatitude, p.Lat()))
	lon := p.Lon()
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return orb.Point{lon, lat}
}

func wrapPixel(px orb.Point, z int) orb.Point {
	size := geo.WorldSize(z)
	px[1] = math.Max(0, math.Min(size, px[1]))
	return px
}
