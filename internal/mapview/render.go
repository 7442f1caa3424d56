package mapview

import (
	"fmt"
	"math"
	"strings"

	"github.com/borderview/borderview-go/internal/geo"
	"github.com/borderview/borderview-go/internal/layer"
	"github.com/borderview/borderview-go/internal/theme"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
)

// HitKind identifies what a click on the map landed on
type HitKind int

const (
	HitMap HitKind = iota
	HitZoomIn
	HitZoomOut
	HitBaseLayer
	HitOverlay
	HitLayerControl
	HitPopup
	HitPopupClose
)

// Hit is the result of a control hit test. Index is set for base layer and
// overlay rows.
type Hit struct {
	Kind  HitKind
	Index int
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type renderCache struct {
	key    string
	output string
	gen    int
}

func (c *renderCache) invalidate() {
	c.gen++
	c.key = ""
}

// Render draws the map and returns the styled text. The result is cached until
// the view, styles or controls change.
func (m *Map) Render() string {
	key := m.cacheKey()
	if key == m.cache.key {
		return m.cache.output
	}
	m.cache.output = m.Draw().Render()
	m.cache.key = key
	return m.cache.output
}

func (m *Map) cacheKey() string {
	var sb strings.Builder
	v := m.view
	fmt.Fprintf(&sb, "%d|%.9f,%.9f|%d|%dx%d|%d", m.cache.gen, v.Center[0], v.Center[1], v.Zoom, v.Width, v.Height, m.activeBase)
	for _, ov := range m.overlays {
		var rev uint64
		if ov.Layer != nil {
			rev = ov.Layer.Revision()
		}
		fmt.Fprintf(&sb, "|%t:%d", ov.Visible, rev)
	}
	if m.popup != nil {
		fmt.Fprintf(&sb, "|p%p", m.popup)
	}
	if m.control != nil {
		fmt.Fprintf(&sb, "|c%t", m.control.Expanded)
	}
	fmt.Fprintf(&sb, "|z%t", m.showZoomControl)
	return sb.String()
}

// Draw paints base layer, overlays, controls and popup onto a new canvas
func (m *Map) Draw() *Canvas {
	c := NewCanvas(m.view.Width, m.view.Height)
	m.drawBase(c)
	for _, ov := range m.overlays {
		if ov.Visible && ov.Layer != nil {
			m.drawLayer(c, ov.Layer)
		}
	}
	m.drawZoomControl(c)
	m.drawLayerControl(c)
	m.drawPopup(c)
	return c
}

func (m *Map) drawBase(c *Canvas) {
	base := m.ActiveBaseLayer()
	z := m.view.Zoom
	pb := m.view.PixelBounds()
	for row := 0; row < c.Height(); row++ {
		for col := 0; col < c.Width(); col++ {
			x0 := pb.Min[0] + float64(col*CellWidth)
			y0 := pb.Min[1] + float64(row*CellHeight)
			nw := geo.Unproject(orb.Point{x0, y0}, z)
			se := geo.Unproject(orb.Point{x0 + CellWidth, y0 + CellHeight}, z)
			ch, fg, bg := base.Paint(nw, se, z)
			c.Set(col, row, Cell{Char: ch, FG: fg, BG: bg})
		}
	}
}

func (m *Map) drawLayer(c *Canvas, l *layer.Layer) {
	z := m.view.Zoom
	view := m.view.PixelBounds()

	for _, s := range l.DrawOrder() {
		g, b, ok := s.Projected(z)
		if !ok || !b.Intersects(view) {
			continue
		}
		st := s.Style()

		// Fill: cell centers inside the shape
		c0 := max(0, int(math.Floor((b.Min[0]-view.Min[0])/CellWidth)))
		c1 := min(c.Width()-1, int(math.Floor((b.Max[0]-view.Min[0])/CellWidth)))
		r0 := max(0, int(math.Floor((b.Min[1]-view.Min[1])/CellHeight)))
		r1 := min(c.Height()-1, int(math.Floor((b.Max[1]-view.Min[1])/CellHeight)))
		if st.FillOpacity > 0 {
			for row := r0; row <= r1; row++ {
				for col := c0; col <= c1; col++ {
					if s.Contains(m.view.CellToPixel(col, row), z) {
						cell := c.At(col, row)
						cell.BG = st.Fill(cell.BG)
						c.Set(col, row, cell)
					}
				}
			}
		}

		glyph := st.BorderGlyph()
		if glyph == 0 {
			continue
		}
		border := st.Border(theme.RGB(m.theme.Border))
		m.strokeGeometry(c, g, view, glyph, border)
	}
}

func (m *Map) strokeGeometry(c *Canvas, g orb.Geometry, view orb.Bound, glyph rune, color colorful.Color) {
	switch g := g.(type) {
	case orb.Point:
		col, row := m.view.PixelToCell(g)
		c.SetGlyph(col, row, glyph, color)
	case orb.MultiPoint:
		for _, p := range g {
			m.strokeGeometry(c, p, view, glyph, color)
		}
	case orb.LineString:
		m.strokePath(c, g, view, glyph, color)
	case orb.MultiLineString:
		for _, ls := range g {
			m.strokePath(c, ls, view, glyph, color)
		}
	case orb.Ring:
		m.strokePath(c, orb.LineString(g), view, glyph, color)
	case orb.Polygon:
		for _, r := range g {
			m.strokePath(c, orb.LineString(r), view, glyph, color)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			m.strokeGeometry(c, p, view, glyph, color)
		}
	case orb.Collection:
		for _, sub := range g {
			m.strokeGeometry(c, sub, view, glyph, color)
		}
	}
}

func (m *Map) strokePath(c *Canvas, ls orb.LineString, view orb.Bound, glyph rune, color colorful.Color) {
	maxX := float64(c.Width()) - 1e-9
	maxY := float64(c.Height()) - 1e-9
	for i := 1; i < len(ls); i++ {
		x1 := (ls[i-1][0] - view.Min[0]) / CellWidth
		y1 := (ls[i-1][1] - view.Min[1]) / CellHeight
		x2 := (ls[i][0] - view.Min[0]) / CellWidth
		y2 := (ls[i][1] - view.Min[1]) / CellHeight

		cx1, cy1, cx2, cy2, ok := geo.ClipSegment(x1, y1, x2, y2, 0, 0, maxX, maxY)
		if !ok {
			continue
		}
		cells := geo.BresenhamLine(
			int(math.Floor(cx1)), int(math.Floor(cy1)),
			int(math.Floor(cx2)), int(math.Floor(cy2)),
			c.Width()+c.Height()+1,
		)
		for _, p := range cells {
			c.SetGlyph(p.X, p.Y, glyph, color)
		}
	}
}

func (m *Map) zoomControlRects() (in, out rect, ok bool) {
	if !m.showZoomControl || m.view.Width < 3 || m.view.Height < 2 {
		return rect{}, rect{}, false
	}
	x := m.view.Width - 3
	return rect{x, 0, 3, 1}, rect{x, 1, 3, 1}, true
}

func (m *Map) drawZoomControl(c *Canvas) {
	in, out, ok := m.zoomControlRects()
	if !ok {
		return
	}
	fg := theme.RGB(m.theme.Text)
	bg := theme.RGB(m.theme.Panel)
	inFG, outFG := fg, fg
	if m.view.Zoom >= m.view.MaxZoom {
		inFG = theme.RGB(m.theme.TextDim)
	}
	if m.view.Zoom <= m.view.MinZoom {
		outFG = theme.RGB(m.theme.TextDim)
	}
	c.Text(in.x, in.y, "[+]", inFG, bg, true)
	c.Text(out.x, out.y, "[-]", outFG, bg, true)
}

func (m *Map) layerControlRect() (rect, bool) {
	if m.control == nil {
		return rect{}, false
	}
	top := 0
	if _, _, ok := m.zoomControlRects(); ok {
		top = 3
	}
	if !m.control.Expanded {
		w := len("[Layers]")
		return rect{m.view.Width - w, top, w, 1}, true
	}

	width := len("Layers") + 4
	for _, name := range append(append([]string(nil), m.control.Bases...), m.control.Overlays...) {
		width = max(width, len([]rune(name))+6)
	}
	height := len(m.control.Bases) + len(m.control.Overlays) + 2
	if len(m.control.Overlays) > 0 {
		height++
	}
	return rect{m.view.Width - width, top, width, height}, true
}

func (m *Map) drawLayerControl(c *Canvas) {
	r, ok := m.layerControlRect()
	if !ok {
		return
	}
	text := theme.RGB(m.theme.Text)
	panel := theme.RGB(m.theme.Panel)
	selected := theme.RGB(m.theme.Selected)

	if !m.control.Expanded {
		c.Text(r.x, r.y, "[Layers]", text, panel, true)
		return
	}

	c.Box(r.x, r.y, r.w, r.h, theme.RGB(m.theme.Border), panel)
	c.Text(r.x+2, r.y, "Layers", theme.RGB(m.theme.PrimaryBright), panel, true)

	row := r.y + 1
	active := m.ActiveBaseLayer().Name
	for _, name := range m.control.Bases {
		mark, fg := "○ ", text
		if name == active {
			mark, fg = "◉ ", selected
		}
		c.Text(r.x+2, row, mark+name, fg, panel, false)
		row++
	}
	if len(m.control.Overlays) > 0 {
		for x := r.x + 1; x < r.x+r.w-1; x++ {
			c.Set(x, row, Cell{Char: '─', FG: theme.RGB(m.theme.BorderDim), BG: panel})
		}
		row++
	}
	for _, name := range m.control.Overlays {
		mark := "☐ "
		if ov := m.overlayByName(name); ov != nil && ov.Visible {
			mark = "☑ "
		}
		c.Text(r.x+2, row, mark+name, text, panel, false)
		row++
	}
}

func (m *Map) overlayByName(name string) *Overlay {
	for _, ov := range m.overlays {
		if ov.Name == name {
			return ov
		}
	}
	return nil
}

func (m *Map) popupRect() (rect, bool) {
	if m.popup == nil || m.view.Width == 0 || m.view.Height == 0 {
		return rect{}, false
	}
	width := 0
	for _, line := range m.popup.Lines {
		width = max(width, len([]rune(line)))
	}
	width = min(width+4, m.view.Width)
	height := min(len(m.popup.Lines)+2, m.view.Height)

	col, row := m.view.LatLngToCell(m.popup.At)
	x := col - width/2
	y := row - height
	if y < 0 {
		y = row + 1
	}
	x = max(0, min(x, m.view.Width-width))
	y = max(0, min(y, m.view.Height-height))
	return rect{x, y, width, height}, true
}

func (m *Map) drawPopup(c *Canvas) {
	r, ok := m.popupRect()
	if !ok {
		return
	}
	panel := theme.RGB(m.theme.Panel)
	c.Box(r.x, r.y, r.w, r.h, theme.RGB(m.theme.Border), panel)
	c.Set(r.x+r.w-2, r.y, Cell{Char: '×', FG: theme.RGB(m.theme.Error), BG: panel, Bold: true})

	for i, line := range m.popup.Lines {
		if i+1 >= r.h-1 {
			break
		}
		runes := []rune(line)
		if len(runes) > r.w-4 {
			runes = runes[:max(0, r.w-4)]
		}
		fg := theme.RGB(m.theme.Text)
		bold := i == 0
		if bold {
			fg = theme.RGB(m.theme.PrimaryBright)
		}
		c.Text(r.x+2, r.y+1+i, string(runes), fg, panel, bold)
	}

	if col, row := m.view.LatLngToCell(m.popup.At); c.In(col, row) {
		c.SetGlyph(col, row, '✚', theme.RGB(m.theme.Selected))
	}
}

// HitTest reports which control, if any, covers cell (col, row). The popup is
// tested first, then the zoom control, then the layer control.
func (m *Map) HitTest(col, row int) Hit {
	if r, ok := m.popupRect(); ok && r.contains(col, row) {
		if row == r.y && col == r.x+r.w-2 {
			return Hit{Kind: HitPopupClose}
		}
		return Hit{Kind: HitPopup}
	}

	if in, out, ok := m.zoomControlRects(); ok {
		if in.contains(col, row) {
			return Hit{Kind: HitZoomIn}
		}
		if out.contains(col, row) {
			return Hit{Kind: HitZoomOut}
		}
	}

	if r, ok := m.layerControlRect(); ok && r.contains(col, row) {
		if !m.control.Expanded {
			return Hit{Kind: HitLayerControl}
		}
		i := row - r.y - 1
		if i >= 0 && i < len(m.control.Bases) {
			return Hit{Kind: HitBaseLayer, Index: i}
		}
		i -= len(m.control.Bases) + 1
		if i >= 0 && i < len(m.control.Overlays) {
			if idx := m.overlayIndex(m.control.Overlays[i]); idx >= 0 {
				return Hit{Kind: HitOverlay, Index: idx}
			}
		}
		return Hit{Kind: HitLayerControl}
	}

	return Hit{Kind: HitMap}
}

func (m *Map) overlayIndex(name string) int {
	for i, ov := range m.overlays {
		if ov.Name == name {
			return i
		}
	}
	return -1
}

// SelectBaseLayerByName selects the base layer with the given name
func (m *Map) SelectBaseLayerByName(name string) bool {
	for i, b := range m.baseLayers {
		if b.Name == name {
			return m.SetBaseLayer(i)
		}
	}
	return false
}
