package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/borderview/borderview-go/internal/mapview"
	"github.com/fogleman/gg"
)

// Pixel size of one canvas cell in PNG output. The default gg face is 7x13.
const (
	ImageCellWidth  = 8
	ImageCellHeight = 14
	textBaseline    = 11
)

// box drawing strokes from the cell center: left, right, up, down
var boxStrokes = map[rune][4]bool{
	'─': {true, true, false, false},
	'│': {false, false, true, true},
	'╭': {false, true, false, true},
	'┌': {false, true, false, true},
	'╮': {true, false, false, true},
	'┐': {true, false, false, true},
	'╰': {false, true, true, false},
	'└': {false, true, true, false},
	'╯': {true, false, true, false},
	'┘': {true, false, true, false},
}

// dot radius as a fraction of the cell width
var dotGlyphs = map[rune]float64{
	'·': 0.12,
	'•': 0.25,
	'●': 0.42,
}

// RenderImage paints the canvas onto a gg context, one ImageCellWidth by
// ImageCellHeight block per cell
func RenderImage(c *mapview.Canvas) (*gg.Context, error) {
	if c == nil || c.Width() == 0 || c.Height() == 0 {
		return nil, errors.New("empty canvas")
	}

	dc := gg.NewContext(c.Width()*ImageCellWidth, c.Height()*ImageCellHeight)
	dc.SetLineWidth(1)

	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			cell := c.At(x, y)
			px := float64(x * ImageCellWidth)
			py := float64(y * ImageCellHeight)

			dc.SetColor(cell.BG)
			dc.DrawRectangle(px, py, ImageCellWidth, ImageCellHeight)
			dc.Fill()

			drawGlyph(dc, cell, px, py)
		}
	}
	return dc, nil
}

func drawGlyph(dc *gg.Context, cell mapview.Cell, px, py float64) {
	if cell.Char == ' ' || cell.Char == 0 {
		return
	}
	dc.SetColor(cell.FG)

	cx := px + ImageCellWidth/2
	cy := py + ImageCellHeight/2

	if r, ok := dotGlyphs[cell.Char]; ok {
		dc.DrawCircle(cx, cy, r*ImageCellWidth)
		dc.Fill()
		return
	}
	if s, ok := boxStrokes[cell.Char]; ok {
		// through pixel centers
		lx, ly := cx+0.5, cy+0.5
		if s[0] {
			dc.DrawLine(px, ly, lx, ly)
		}
		if s[1] {
			dc.DrawLine(lx, ly, px+ImageCellWidth, ly)
		}
		if s[2] {
			dc.DrawLine(lx, py, lx, ly)
		}
		if s[3] {
			dc.DrawLine(lx, ly, lx, py+ImageCellHeight)
		}
		dc.Stroke()
		return
	}

	switch {
	case cell.Char == '█':
		dc.DrawRectangle(px, py, ImageCellWidth, ImageCellHeight)
		dc.Fill()
	case cell.Char < 0x80:
		dc.DrawString(string(cell.Char), px, py+textBaseline)
	default:
		// No glyph in the default face; mark the cell.
		dc.DrawRectangle(cx-1.5, cy-1.5, 3, 3)
		dc.Fill()
	}
}

// SaveAsPNG saves the canvas as a PNG image
func SaveAsPNG(c *mapview.Canvas, filename string) error {
	if filename == "" {
		filename = GenerateFilename("borderview_screenshot", "png", "")
	}

	dc, err := RenderImage(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return writeFile(filename, buf.Bytes())
}

// CaptureImage saves the current view as PNG in directory and returns the file name
func CaptureImage(c *mapview.Canvas, directory string) (string, error) {
	filename := GenerateFilename("borderview_screenshot", "png", directory)

	if err := SaveAsPNG(c, filename); err != nil {
		return "", err
	}

	return filename, nil
}
