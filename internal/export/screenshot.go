// Package export writes the current map view and the rendered boundaries to files
package export

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/borderview/borderview-go/internal/mapview"
)

// GenerateFilename generates a filename with timestamp
func GenerateFilename(prefix, extension, directory string) string {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", prefix, timestamp, extension)
	if directory != "" {
		return filepath.Join(directory, filename)
	}
	return filename
}

// SaveAsText saves the canvas characters without colors
func SaveAsText(c *mapview.Canvas, filename string) error {
	if filename == "" {
		filename = GenerateFilename("borderview_screenshot", "txt", "")
	}
	return writeFile(filename, []byte(c.Plain()))
}

// SaveAsHTML saves the canvas as a styled HTML page
func SaveAsHTML(c *mapview.Canvas, title, filename string) error {
	if filename == "" {
		filename = GenerateFilename("borderview_screenshot", "html", "")
	}
	return writeFile(filename, []byte(CanvasToHTML(c, title, time.Now())))
}

// CaptureScreen saves the current view as HTML in directory and returns the file name
func CaptureScreen(c *mapview.Canvas, title, directory string) (string, error) {
	filename := GenerateFilename("borderview_screenshot", "html", directory)

	if err := SaveAsHTML(c, title, filename); err != nil {
		return "", err
	}

	return filename, nil
}

// CanvasToHTML converts a canvas to a standalone HTML page. Each row is split
// into spans wherever the cell style changes.
func CanvasToHTML(c *mapview.Canvas, title string, at time.Time) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString(`</title>
    <style>
        body {
            background-color: #0a0a0a;
            color: #c0c0c0;
            font-family: 'Cascadia Code', 'Fira Code', 'Consolas', 'Monaco', 'Liberation Mono', monospace;
            font-size: 14px;
            line-height: 1.2;
            padding: 20px;
            margin: 0;
        }
        pre {
            margin: 0;
            white-space: pre;
            overflow-x: auto;
        }
        .bold { font-weight: bold; }
        .timestamp {
            color: #666;
            font-size: 12px;
            margin-bottom: 10px;
        }
    </style>
</head>
<body>
    <div class="timestamp">Captured: `)
	sb.WriteString(at.Format("2006-01-02 15:04:05"))
	sb.WriteString(`</div>
    <pre>`)

	for y := 0; y < c.Height(); y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		writeRow(&sb, c, y)
	}

	sb.WriteString(`</pre>
</body>
</html>`)

	return sb.String()
}

func writeRow(sb *strings.Builder, c *mapview.Canvas, y int) {
	start := 0
	for x := 1; x <= c.Width(); x++ {
		if x < c.Width() && sameStyle(c.At(x, y), c.At(start, y)) {
			continue
		}
		var text strings.Builder
		for i := start; i < x; i++ {
			text.WriteRune(c.At(i, y).Char)
		}
		sb.WriteString(buildSpan(text.String(), c.At(start, y)))
		start = x
	}
}

func sameStyle(a, b mapview.Cell) bool {
	return a.FG == b.FG && a.BG == b.BG && a.Bold == b.Bold
}

// buildSpan builds an HTML span with the cell colors
func buildSpan(text string, cell mapview.Cell) string {
	var sb strings.Builder
	sb.WriteString("<span")
	if cell.Bold {
		sb.WriteString(` class="bold"`)
	}
	sb.WriteString(` style="color:`)
	sb.WriteString(cell.FG.Hex())
	sb.WriteString(`;background-color:`)
	sb.WriteString(cell.BG.Hex())
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(text))
	sb.WriteString("</span>")
	return sb.String()
}

func writeFile(filename string, data []byte) error {
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
