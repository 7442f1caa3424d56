package geo

// Cell is a terminal cell coordinate (column, row)
type Cell struct {
	X, Y int
}

// BresenhamLine generates the cells along a line using Bresenham's algorithm.
// At most maxPoints cells are returned; maxPoints <= 0 means no limit.
func BresenhamLine(x1, y1, x2, y2, maxPoints int) []Cell {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx - dy

	points := make([]Cell, 0, max(dx, dy)+1)
	for maxPoints <= 0 || len(points) < maxPoints {
		points = append(points, Cell{X: x1, Y: y1})

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}

	return points
}

// ClipSegment clips the segment (x1,y1)-(x2,y2) to the rectangle
// [minX,maxX]x[minY,maxY] using Liang-Barsky. ok is false when the segment lies
// entirely outside.
func ClipSegment(x1, y1, x2, y2, minX, minY, maxX, maxY float64) (cx1, cy1, cx2, cy2 float64, ok bool) {
	t0, t1 := 0.0, 1.0
	dx := x2 - x1
	dy := y2 - y1

	edges := [4][2]float64{
		{-dx, x1 - minX},
		{dx, maxX - x1},
		{-dy, y1 - minY},
		{dy, maxY - y1},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}

	return x1 + t0*dx, y1 + t0*dy, x1 + t1*dx, y1 + t1*dy, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
