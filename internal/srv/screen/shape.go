package screen

import (
	"image/color"
)

// Line draws a one pixel wide segment, both ends included. Pixels outside
// the canvas are dropped.
func (c *Canvas) Line(x1, y1, x2, y2 int, col color.Color) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx + dy
	for {
		c.Set(x1, y1, col)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *Canvas) HLine(x1, x2, y int, col color.Color) {
	c.Line(x1, y, x2, y, col)
}

func (c *Canvas) VLine(x, y1, y2 int, col color.Color) {
	c.Line(x, y1, x, y2, col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
