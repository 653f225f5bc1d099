package draw

import (
	"io"
	"math"
	"slices"
	"strconv"
)

// maxChunkSize keeps single writes below a typical MTU so SSH sessions stay smooth.
const maxChunkSize = 1400

// Canvas is a sub-pixel buffer with twice the terminal's vertical resolution.
// Objects draw in logical coordinates which are scaled to the terminal size.
//
// Render only emits cells that changed since the previous frame. Call
// ForceRedraw after anything else wrote to the terminal.
type Canvas struct {
	cols, rows int
	pixels     []bool // [y*cols + x], y in sub-pixels
	prev       []rune // glyph shown per cell last frame, 0 = unknown
	logicalW   float64
	logicalH   float64
	scaleX     float64
	scaleY     float64
	offsetCol  int
	offsetRow  int

	out       []byte
	points    []Point
	scaled    []Point
	crossings []float64
}

// NewScaledCanvas creates a canvas of cols x rows terminal cells that maps the
// logical area logicalW x logicalH (height in sub-pixels) onto it.
func NewScaledCanvas(cols, rows int, logicalW, logicalH float64) *Canvas {
	c := &Canvas{logicalW: logicalW, logicalH: logicalH}
	c.Resize(cols, rows)
	return c
}

// Resize adapts the canvas to new terminal dimensions, keeping its logical size.
func (c *Canvas) Resize(cols, rows int) {
	cols = max(cols, 1)
	rows = max(rows, 1)
	if cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		c.pixels = make([]bool, cols*rows*2)
		c.prev = make([]rune, cols*rows)
	}
	c.scaleX = float64(cols) / c.logicalW
	c.scaleY = float64(rows*2) / c.logicalH
}

// SetOffset moves the canvas origin to the given 0-based terminal column and row.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.offsetCol, c.offsetRow = col, row
		c.ForceRedraw()
	}
}

// OffsetCol returns the 0-based terminal column of the canvas origin.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the 0-based terminal row of the canvas origin.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// MarkTextDirty forgets what the canvas last drew under a run of text cells,
// so the next Render repaints them. col and row are 1-based canvas cells.
func (c *Canvas) MarkTextDirty(col, row, width int) {
	y := row - 1
	if y < 0 || y >= c.rows {
		return
	}
	for x := max(col-1, 0); x < min(col-1+width, c.cols); x++ {
		c.prev[y*c.cols+x] = 0
	}
}

// ForceRedraw makes the next Render repaint every cell.
func (c *Canvas) ForceRedraw() {
	clear(c.prev)
}

// Clear unsets all sub-pixels. The previous frame is kept for diffing.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.rows*2 {
		c.pixels[y*c.cols+x] = true
	}
}

func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Round(x * c.scaleX)), int(math.Round(y * c.scaleY))
}

// Pixel reports whether the sub-pixel at terminal coordinates (x, y) is set.
func (c *Canvas) Pixel(x, y int) bool {
	if x < 0 || x >= c.cols || y < 0 || y >= c.rows*2 {
		return false
	}
	return c.pixels[y*c.cols+x]
}

// SetFloat sets the sub-pixel under a logical coordinate.
func (c *Canvas) SetFloat(x, y float64) {
	c.setPixel(c.toPixel(x, y))
}

// DrawLine draws a Bresenham line between two logical points.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1, y1 := c.toPixel(p1.X, p1.Y)
	x2, y2 := c.toPixel(p2.X, p2.Y)

	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	e := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x1 += sx
		}
		if e2 < dx {
			e += dx
			y1 += sy
		}
	}
}

// DrawPolygon outlines a closed polygon and optionally fills it.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	n := len(points)
	if n < 3 {
		return
	}
	if filled {
		c.fillPolygon(points)
	}
	for i := range n {
		c.DrawLine(points[i], points[(i+1)%n])
	}
}

// DrawCircle draws a circle of logical radius r centered on (cx, cy).
// The outline is approximated by a polygon sized to the on-screen radius.
func (c *Canvas) DrawCircle(cx, cy, r float64, filled bool) {
	if r <= 0 {
		c.SetFloat(cx, cy)
		return
	}
	onScreen := r * max(c.scaleX, c.scaleY)
	segments := min(max(int(onScreen*2), 8), 48)

	points := c.BorrowPoints(segments)
	for i := range points {
		a := float64(i) * 2 * math.Pi / float64(segments)
		points[i] = Point{X: cx + math.Cos(a)*r, Y: cy + math.Sin(a)*r}
	}
	c.DrawPolygon(points, filled)
}

// fillPolygon runs a scanline fill in pixel space.
func (c *Canvas) fillPolygon(points []Point) {
	if cap(c.scaled) < len(points) {
		c.scaled = make([]Point, len(points))
	}
	scaled := c.scaled[:len(points)]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
		minY = min(minY, scaled[i].Y)
		maxY = max(maxY, scaled[i].Y)
	}

	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		scanY := float64(y) + 0.5
		xs := c.crossings[:0]
		for i := range scaled {
			a, b := scaled[i], scaled[(i+1)%len(scaled)]
			if (a.Y <= scanY) != (b.Y <= scanY) {
				t := (scanY - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i])); x <= int(math.Floor(xs[i+1])); x++ {
				c.setPixel(x, y)
			}
		}
		c.crossings = xs
	}
}

// glyph returns the half-block rune for a terminal cell.
func (c *Canvas) glyph(col, row int) rune {
	top := c.pixels[(row*2)*c.cols+col]
	bottom := c.pixels[(row*2+1)*c.cols+col]
	switch {
	case top && bottom:
		return BlockFull
	case top:
		return BlockUpperHalf
	case bottom:
		return BlockLowerHalf
	default:
		return BlockEmpty
	}
}

// Render writes the cells that differ from the last rendered frame.
func (c *Canvas) Render(w io.Writer) error {
	c.out = c.out[:0]
	for row := range c.rows {
		for col := range c.cols {
			ch := c.glyph(col, row)
			i := row*c.cols + col
			if c.prev[i] == ch {
				continue
			}
			c.prev[i] = ch
			c.out = append(c.out, "\033["...)
			c.out = strconv.AppendInt(c.out, int64(row+1+c.offsetRow), 10)
			c.out = append(c.out, ';')
			c.out = strconv.AppendInt(c.out, int64(col+1+c.offsetCol), 10)
			c.out = append(c.out, 'H')
			c.out = append(c.out, string(ch)...)
		}
	}
	return writeChunked(w, c.out)
}

func writeChunked(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// LogicalWidth returns the logical width objects draw into.
func (c *Canvas) LogicalWidth() float64 { return c.logicalW }

// LogicalHeight returns the logical height in sub-pixels.
func (c *Canvas) LogicalHeight() float64 { return c.logicalH }

// TerminalWidth returns the canvas width in terminal columns.
func (c *Canvas) TerminalWidth() int { return c.cols }

// TerminalHeight returns the canvas height in terminal rows.
func (c *Canvas) TerminalHeight() int { return c.rows }

// LogicalToTerminal converts a logical coordinate to a 1-based terminal cell
// relative to the canvas origin. Used to place text next to drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}

// BorrowPoints returns a scratch slice of n points, valid until the next call.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.points) < n {
		c.points = make([]Point, n)
	}
	return c.points[:n]
}
