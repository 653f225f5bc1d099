// Package draw renders the top-down arena into a terminal using half-block cells.
package draw

// Point is a logical canvas coordinate.
type Point struct {
	X, Y float64
}

// Half-block glyphs. Each terminal cell holds two vertically stacked sub-pixels.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
	BlockEmpty     = ' '
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
