// Package grid converts between row-major cell indices and board
// coordinates and maps off-board coordinates back onto the board.
package grid

// GetGridCoords returns the column and row of a row-major index.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Index is the inverse of GetGridCoords.
func Index(x, y, cols int) int {
	return y*cols + x
}

// Wrap maps i onto [0, size) toroidally, for any sign of i.
func Wrap(i, size int) int {
	m := i % size
	if m < 0 {
		m += size
	}
	return m
}

// Clamp maps i onto [0, size) by moving it to the nearest edge.
func Clamp(i, size int) int {
	return max(0, min(i, size-1))
}

// InBounds reports whether (x, y) lies on a cols x rows board.
func InBounds(x, y, cols, rows int) bool {
	return x >= 0 && x < cols && y >= 0 && y < rows
}
