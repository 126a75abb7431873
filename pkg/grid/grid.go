// Package grid converts between flat buffer indices and 2D coordinates.
package grid

// GetGridCoords converts a flat index into (x, y) coordinates on a grid with
// the given number of columns.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Index converts (x, y) coordinates back into a flat index.
func Index(x, y, cols int) int {
	return y*cols + x
}
