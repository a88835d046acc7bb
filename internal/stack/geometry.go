package stack

// Size is a measured width and height in host units (cells or pixels).
type Size struct {
	Width  int
	Height int
}

// Point is a position in host units.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle. The right and bottom edges are exclusive.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Union returns the smallest rectangle covering both r and o.
// An empty rectangle does not contribute.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
