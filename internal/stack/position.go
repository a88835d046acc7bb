package stack

import "fmt"

// Horizontal is the horizontal anchor of the stack.
type Horizontal int

const (
	Left Horizontal = iota
	Center
	Right
)

// Vertical is the edge the stack grows away from.
type Vertical int

const (
	Top Vertical = iota
	Bottom
)

// Alignment anchors the stack to a corner or edge center.
type Alignment struct {
	Horizontal Horizontal
	Vertical   Vertical
}

// Position is the config spelling of an Alignment, e.g. "bottom-right".
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

var positionAlignments = map[Position]Alignment{
	PositionTopLeft:      {Horizontal: Left, Vertical: Top},
	PositionTopCenter:    {Horizontal: Center, Vertical: Top},
	PositionTopRight:     {Horizontal: Right, Vertical: Top},
	PositionBottomLeft:   {Horizontal: Left, Vertical: Bottom},
	PositionBottomCenter: {Horizontal: Center, Vertical: Bottom},
	PositionBottomRight:  {Horizontal: Right, Vertical: Bottom},
}

// Alignment returns the alignment for p.
func (p Position) Alignment() (Alignment, error) {
	a, ok := positionAlignments[p]
	if !ok {
		return Alignment{}, fmt.Errorf("invalid position %q, must be one of: %v", string(p), ValidPositions())
	}
	return a, nil
}

// Position returns the config spelling of a.
func (a Alignment) Position() Position {
	for p, pa := range positionAlignments {
		if pa == a {
			return p
		}
	}
	return PositionTopRight
}

// IsBottom returns true if the stack is anchored to the bottom edge.
func (a Alignment) IsBottom() bool {
	return a.Vertical == Bottom
}
