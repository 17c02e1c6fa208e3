// Package point implements the core 5-axis step-count tuple shared by
// the motion dispatcher and the planner collaborator.
package point

// Point is a 5-tuple of signed 32-bit step counts for the X, Y, Z, A
// and B axes. A and B are the two extruder filament axes.
type Point struct {
	X, Y, Z, A, B int32
}

// Axis indexes into a Point's fields in wire and pot-value order.
type Axis int

const (
	X Axis = iota
	Y
	Z
	A
	B

	NumAxes
)

// Get returns the step count of axis i.
func (p Point) Get(i Axis) int32 {
	switch i {
	case X:
		return p.X
	case Y:
		return p.Y
	case Z:
		return p.Z
	case A:
		return p.A
	case B:
		return p.B
	}
	panic("point: invalid axis")
}

// Set returns p with axis i set to v.
func (p Point) Set(i Axis, v int32) Point {
	switch i {
	case X:
		p.X = v
	case Y:
		p.Y = v
	case Z:
		p.Z = v
	case A:
		p.A = v
	case B:
		p.B = v
	default:
		panic("point: invalid axis")
	}
	return p
}

// Sub returns p-q, component-wise.
func (p Point) Sub(q Point) Point {
	return Point{
		X: p.X - q.X,
		Y: p.Y - q.Y,
		Z: p.Z - q.Z,
		A: p.A - q.A,
		B: p.B - q.B,
	}
}
