package model

import "math"

// Point is a position on the marketplace's flat 2-D plane.  Distances
// between points are straight-line Euclidean; there is no routing.
//
// Fields:
//  X – horizontal component.
//  Y – vertical component.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}
