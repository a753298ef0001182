// Package geom holds the small value types shared by the viewport, the
// workspace tree and the curve geometry.
package geom

import "math"

// Point is a position in some 2D coordinate space. Which space (screen or
// logical) is determined by the API that returns it.
type Point struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" bson:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width" bson:"width"`
	Height float64 `json:"height" yaml:"height" bson:"height"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Min  Point
	Size Size
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.Min.X + r.Size.Width/2, Y: r.Min.Y + r.Size.Height/2}
}

// Max returns the bottom-right corner of r.
func (r Rect) Max() Point {
	return Point{X: r.Min.X + r.Size.Width, Y: r.Min.Y + r.Size.Height}
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	m := r.Max()
	return p.X >= r.Min.X && p.X <= m.X && p.Y >= r.Min.Y && p.Y <= m.Y
}

// Union returns the smallest rectangle containing both r and o.
// The zero Rect is treated as empty.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	rm, om := r.Max(), o.Max()
	minX, minY := math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)
	maxX, maxY := math.Max(rm.X, om.X), math.Max(rm.Y, om.Y)
	return Rect{Min: Point{X: minX, Y: minY}, Size: Size{Width: maxX - minX, Height: maxY - minY}}
}
