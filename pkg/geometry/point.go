// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point3D is a voxel-space position ordered the way volumes are indexed:
// Z is the slice (depth) axis, Y the row, X the column.
type Point3D struct {
	Z float64 `json:"z"`
	Y float64 `json:"y"`
	X float64 `json:"x"`
}

// NewPoint3D creates a new Point3D.
func NewPoint3D(z, y, x float64) Point3D {
	return Point3D{Z: z, Y: y, X: x}
}

// Distance returns the Euclidean distance to another point.
func (p Point3D) Distance(other Point3D) float64 {
	dz := p.Z - other.Z
	dy := p.Y - other.Y
	dx := p.X - other.X
	return math.Sqrt(dz*dz + dy*dy + dx*dx)
}

// Add returns the sum of two points.
func (p Point3D) Add(other Point3D) Point3D {
	return Point3D{Z: p.Z + other.Z, Y: p.Y + other.Y, X: p.X + other.X}
}

// Sub returns the difference of two points.
func (p Point3D) Sub(other Point3D) Point3D {
	return Point3D{Z: p.Z - other.Z, Y: p.Y - other.Y, X: p.X - other.X}
}

// Scale returns the point scaled by a factor.
func (p Point3D) Scale(factor float64) Point3D {
	return Point3D{Z: p.Z * factor, Y: p.Y * factor, X: p.X * factor}
}

// Voxel rounds the point to the nearest voxel index.
func (p Point3D) Voxel() (z, y, x int) {
	return int(math.Round(p.Z)), int(math.Round(p.Y)), int(math.Round(p.X))
}

// PathLength returns the summed distance between consecutive points.
func PathLength(points []Point3D) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i].Distance(points[i-1])
	}
	return total
}

// CumulativeDistance returns the distance travelled along the path up to each point.
// The first entry is always 0.
func CumulativeDistance(points []Point3D) []float64 {
	out := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		out[i] = out[i-1] + points[i].Distance(points[i-1])
	}
	return out
}
