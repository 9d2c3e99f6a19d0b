package tracks

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"atlas-segment/pkg/geometry"
)

// DefaultSplinePoints is the number of samples taken along a fitted spline.
const DefaultSplinePoints = 1000

// ErrTooFewPoints is returned when a track cannot define a curve.
var ErrTooFewPoints = errors.New("track needs at least two distinct points")

// Spline is a smooth curve sampled through a track's points.
type Spline struct {
	Name   string
	Points []geometry.Point3D
}

// Fit samples n points along a parametric Akima spline through points,
// parameterised by cumulative distance. Consecutive duplicate points are
// ignored. The first and last samples coincide with the track ends.
func Fit(points []geometry.Point3D, n int) ([]geometry.Point3D, error) {
	pts := dedupe(points)
	if len(pts) < 2 {
		return nil, ErrTooFewPoints
	}
	if n < 2 {
		n = DefaultSplinePoints
	}

	t := geometry.CumulativeDistance(pts)
	samples := floats.Span(make([]float64, n), 0, t[len(t)-1])
	if len(pts) == 2 {
		return linear(pts[0], pts[1], samples, t[1]), nil
	}

	zs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	xs := make([]float64, len(pts))
	for i, p := range pts {
		zs[i], ys[i], xs[i] = p.Z, p.Y, p.X
	}

	var fz, fy, fx interp.AkimaSpline
	for _, fit := range []struct {
		s *interp.AkimaSpline
		v []float64
	}{{&fz, zs}, {&fy, ys}, {&fx, xs}} {
		if err := fit.s.Fit(t, fit.v); err != nil {
			return nil, err
		}
	}

	out := make([]geometry.Point3D, n)
	for i, s := range samples {
		out[i] = geometry.NewPoint3D(fz.Predict(s), fy.Predict(s), fx.Predict(s))
	}
	return out, nil
}

// FitTrack fits a spline named after the track.
func FitTrack(t Track, n int) (Spline, error) {
	pts, err := Fit(t.Points, n)
	if err != nil {
		return Spline{}, err
	}
	return Spline{Name: t.Name, Points: pts}, nil
}

func linear(a, b geometry.Point3D, samples []float64, length float64) []geometry.Point3D {
	step := b.Sub(a)
	out := make([]geometry.Point3D, len(samples))
	for i, s := range samples {
		out[i] = a.Add(step.Scale(s / length))
	}
	return out
}

func dedupe(points []geometry.Point3D) []geometry.Point3D {
	out := make([]geometry.Point3D, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
