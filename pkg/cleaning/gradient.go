package cleaning

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const minGradientPixels = 3

// EstimateTimeGradient fits the pulse time of the image and border pixels as
// a linear function of their position along the major axis of the image.
// Pixels are weighted by charge. It reports false when fewer than three
// pixels with positive charge are selected or the image has no extent.
func EstimateTimeGradient(g *NeighbourGraph, pixels []Pixel) (TimeGradient, bool) {
	var xs, ys, ts, ws []float64
	for i := range pixels {
		px := &pixels[i]
		if !px.selected() || px.Charge <= 0 {
			continue
		}
		x, y := g.Position(i)
		xs = append(xs, x)
		ys = append(ys, y)
		ts = append(ts, px.Time)
		ws = append(ws, px.Charge)
	}
	if len(ws) < minGradientPixels {
		return TimeGradient{}, false
	}

	mx := stat.Mean(xs, ws)
	my := stat.Mean(ys, ws)
	dxx := make([]float64, len(xs))
	dyy := make([]float64, len(xs))
	dxy := make([]float64, len(xs))
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		dxx[i] = dx * dx
		dyy[i] = dy * dy
		dxy[i] = dx * dy
	}
	vx, vy, cxy := stat.Mean(dxx, ws), stat.Mean(dyy, ws), stat.Mean(dxy, ws)
	if vx+vy <= 0 {
		return TimeGradient{}, false
	}

	phi := 0.5 * math.Atan2(2*cxy, vx-vy)
	grad := TimeGradient{CosPhi: math.Cos(phi), SinPhi: math.Sin(phi)}
	s := make([]float64, len(xs))
	for i := range xs {
		s[i] = grad.Project(xs[i], ys[i])
	}
	if floats.Max(s)-floats.Min(s) < 1.e-12 {
		return TimeGradient{}, false
	}
	grad.Intercept, grad.Gradient = stat.LinearRegression(s, ts, ws, false)
	if math.IsNaN(grad.Gradient) || math.IsNaN(grad.Intercept) {
		return TimeGradient{}, false
	}
	return grad, true
}
