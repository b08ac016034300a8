package cleaning

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// minCorrelationImage is the number of image and border pixels above which
// the mean image pulse is trusted.
const minCorrelationImage = 3

// CleanTraceCorrelation adds live neighbours of the image as border pixels
// when their trace correlates with the mean trace of the image and their
// signal to noise ratio passes CorrelationSNThreshold. Only images with more
// than three and fewer than MaxImagePixels pixels are extended. It returns
// the number of added pixels.
func CleanTraceCorrelation(g *NeighbourGraph, pixels []Pixel, p Params) int {
	var image []int
	samples := 0
	for i := range pixels {
		if pixels[i].selected() {
			image = append(image, i)
			if len(pixels[i].Trace) > samples {
				samples = len(pixels[i].Trace)
			}
		}
	}
	if len(image) <= minCorrelationImage || len(image) >= p.MaxImagePixels || samples < 2 {
		return 0
	}

	mean := make([]float64, samples)
	for _, i := range image {
		for j, v := range pixels[i].Trace {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(image))
	}

	var candidates []int
	seen := map[int]bool{}
	for _, i := range image {
		for _, k := range g.Neighbours(i) {
			if seen[k] || pixels[k].selected() || pixels[k].Dead {
				continue
			}
			seen[k] = true
			candidates = append(candidates, k)
		}
	}

	added := 0
	for _, k := range candidates {
		px := &pixels[k]
		if px.PedVar <= 0 || len(px.Trace) != samples {
			continue
		}
		corr := stat.Correlation(mean, px.Trace, nil)
		if math.IsNaN(corr) {
			corr = 0
		}
		if corr > p.CorrelationThreshold && px.Charge/px.PedVar > p.CorrelationSNThreshold {
			px.Border = true
			px.Correlation = corr
			added++
		}
	}
	return added
}
