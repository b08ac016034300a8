package cleaning

// twoLevel is the image/border tailcut. Core pixels above the image threshold
// become image pixels; their neighbours above the border threshold become
// border pixels.
func (c *Cleaner) twoLevel(pixels []Pixel) Summary {
	p := c.params
	resetPixels(pixels)

	for i := range pixels {
		px := &pixels[i]
		if px.Dead {
			continue
		}
		if p.above(px, p.ImageThreshold) {
			px.Image = true
		}
		if p.above(px, p.BrightThreshold) {
			px.BrightNonImage = true
		}
	}
	for i := range pixels {
		if !pixels[i].Image {
			continue
		}
		for _, k := range c.graph.Neighbours(i) {
			nb := &pixels[k]
			if !nb.Dead && !nb.Image && p.above(nb, p.BorderThreshold) {
				nb.Border = true
			}
		}
	}

	RemoveIsolatedPixels(c.graph, pixels)
	clearBright(pixels)
	return c.summarise(pixels)
}

// RemoveIsolatedPixels demotes image pixels without an image or border
// neighbour. A dead neighbour counts as support when one of its own
// neighbours is an image or border pixel. Support is judged on the state
// before the pass, so the result does not depend on channel order. Demoted
// pixels are marked rejected. It returns the number of demoted pixels and
// never adds an image pixel.
func RemoveIsolatedPixels(g *NeighbourGraph, pixels []Pixel) int {
	var isolated []int
	for i := range pixels {
		if pixels[i].Image && !supported(g, pixels, i) {
			isolated = append(isolated, i)
		}
	}
	for _, i := range isolated {
		pixels[i].Image = false
		pixels[i].ClusterID = Rejected
	}
	return len(isolated)
}

func supported(g *NeighbourGraph, pixels []Pixel, i int) bool {
	for _, k := range g.Neighbours(i) {
		if pixels[k].selected() {
			return true
		}
		if !pixels[k].Dead {
			continue
		}
		for _, m := range g.Neighbours(k) {
			if m != i && pixels[m].selected() {
				return true
			}
		}
	}
	return false
}

// FillBorderNeighbours marks every image or border pixel and all of its live
// neighbours.
func FillBorderNeighbours(g *NeighbourGraph, pixels []Pixel) []bool {
	mask := make([]bool, len(pixels))
	for i := range pixels {
		if !pixels[i].selected() {
			continue
		}
		mask[i] = true
		for _, k := range g.Neighbours(i) {
			if !pixels[k].Dead {
				mask[k] = true
			}
		}
	}
	return mask
}
