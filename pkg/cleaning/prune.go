package cleaning

// Prune rejects clusters with fewer than minNumPixel pixels and single core
// pixels that have no image neighbour and fewer than two supporting pixels,
// together with the border pixels that only they supported. A supporting
// pixel is a border neighbour or a dead neighbour next to another image or
// border pixel. Pruning repeats until nothing changes, so a second call is a
// no-op. It reports whether any pixel was rejected.
func Prune(g *NeighbourGraph, pixels []Pixel, minNumPixel int) bool {
	changed := false
	for {
		n := pruneSmall(pixels, minNumPixel) + pruneIsolatedCores(g, pixels)
		if n == 0 {
			return changed
		}
		changed = true
	}
}

func pruneSmall(pixels []Pixel, minNumPixel int) int {
	size := map[int]int{}
	for i := range pixels {
		if pixels[i].selected() && pixels[i].ClusterID > 0 {
			size[pixels[i].ClusterID]++
		}
	}
	n := 0
	for i := range pixels {
		px := &pixels[i]
		if px.selected() && px.ClusterID > 0 && size[px.ClusterID] < minNumPixel {
			px.reject()
			n++
		}
	}
	return n
}

func pruneIsolatedCores(g *NeighbourGraph, pixels []Pixel) int {
	n := 0
	for i := range pixels {
		if !pixels[i].Image || !isolatedCore(g, pixels, i) {
			continue
		}
		pixels[i].reject()
		pixels[i].BrightNonImage = true
		n++
		for _, k := range g.Neighbours(i) {
			if !pixels[k].Border || touchesImage(g, pixels, k) {
				continue
			}
			pixels[k].reject()
			n++
			for _, m := range g.Neighbours(k) {
				if pixels[m].Border && !touchesImage(g, pixels, m) {
					pixels[m].reject()
					n++
				}
			}
		}
	}
	return n
}

// isolatedCore reports whether image pixel i has no image neighbour and
// fewer than two supporting neighbours.
func isolatedCore(g *NeighbourGraph, pixels []Pixel, i int) bool {
	support := 0
	for _, k := range g.Neighbours(i) {
		nb := &pixels[k]
		switch {
		case nb.Image:
			return false
		case nb.Border:
			support++
		case nb.Dead:
			for _, m := range g.Neighbours(k) {
				if m != i && pixels[m].selected() {
					support++
					break
				}
			}
		}
	}
	return support < 2
}

func touchesImage(g *NeighbourGraph, pixels []Pixel, i int) bool {
	for _, k := range g.Neighbours(i) {
		if pixels[k].Image {
			return true
		}
	}
	return false
}
