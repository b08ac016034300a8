package cleaning

import (
	"math"
)

// timeCluster groups core pixels into clusters that are coincident in time,
// rejects clusters out of time with the main cluster, grows the survivors by
// border pixels and prunes small or unsupported clusters.
func (c *Cleaner) timeCluster(pixels []Pixel, grad TimeGradient) Summary {
	p := c.params
	g := c.graph
	cutPixel, cutCluster := p.timeCuts(grad)
	resetPixels(pixels)

	// seeding
	for i := range pixels {
		px := &pixels[i]
		if px.Dead {
			continue
		}
		px.Image = p.above(px, p.ImageThreshold)
		px.BrightNonImage = p.above(px, p.BrightThreshold)
	}

	// cluster formation
	uf := newUnionFind(len(pixels))
	for i := range pixels {
		if !pixels[i].Image {
			continue
		}
		for _, k := range g.Neighbours(i) {
			if pixels[k].Image && math.Abs(pixels[i].Time-pixels[k].Time) < cutPixel {
				uf.union(i, k)
			}
		}
	}
	formed := labelRoots(pixels, uf, func(px *Pixel) bool { return px.Image })

	// statistics, main cluster and cluster time rejection
	clusters := clusterStats(g, pixels, func(px *Pixel) bool { return px.Image })
	rejectEmpty(pixels, clusters)
	main := mainCluster(clusters)
	if ref, ok := findCluster(clusters, main); ok {
		for _, cl := range clusters {
			if cl.ID == main || !cl.valid() {
				continue
			}
			if clusterOutOfTime(cl, ref, grad, cutCluster) {
				for i := range pixels {
					if pixels[i].Image && pixels[i].ClusterID == cl.ID {
						pixels[i].reject()
					}
				}
			}
		}
	}

	// growth
	if main != Unassigned {
		for loop := 0; loop < p.LoopMax; loop++ {
			if c.grow(pixels, cutPixel) == 0 {
				break
			}
		}
	}

	mergeClusters(g, pixels)

	for i := range pixels {
		if pixels[i].ClusterID > 0 && !pixels[i].selected() {
			pixels[i].ClusterID = Rejected
		}
	}
	clusters = clusterStats(g, pixels, (*Pixel).selected)
	rejectEmpty(pixels, clusters)
	uncleaned := countClusters(pixels)

	Prune(g, pixels, p.MinNumPixel)

	clusters = clusterStats(g, pixels, (*Pixel).selected)
	clearBright(pixels)
	return Summary{
		Clusters:           clusters,
		MainCluster:        mainCluster(clusters),
		NClustersFormed:    formed,
		NClustersUncleaned: uncleaned,
		NClustersCleaned:   countClusters(pixels),
		BorderNeighbour:    FillBorderNeighbours(g, pixels),
	}
}

// labelRoots numbers the sets of the pixels accepted by member from 1 in
// order of their lowest channel and returns the number of labels.
func labelRoots(pixels []Pixel, uf *unionFind, member func(*Pixel) bool) int {
	labels := map[int]int{}
	for i := range pixels {
		if !member(&pixels[i]) {
			continue
		}
		root := uf.find(i)
		id, ok := labels[root]
		if !ok {
			id = len(labels) + 1
			labels[root] = id
		}
		pixels[i].ClusterID = id
	}
	return len(labels)
}

func rejectEmpty(pixels []Pixel, clusters []Cluster) {
	for _, cl := range clusters {
		if cl.valid() {
			continue
		}
		for i := range pixels {
			if pixels[i].ClusterID == cl.ID {
				pixels[i].reject()
			}
		}
	}
}

// clusterOutOfTime compares the time offset of cl from the main cluster with
// the offset predicted by the gradient at the projected centroids.
func clusterOutOfTime(cl Cluster, main Cluster, grad TimeGradient, cut float64) bool {
	dt := cl.Time - main.Time
	if grad.Known() {
		dt -= grad.Gradient * (grad.Project(cl.X, cl.Y) - grad.Project(main.X, main.Y))
	}
	return math.Abs(dt) > cut
}

type proposal struct {
	channel int
	cluster int
}

// grow adds one layer of border pixels around image and border pixels. All
// proposals are collected before any is applied; a channel proposed by
// several pixels joins the cluster of the lowest proposing channel.
func (c *Cleaner) grow(pixels []Pixel, cutPixel float64) int {
	p := c.params
	var proposals []proposal
	seen := map[int]bool{}
	for i := range pixels {
		px := &pixels[i]
		if !px.selected() || px.ClusterID <= 0 {
			continue
		}
		for _, k := range c.graph.Neighbours(i) {
			nb := &pixels[k]
			if seen[k] || nb.Dead || nb.selected() || !p.above(nb, p.BorderThreshold) {
				continue
			}
			if math.Abs(px.Time-nb.Time) < cutPixel {
				seen[k] = true
				proposals = append(proposals, proposal{channel: k, cluster: px.ClusterID})
			}
		}
	}
	for _, pr := range proposals {
		pixels[pr.channel].Border = true
		pixels[pr.channel].ClusterID = pr.cluster
	}
	return len(proposals)
}

// mergeClusters gives every set of touching image and border pixels the
// lowest cluster id found among them.
func mergeClusters(g *NeighbourGraph, pixels []Pixel) {
	uf := newUnionFind(len(pixels))
	for i := range pixels {
		if !pixels[i].selected() || pixels[i].ClusterID <= 0 {
			continue
		}
		for _, k := range g.Neighbours(i) {
			if pixels[k].selected() && pixels[k].ClusterID > 0 {
				uf.union(i, k)
			}
		}
	}
	lowest := map[int]int{}
	for i := range pixels {
		if !pixels[i].selected() || pixels[i].ClusterID <= 0 {
			continue
		}
		root := uf.find(i)
		if id, ok := lowest[root]; !ok || pixels[i].ClusterID < id {
			lowest[root] = pixels[i].ClusterID
		}
	}
	for i := range pixels {
		if pixels[i].selected() && pixels[i].ClusterID > 0 {
			pixels[i].ClusterID = lowest[uf.find(i)]
		}
	}
}
