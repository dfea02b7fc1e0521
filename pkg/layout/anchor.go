package layout

import "github.com/matzehuels/slicetopo/pkg/topology"

// DefaultAnchorOffset keeps a new batch clear of the rightmost visible node.
// It exceeds [Radius] and half a default mesh, so batches do not overlap.
const DefaultAnchorOffset = 400.0

// Viewport is the visible part of the canvas.
type Viewport struct {
	Origin topology.Position `json:"origin"`
	Width  float64           `json:"width"`
	Height float64           `json:"height"`
}

// Contains reports whether p lies inside the viewport, edges included.
func (v Viewport) Contains(p topology.Position) bool {
	return p.X >= v.Origin.X && p.X <= v.Origin.X+v.Width &&
		p.Y >= v.Origin.Y && p.Y <= v.Origin.Y+v.Height
}

// Anchor picks the centre for the next generated batch: offset to the right
// of the rightmost node visible in vp, at that node's height. With no
// visible nodes it returns the viewport origin unchanged.
func Anchor(nodes []topology.Node, vp Viewport, offset float64) topology.Position {
	var (
		best  topology.Position
		found bool
	)
	for _, n := range nodes {
		if !vp.Contains(n.Position) {
			continue
		}
		if !found || n.Position.X > best.X {
			best, found = n.Position, true
		}
	}
	if !found {
		return vp.Origin
	}
	return topology.Position{X: best.X + offset, Y: best.Y}
}
