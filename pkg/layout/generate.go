package layout

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Placement is one planned node.
type Placement struct {
	Name     string
	Tier     int
	Index    int
	Position topology.Position
}

// Link is a planned connection between two placements, by index.
type Link struct{ From, To int }

// Layout is the pure output of a preset: where nodes go and which pairs
// should be linked.
type Layout struct {
	Preset     Preset
	Placements []Placement
	Links      []Link
}

// Batch is what [Generate] actually inserted into the store.
type Batch struct {
	Nodes       []topology.Node
	Connections []topology.Connection
}

// Plan computes the layout for preset around center without touching any
// store. Unknown presets return an INVALID_PRESET error.
func Plan(preset Preset, p Params, center topology.Position) (Layout, error) {
	if !slices.Contains(Presets, preset) {
		parsed, err := ParsePreset(string(preset))
		if err != nil {
			return Layout{}, err
		}
		preset = parsed
	}
	p = p.WithDefaults(preset)
	l := Layout{Preset: preset}
	switch preset {
	case PresetStar:
		planStar(&l, p.NodeCount, center)
	case PresetTree:
		planTree(&l, p.Levels, center)
	case PresetRing:
		planCircle(&l, p.NodeCount, center)
		for i := range p.NodeCount {
			l.Links = append(l.Links, Link{i, (i + 1) % p.NodeCount})
		}
	case PresetBus:
		planBus(&l, p.NodeCount, center)
	case PresetMesh:
		planMesh(&l, p.Rows, p.Cols, center)
	case PresetFullMesh:
		planCircle(&l, p.NodeCount, center)
		for i := range p.NodeCount {
			for j := i + 1; j < p.NodeCount; j++ {
				l.Links = append(l.Links, Link{i, j})
			}
		}
	}
	return l, nil
}

// Generate plans preset around center and inserts the result into s. Every
// id comes from the store's sequence, so existing content is never
// disturbed. Planned links the store rejects are skipped.
func Generate(s *topology.Store, preset Preset, p Params, center topology.Position) (Batch, error) {
	l, err := Plan(preset, p, center)
	if err != nil {
		return Batch{}, err
	}

	ids := make([]topology.NodeID, len(l.Placements))
	for i, pl := range l.Placements {
		n, err := s.CreateNode(pl.Position, topology.NodePatch{Name: topology.Ptr(pl.Name)})
		if err != nil {
			return Batch{}, fmt.Errorf("place %s: %w", pl.Name, err)
		}
		ids[i] = n.ID
	}

	var b Batch
	for _, link := range l.Links {
		if c, ok := s.CreateConnection(ids[link.From], ids[link.To]); ok {
			b.Connections = append(b.Connections, c)
		}
	}
	for _, id := range ids {
		n, _ := s.Node(id)
		b.Nodes = append(b.Nodes, n)
	}
	return b, nil
}

func (l *Layout) place(index, tier int, pos topology.Position) {
	l.Placements = append(l.Placements, Placement{
		Name:     fmt.Sprintf("PC%d-t%d", index, tier),
		Tier:     tier,
		Index:    index,
		Position: topology.Position{X: round(pos.X), Y: round(pos.Y)},
	})
}

// onCircle returns the i-th of n evenly spaced points, starting at twelve
// o'clock and going clockwise on screen.
func onCircle(center topology.Position, i, n int) topology.Position {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	return topology.Position{
		X: center.X + Radius*math.Cos(angle),
		Y: center.Y + Radius*math.Sin(angle),
	}
}

func planStar(l *Layout, leaves int, center topology.Position) {
	l.place(0, 0, center)
	for i := range max(leaves, 0) {
		l.place(i, 1, onCircle(center, i, leaves))
		l.Links = append(l.Links, Link{0, i + 1})
	}
}

func planCircle(l *Layout, n int, center topology.Position) {
	for i := range max(n, 0) {
		l.place(i, 0, onCircle(center, i, n))
	}
}

func planBus(l *Layout, n int, center topology.Position) {
	for i := range max(n, 0) {
		x := center.X + (float64(i)-float64(n-1)/2)*Spacing
		l.place(i, 0, topology.Position{X: x, Y: center.Y})
		if i > 0 {
			l.Links = append(l.Links, Link{i - 1, i})
		}
	}
}

func planMesh(l *Layout, rows, cols int, center topology.Position) {
	if rows <= 0 || cols <= 0 {
		return
	}
	at := func(r, c int) int { return r*cols + c }
	for r := range rows {
		for c := range cols {
			l.place(c, r, topology.Position{
				X: center.X + (float64(c)-float64(cols-1)/2)*Spacing,
				Y: center.Y + (float64(r)-float64(rows-1)/2)*Spacing,
			})
			if c > 0 {
				l.Links = append(l.Links, Link{at(r, c-1), at(r, c)})
			}
			if r > 0 {
				l.Links = append(l.Links, Link{at(r-1, c), at(r, c)})
			}
		}
	}
}

func planTree(l *Layout, levels int, center topology.Position) {
	if levels <= 0 {
		return
	}
	width := float64(int(1)<<(levels-1)) * LeafSpacing
	top := center.Y - float64(levels-1)*LevelGap/2
	first := 0 // index of the first placement in the previous level
	for level := range levels {
		count := 1 << level
		slot := width / float64(count)
		start := len(l.Placements)
		for i := range count {
			l.place(i, level, topology.Position{
				X: center.X - width/2 + slot*(float64(i)+0.5),
				Y: top + float64(level)*LevelGap,
			})
			if level > 0 {
				l.Links = append(l.Links, Link{first + i/2, start + i})
			}
		}
		first = start
	}
}

func round(v float64) float64 { return math.Round(v*100) / 100 }
