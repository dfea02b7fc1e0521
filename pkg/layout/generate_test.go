package layout

import (
	"slices"
	"testing"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

func degrees(b Batch) map[topology.NodeID]int {
	d := make(map[topology.NodeID]int)
	for _, c := range b.Connections {
		d[c.EndpointA]++
		d[c.EndpointB]++
	}
	return d
}

func TestGenerateCounts(t *testing.T) {
	tests := []struct {
		name      string
		preset    Preset
		params    Params
		wantNodes int
		wantConns int
	}{
		{"StarDefault", PresetStar, Params{}, 6, 5},
		{"Star4", PresetStar, Params{NodeCount: 4}, 5, 4},
		{"TreeDefault", PresetTree, Params{}, 7, 6},
		{"Tree1", PresetTree, Params{Levels: 1}, 1, 0},
		{"RingDefault", PresetRing, Params{}, 5, 5},
		{"Ring1", PresetRing, Params{NodeCount: 1}, 1, 0},
		{"Ring2", PresetRing, Params{NodeCount: 2}, 2, 1},
		{"BusDefault", PresetBus, Params{}, 5, 4},
		{"MeshDefault", PresetMesh, Params{}, 9, 12},
		{"Mesh2x2", PresetMesh, Params{Rows: 2, Cols: 2}, 4, 4},
		{"Mesh1x4", PresetMesh, Params{Rows: 1, Cols: 4}, 4, 3},
		{"FullMeshDefault", PresetFullMesh, Params{}, 4, 6},
		{"FullMesh6", PresetFullMesh, Params{NodeCount: 6}, 6, 15},
		{"NegativeCount", PresetBus, Params{NodeCount: -3}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := topology.New("gen")
			b, err := Generate(s, tt.preset, tt.params, topology.Position{})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(b.Nodes) != tt.wantNodes || len(b.Connections) != tt.wantConns {
				t.Errorf("got %d nodes / %d connections, want %d / %d",
					len(b.Nodes), len(b.Connections), tt.wantNodes, tt.wantConns)
			}
			if s.NodeCount() != tt.wantNodes || s.ConnectionCount() != tt.wantConns {
				t.Errorf("store holds %d / %d", s.NodeCount(), s.ConnectionCount())
			}
			if got := tt.params.NodeTotal(tt.preset); got != tt.wantNodes {
				t.Errorf("NodeTotal = %d, want %d", got, tt.wantNodes)
			}
			if got := tt.params.ConnectionTotal(tt.preset); got < tt.wantConns {
				t.Errorf("ConnectionTotal = %d, below the %d created", got, tt.wantConns)
			}
		})
	}
}

func TestGenerateStar(t *testing.T) {
	s := topology.New("gen")
	b, err := Generate(s, PresetStar, Params{NodeCount: 4}, topology.Position{X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	hub := b.Nodes[0]
	if hub.Name != "PC0-t0" || hub.Position != (topology.Position{}) {
		t.Errorf("hub = %s at %+v", hub.Name, hub.Position)
	}
	for _, c := range b.Connections {
		if !c.Touches(hub.ID) {
			t.Errorf("connection %s does not touch the hub", c.Name)
		}
	}
	for _, leaf := range b.Nodes[1:] {
		if len(leaf.InterfaceIDs) != 1 {
			t.Errorf("leaf %s has %d links, want 1", leaf.Name, len(leaf.InterfaceIDs))
		}
	}
	if b.Nodes[1].Position != (topology.Position{X: 0, Y: -Radius}) {
		t.Errorf("first leaf at %+v, want twelve o'clock", b.Nodes[1].Position)
	}
}

func TestGenerateMeshHasNoDiagonals(t *testing.T) {
	s := topology.New("gen")
	b, err := Generate(s, PresetMesh, Params{Rows: 2, Cols: 2}, topology.Position{})
	if err != nil {
		t.Fatal(err)
	}
	pos := make(map[topology.NodeID]topology.Position)
	for _, n := range b.Nodes {
		pos[n.ID] = n.Position
	}
	for _, c := range b.Connections {
		a, z := pos[c.EndpointA], pos[c.EndpointB]
		if a.X != z.X && a.Y != z.Y {
			t.Errorf("diagonal connection %s between %+v and %+v", c.Name, a, z)
		}
	}
	names := []string{}
	for _, n := range b.Nodes {
		names = append(names, n.Name)
	}
	if !slices.Equal(names, []string{"PC0-t0", "PC1-t0", "PC0-t1", "PC1-t1"}) {
		t.Errorf("names = %v", names)
	}
}

func TestGenerateTreeParents(t *testing.T) {
	l, err := Plan(PresetTree, Params{Levels: 3}, topology.Position{})
	if err != nil {
		t.Fatal(err)
	}
	want := []Link{{0, 1}, {0, 2}, {1, 3}, {1, 4}, {2, 5}, {2, 6}}
	if !slices.Equal(l.Links, want) {
		t.Errorf("links = %v, want %v", l.Links, want)
	}
	for i, p := range l.Placements {
		if i > 0 && p.Tier > 0 && p.Position.Y <= l.Placements[0].Position.Y {
			t.Errorf("%s is not below the root", p.Name)
		}
	}
	if l.Placements[3].Name != "PC0-t2" || l.Placements[6].Name != "PC3-t2" {
		t.Errorf("level names = %s..%s", l.Placements[3].Name, l.Placements[6].Name)
	}
}

func TestGenerateRingIsDeterministic(t *testing.T) {
	center := topology.Position{X: 500, Y: 500}
	shape := func() ([]topology.Position, []Link) {
		s := topology.New("gen")
		b, err := Generate(s, PresetRing, Params{NodeCount: 5}, center)
		if err != nil {
			t.Fatal(err)
		}
		for _, d := range degrees(b) {
			if d != 2 {
				t.Fatalf("ring node degree %d, want 2", d)
			}
		}
		index := make(map[topology.NodeID]int)
		var ps []topology.Position
		for i, n := range b.Nodes {
			index[n.ID] = i
			ps = append(ps, n.Position)
		}
		var ls []Link
		for _, c := range b.Connections {
			ls = append(ls, Link{index[c.EndpointA], index[c.EndpointB]})
		}
		return ps, ls
	}

	p1, l1 := shape()
	p2, l2 := shape()
	if !slices.Equal(p1, p2) || !slices.Equal(l1, l2) {
		t.Error("two ring generations differ")
	}
	if !slices.Equal(l1, []Link{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0}}) {
		t.Errorf("ring links = %v, want closed 5-cycle", l1)
	}
}

func TestGenerateAppendsWithoutCollisions(t *testing.T) {
	s := topology.New("gen")
	first, err := Generate(s, PresetBus, Params{NodeCount: 3}, topology.Position{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(s, PresetBus, Params{NodeCount: 3}, topology.Position{X: 1000})
	if err != nil {
		t.Fatal(err)
	}

	if s.NodeCount() != 6 || s.ConnectionCount() != 4 {
		t.Errorf("store holds %d / %d, want 6 / 4", s.NodeCount(), s.ConnectionCount())
	}
	if second.Nodes[0].ID <= first.Nodes[2].ID {
		t.Errorf("second batch reused ids: %d <= %d", second.Nodes[0].ID, first.Nodes[2].ID)
	}
	if second.Nodes[0].Name != "PC0-t0" {
		t.Errorf("numbering should restart per batch, got %s", second.Nodes[0].Name)
	}
	for _, n := range first.Nodes {
		now, _ := s.Node(n.ID)
		if now.Position != n.Position {
			t.Errorf("existing node %s moved", n.Name)
		}
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    Preset
		wantErr bool
	}{
		{"star", PresetStar, false},
		{"MESH", PresetMesh, false},
		{"full-mesh", PresetFullMesh, false},
		{"linear", PresetBus, false},
		{"hypercube", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePreset(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePreset(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !apperrors.Is(err, apperrors.ErrCodeInvalidPreset) {
			t.Errorf("ParsePreset(%q) code = %v", tt.in, apperrors.GetCode(err))
		}
	}

	s := topology.New("gen")
	if _, err := Generate(s, Preset("hypercube"), Params{}, topology.Position{}); err == nil {
		t.Error("Generate accepted an unknown preset")
	}
	if s.NodeCount() != 0 {
		t.Error("failed Generate mutated the store")
	}
}

func TestCheckLimits(t *testing.T) {
	tests := []struct {
		name    string
		preset  Preset
		params  Params
		wantErr bool
	}{
		{"Defaults", PresetStar, Params{}, false},
		{"TreeAtLimit", PresetTree, Params{Levels: 8}, false},
		{"DeepTree", PresetTree, Params{Levels: 16}, true},
		{"AbsurdTree", PresetTree, Params{Levels: 1000}, true},
		{"BigFullMesh", PresetFullMesh, Params{NodeCount: 600}, true},
		{"FullMeshTooManyLinks", PresetFullMesh, Params{NodeCount: 120}, true},
		{"FullMeshUnderLimit", PresetFullMesh, Params{NodeCount: 100}, false},
		{"HugeGrid", PresetMesh, Params{Rows: 1 << 30, Cols: 1 << 30}, true},
		{"LongBus", PresetBus, Params{NodeCount: MaxNodes}, false},
		{"TooLongBus", PresetBus, Params{NodeCount: MaxNodes + 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLimits(tt.preset, tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckLimits = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("code = %v", apperrors.GetCode(err))
			}
		})
	}
}

func TestAnchor(t *testing.T) {
	vp := Viewport{Origin: topology.Position{X: 100, Y: 100}, Width: 800, Height: 600}

	t.Run("EmptyViewport", func(t *testing.T) {
		got := Anchor(nil, vp, DefaultAnchorOffset)
		if got != vp.Origin {
			t.Errorf("Anchor = %+v, want origin", got)
		}
	})

	t.Run("IgnoresOffscreen", func(t *testing.T) {
		nodes := []topology.Node{
			{ID: 1, Position: topology.Position{X: 300, Y: 200}},
			{ID: 2, Position: topology.Position{X: 500, Y: 400}},
			{ID: 3, Position: topology.Position{X: 2000, Y: 200}},
		}
		got := Anchor(nodes, vp, DefaultAnchorOffset)
		want := topology.Position{X: 900, Y: 400}
		if got != want {
			t.Errorf("Anchor = %+v, want %+v", got, want)
		}
	})

	t.Run("AllOffscreen", func(t *testing.T) {
		nodes := []topology.Node{{ID: 1, Position: topology.Position{X: -50, Y: 0}}}
		if got := Anchor(nodes, vp, 10); got != vp.Origin {
			t.Errorf("Anchor = %+v, want origin", got)
		}
	})
}
