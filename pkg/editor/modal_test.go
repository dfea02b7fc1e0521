package editor

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slicetopo/pkg/topology"
)

func TestEditSessionPrefill(t *testing.T) {
	s := topology.New("lab")
	n, _ := s.CreateNode(topology.Position{}, topology.NodePatch{
		Name:            topology.Ptr("gw"),
		Kind:            topology.Ptr(topology.KindRouter),
		CPU:             topology.Ptr(3),
		InternetEnabled: topology.Ptr(true),
	})
	c := New(s, Options{Logger: log.New(io.Discard)})

	m, err := c.DoubleClick(n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "gw" || m.Kind != "router" || m.Image != "cirros" || m.CPU != "3" ||
		m.MemoryGB != "4" || m.DiskGB != "20" || !m.Internet {
		t.Errorf("prefill = %+v", m)
	}
	if c.Modal() != m {
		t.Error("modal not tracked")
	}
}

func TestEditSessionCommit(t *testing.T) {
	s := topology.New("lab")
	n, _ := s.CreateNode(topology.Position{X: 5}, topology.NodePatch{})
	c := New(s, Options{Logger: log.New(io.Discard)})

	m, _ := c.DoubleClick(n.ID)
	m.Name = "  web  "
	m.Kind = "Server"
	m.CPU = "abc"
	m.MemoryGB = "7.9"
	m.DiskGB = "2"
	m.Internet = true
	if err := m.Commit(); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Node(n.ID)
	if got.Name != "web" || got.Kind != topology.KindServer || got.CPU != 1 ||
		got.MemoryGB != 7 || got.DiskGB != 10 || !got.InternetEnabled {
		t.Errorf("node = %+v", got)
	}
	if got.Position != (topology.Position{X: 5}) {
		t.Error("commit moved the node")
	}
	if c.Modal() != nil {
		t.Error("modal still open after commit")
	}
	if err := m.Commit(); err == nil {
		t.Error("second commit accepted")
	}
}

func TestEditSessionRejectKeepsNode(t *testing.T) {
	s := topology.New("lab")
	n, _ := s.CreateNode(topology.Position{}, topology.NodePatch{})
	c := New(s, Options{Logger: log.New(io.Discard)})

	m, _ := c.DoubleClick(n.ID)
	m.CPU = "8"
	m.Kind = "toaster"
	if err := m.Commit(); err == nil {
		t.Fatal("bad kind accepted")
	}
	if got, _ := s.Node(n.ID); got.CPU != topology.DefaultCPU {
		t.Errorf("cpu = %d after rejected commit", got.CPU)
	}
	if c.Modal() != m {
		t.Error("modal closed after rejected commit")
	}

	m.Discard()
	if c.Modal() != nil {
		t.Error("Discard left the modal open")
	}
}

func TestEditSessionEmptyNameKeepsOld(t *testing.T) {
	s := topology.New("lab")
	n, _ := s.CreateNode(topology.Position{}, topology.NodePatch{})
	c := New(s, Options{Logger: log.New(io.Discard)})

	m, _ := c.DoubleClick(n.ID)
	m.Name = "   "
	if err := m.Commit(); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Node(n.ID); got.Name != n.Name {
		t.Errorf("name = %q, want %q", got.Name, n.Name)
	}
}

func TestDoubleClickUnknownNode(t *testing.T) {
	c := New(topology.New("lab"), Options{Logger: log.New(io.Discard)})
	if _, err := c.DoubleClick(7); err == nil {
		t.Error("DoubleClick on unknown node succeeded")
	}
}
