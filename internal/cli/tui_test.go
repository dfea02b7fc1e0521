package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/slicetopo/pkg/editor"
	"github.com/matzehuels/slicetopo/pkg/topology"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(m EditorModel, keys ...tea.KeyMsg) EditorModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(EditorModel)
	}
	return m
}

func newTestEditor(t *testing.T) (EditorModel, *topology.Store, *int) {
	t.Helper()
	s := topology.New("tui")
	saves := 0
	ctl := editor.New(s, editor.Options{})
	m := NewEditorModel(ctl, validate.Options{}, func() error { saves++; return nil }, nil)
	return m, s, &saves
}

func TestEditorAddAndLink(t *testing.T) {
	m, s, _ := newTestEditor(t)

	m = press(m, runes("a"), runes("a"))
	if s.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d", s.NodeCount())
	}

	// cursor is on the second node; link it to the first
	m = press(m, runes("l"), tea.KeyMsg{Type: tea.KeyEnter}, runes("k"), tea.KeyMsg{Type: tea.KeyEnter})
	if s.ConnectionCount() != 1 {
		t.Fatalf("ConnectionCount = %d", s.ConnectionCount())
	}
	if m.ctl.LinkState() != editor.LinkArmed {
		t.Errorf("LinkState = %v, want armed", m.ctl.LinkState())
	}
	if !strings.Contains(m.View(), "LINK ARMED") {
		t.Errorf("View does not show link mode:\n%s", m.View())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.ctl.LinkState() != editor.Idle {
		t.Errorf("LinkState after esc = %v", m.ctl.LinkState())
	}
}

func TestEditorDragWithArrows(t *testing.T) {
	m, s, _ := newTestEditor(t)
	m = press(m, runes("a"))
	before := s.Nodes()[0].Position

	m = press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyUp})
	after := s.Nodes()[0].Position
	want := topology.Position{X: before.X + 2*dragStep, Y: before.Y - dragStep}
	if after != want {
		t.Errorf("Position = %v, want %v", after, want)
	}
	if !m.dirty {
		t.Error("drag should mark the draft dirty")
	}
}

func TestEditorGenerate(t *testing.T) {
	m, s, _ := newTestEditor(t)

	// star is first; move down to tree and back up
	m = press(m, runes("g"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeCanvas {
		t.Errorf("mode = %v after generate", m.mode)
	}
	if s.NodeCount() != 6 || s.ConnectionCount() != 5 {
		t.Errorf("star = %d nodes, %d connections", s.NodeCount(), s.ConnectionCount())
	}
	if s.Kind() != topology.TopologyGenerated {
		t.Errorf("Kind = %v", s.Kind())
	}
}

func TestEditorForm(t *testing.T) {
	m, s, _ := newTestEditor(t)
	m = press(m, runes("a"), runes("e"))
	if m.mode != modeForm {
		t.Fatalf("mode = %v, want form", m.mode)
	}

	// clear the name and type a new one
	for range len(m.form.Name) {
		m = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = press(m, runes("gw"))

	// CPU is the fourth field
	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyBackspace}, runes("8"))

	// Internet is three rows further down
	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	n := s.Nodes()[0]
	if n.Name != "gw" || n.CPU != 8 || !n.InternetEnabled {
		t.Errorf("node = %+v", n)
	}
	if m.mode != modeCanvas || m.ctl.Modal() != nil {
		t.Error("form should be closed after commit")
	}
}

func TestEditorFormDiscard(t *testing.T) {
	m, s, _ := newTestEditor(t)
	m = press(m, runes("a"), runes("e"), runes("zzz"), tea.KeyMsg{Type: tea.KeyEsc})
	if n := s.Nodes()[0]; strings.Contains(n.Name, "zzz") {
		t.Errorf("discarded edit applied: %q", n.Name)
	}
}

func TestEditorDeleteAndQuit(t *testing.T) {
	m, s, saves := newTestEditor(t)
	m = press(m, runes("a"), runes("a"), runes("d"))
	if s.NodeCount() != 1 {
		t.Errorf("NodeCount = %d after delete", s.NodeCount())
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if *saves != 1 {
		t.Errorf("saves = %d, want 1 (dirty quit)", *saves)
	}
}

func TestEditorSendWithoutManager(t *testing.T) {
	m, _, _ := newTestEditor(t)
	m = press(m, runes("s"))
	if !m.statusErr || !strings.Contains(m.status, "Slice Manager") {
		t.Errorf("status = %q (err %v)", m.status, m.statusErr)
	}
}
