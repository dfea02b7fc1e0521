package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/slicetopo/pkg/editor"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/layout"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/slicemanager"
	"github.com/matzehuels/slicetopo/pkg/topology"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	linkModeStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	formBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// dragStep is how far one arrow key moves a node.
const dragStep = 20.0

type editorMode int

const (
	modeCanvas editorMode = iota
	modeGenerate
	modeForm
)

// formFields are the edit form rows in display order.
var formFields = []string{"Name", "Kind", "Image", "CPU", "Memory GB", "Disk GB", "Internet"}

// EditorModel is the bubbletea model of the terminal topology editor. Keys
// are translated into Interaction Controller calls; the node under the
// cursor stands in for the pointer target.
type EditorModel struct {
	ctl      *editor.Controller
	rules    validate.Options
	save     func() error
	submit   *slicemanager.Submitter
	viewport layout.Viewport

	mode      editorMode
	cursor    int
	preset    int
	form      *editor.EditSession
	field     int
	status    string
	statusErr bool
	sending   bool
	dirty     bool
}

// NewEditorModel creates the editor over ctl. save persists the draft; it
// runs on "w" and when quitting with unsaved changes. submit may be nil when
// no Slice Manager is configured.
func NewEditorModel(ctl *editor.Controller, rules validate.Options, save func() error, submit *slicemanager.Submitter) EditorModel {
	return EditorModel{
		ctl:      ctl,
		rules:    rules,
		save:     save,
		submit:   submit,
		viewport: layout.Viewport{Width: topology.CanvasSize, Height: topology.CanvasSize},
	}
}

// sentMsg carries the result of an asynchronous submission.
type sentMsg struct {
	res *slicemanager.Result
	err error
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeGenerate:
			return m.updateGenerate(msg)
		case modeForm:
			return m.updateForm(msg)
		default:
			return m.updateCanvas(msg)
		}
	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("Submitted: HTTP %d (%s)", msg.res.Response.StatusCode, msg.res.Duration.Round(time.Millisecond))
	}
	return m, nil
}

func (m EditorModel) updateCanvas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.ctl.Store().Nodes()
	current, hasCurrent := m.current(nodes)

	switch msg.String() {
	case "ctrl+c", "q":
		if m.dirty {
			if err := m.save(); err != nil {
				m.setError(err)
				return m, nil
			}
		}
		return m, tea.Quit
	case "tab", "j":
		if len(nodes) > 0 {
			m.cursor = (m.cursor + 1) % len(nodes)
		}
	case "shift+tab", "k":
		if len(nodes) > 0 {
			m.cursor = (m.cursor - 1 + len(nodes)) % len(nodes)
		}
	case "up", "down", "left", "right":
		if !hasCurrent {
			break
		}
		d := map[string]topology.Position{
			"up":    {Y: -dragStep},
			"down":  {Y: dragStep},
			"left":  {X: -dragStep},
			"right": {X: dragStep},
		}[msg.String()]
		m.ctl.PointerDown(current.ID, current.Position)
		m.ctl.PointerMove(current.Position.Add(d))
		m.ctl.PointerUp()
		m.dirty = true
	case "a":
		pos := topology.Position{X: topology.CanvasSize / 2, Y: topology.CanvasSize / 2}
		if hasCurrent {
			pos = current.Position.Add(topology.Position{X: layout.Spacing})
		}
		n := m.ctl.AddNode(pos)
		m.cursor = len(nodes)
		m.dirty = true
		m.setStatus("Added %s", n.Name)
	case "l":
		m.setStatus("Link mode: %s", m.ctl.ToggleLinkMode())
	case "enter", " ":
		if !hasCurrent {
			break
		}
		res := m.ctl.Click(current.ID)
		switch {
		case res.Connected:
			m.dirty = true
			m.setStatus("Connected %s", res.Connection.Name)
		case m.ctl.LinkState() == editor.LinkSourceSelected:
			m.setStatus("Source %s: pick a target", current.Name)
		}
	case "e":
		if !hasCurrent {
			break
		}
		session, err := m.ctl.DoubleClick(current.ID)
		if err != nil {
			m.setError(err)
			break
		}
		m.form, m.field, m.mode = session, 0, modeForm
	case "d", "delete":
		if !hasCurrent {
			break
		}
		if err := m.ctl.OpenContext(current.ID); err != nil {
			m.setError(err)
			break
		}
		if err := m.ctl.ContextDelete(); err != nil {
			m.setError(err)
			break
		}
		m.dirty = true
		m.cursor = max(0, min(m.cursor, len(nodes)-2))
		m.setStatus("Deleted %s", current.Name)
	case "g":
		m.mode = modeGenerate
	case "v":
		report := validate.Validate(m.ctl.Store().Snapshot(), m.rules)
		if err := report.Err(); err != nil {
			m.setError(err)
			break
		}
		m.setStatus("Valid (%d warnings)", len(report.Warnings))
	case "x":
		t := m.ctl.Store().Snapshot()
		if err := validate.Validate(t, m.rules).Err(); err != nil {
			m.setError(err)
			break
		}
		name := serialize.ExportFilename(t.Name)
		if err := serialize.WriteFile(serialize.Export(t, time.Now()), name); err != nil {
			m.setError(err)
			break
		}
		m.setStatus("Exported %s", name)
	case "s":
		if m.submit == nil {
			m.setError(apperrors.New(apperrors.ErrCodeInvalidConfig, "no Slice Manager url configured"))
			break
		}
		if m.sending {
			break
		}
		m.sending = true
		m.setStatus("Sending...")
		sub, t := m.submit, m.ctl.Store().Snapshot()
		return m, func() tea.Msg {
			res, err := sub.Send(context.Background(), t)
			return sentMsg{res: res, err: err}
		}
	case "w":
		if err := m.save(); err != nil {
			m.setError(err)
			break
		}
		m.dirty = false
		m.setStatus("Saved")
	case "esc":
		m.ctl.Cancel()
		m.setStatus("")
	}
	return m, nil
}

func (m EditorModel) updateGenerate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeCanvas
	case "up", "k":
		m.preset = (m.preset - 1 + len(layout.Presets)) % len(layout.Presets)
	case "down", "j":
		m.preset = (m.preset + 1) % len(layout.Presets)
	case "enter":
		preset := layout.Presets[m.preset]
		b, err := m.ctl.Generate(preset, layout.Params{}, m.viewport)
		m.mode = modeCanvas
		if err != nil {
			m.setError(err)
			break
		}
		m.dirty = true
		m.setStatus("Generated %s: %s", preset, plural(len(b.Nodes), "node"))
	}
	return m, nil
}

func (m EditorModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.form.Discard()
		m.form, m.mode = nil, modeCanvas
	case tea.KeyEnter:
		if err := m.form.Commit(); err != nil {
			m.setError(err)
			break
		}
		m.form, m.mode = nil, modeCanvas
		m.dirty = true
		m.setStatus("Node updated")
	case tea.KeyUp, tea.KeyShiftTab:
		m.field = (m.field - 1 + len(formFields)) % len(formFields)
	case tea.KeyDown, tea.KeyTab:
		m.field = (m.field + 1) % len(formFields)
	case tea.KeyBackspace:
		if p := m.formText(); p != nil && *p != "" {
			r := []rune(*p)
			*p = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		if formFields[m.field] == "Internet" {
			m.form.Internet = !m.form.Internet
		} else if p := m.formText(); p != nil {
			*p += " "
		}
	case tea.KeyRunes:
		if p := m.formText(); p != nil {
			*p += string(msg.Runes)
		}
	}
	return m, nil
}

// formText returns the text field under the form cursor, nil for toggles.
func (m EditorModel) formText() *string {
	switch formFields[m.field] {
	case "Name":
		return &m.form.Name
	case "Kind":
		return &m.form.Kind
	case "Image":
		return &m.form.Image
	case "CPU":
		return &m.form.CPU
	case "Memory GB":
		return &m.form.MemoryGB
	case "Disk GB":
		return &m.form.DiskGB
	}
	return nil
}

func (m EditorModel) current(nodes []topology.Node) (topology.Node, bool) {
	if len(nodes) == 0 {
		return topology.Node{}, false
	}
	return nodes[min(m.cursor, len(nodes)-1)], true
}

func (m *EditorModel) setStatus(format string, args ...any) {
	m.status, m.statusErr = fmt.Sprintf(format, args...), false
}

func (m *EditorModel) setError(err error) {
	m.status, m.statusErr = apperrors.UserMessage(err), true
}

func (m EditorModel) View() string {
	var b strings.Builder
	s := m.ctl.Store()

	title := StyleTitle.Render(s.Name())
	if m.dirty {
		title += StyleDim.Render(" *")
	}
	b.WriteString(title)
	if state := m.ctl.LinkState(); state != editor.Idle {
		b.WriteString("  " + linkModeStyle.Render("LINK "+strings.ToUpper(state.String())))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.help()))
	b.WriteString("\n\n")

	switch m.mode {
	case modeGenerate:
		b.WriteString(m.viewGenerate())
	case modeForm:
		b.WriteString(m.viewForm())
	default:
		b.WriteString(m.viewCanvas())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(StyleError.Render(iconError + " " + m.status))
		} else {
			b.WriteString(StyleSuccess.Render(iconSuccess + " " + m.status))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m EditorModel) help() string {
	switch m.mode {
	case modeGenerate:
		return "↑/↓ preset  ⏎ generate  esc back"
	case modeForm:
		return "↑/↓ field  type to edit  space toggle  ⏎ save  esc discard"
	}
	return "tab/j/k node  arrows move  a add  l link  ⏎ click  e edit  d delete  g generate  v validate  x export  s send  w save  esc cancel  q quit"
}

func (m EditorModel) viewCanvas() string {
	t := m.ctl.Store().Snapshot()
	if len(t.Nodes) == 0 {
		return listDimStyle.Render("  empty topology - press a to add a node or g to generate one") + "\n"
	}

	source, hasSource := m.ctl.Source()
	selected, _ := m.ctl.Selected()
	names := t.NodeNames()

	var b strings.Builder
	for i, n := range t.Nodes {
		cursor := "  "
		if i == min(m.cursor, len(t.Nodes)-1) {
			cursor = "▸ "
		}
		marks := ""
		if hasSource && n.ID == source {
			marks += linkModeStyle.Render(" [source]")
		}
		if n.ID == selected {
			marks += StyleHighlight.Render(" [selected]")
		}
		if n.InternetEnabled {
			marks += " " + iconInternet
		}

		var peers []string
		for _, cid := range n.InterfaceIDs {
			if c, ok := m.ctl.Store().Connection(cid); ok {
				peers = append(peers, names[c.Other(n.ID)])
			}
		}

		line := fmt.Sprintf("%s%-12s %-7s (%6g,%6g)", cursor, n.Name, n.Kind, n.Position.X, n.Position.Y)
		style := listNormalStyle
		if cursor != "  " {
			style = listSelectedStyle
		}
		b.WriteString(style.Render(line) + marks)
		if len(peers) > 0 {
			b.WriteString(listDimStyle.Render(" ↔ " + strings.Join(peers, ", ")))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + listDimStyle.Render(serialize.Sequence(t)) + "\n")
	return b.String()
}

func (m EditorModel) viewGenerate() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Generate") + "\n")
	for i, p := range layout.Presets {
		line := fmt.Sprintf("  %-9s %s", p, listDimStyle.Render(plural(layout.Params{}.NodeTotal(p), "node")))
		if i == m.preset {
			line = listSelectedStyle.Render("▸ " + string(p))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m EditorModel) viewForm() string {
	values := []string{
		m.form.Name, m.form.Kind, m.form.Image,
		m.form.CPU, m.form.MemoryGB, m.form.DiskGB,
		fmt.Sprintf("%t", m.form.Internet),
	}
	var b strings.Builder
	for i, f := range formFields {
		line := fmt.Sprintf("%-10s %s", f, values[i])
		if i == m.field {
			b.WriteString(listSelectedStyle.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(listNormalStyle.Render("  "+line) + "\n")
		}
	}
	return formBoxStyle.Render(strings.TrimSuffix(b.String(), "\n")) + "\n"
}
