package editor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/layout"
	"github.com/matzehuels/slicetopo/pkg/observability"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Options configures a Controller.
type Options struct {
	// Policy is the link-mode policy. Zero means StayArmed.
	Policy LinkPolicy

	// AnchorOffset is the gap between the rightmost visible node and a newly
	// generated batch. Zero means layout.DefaultAnchorOffset.
	AnchorOffset float64

	// Logger receives state transitions at debug level. Nil means
	// log.Default().
	Logger *log.Logger
}

type drag struct {
	node   topology.NodeID
	offset topology.Position
}

// Controller holds the interaction state of one editing session.
type Controller struct {
	store  *topology.Store
	policy LinkPolicy
	anchor float64
	logger *log.Logger

	state    LinkState
	source   topology.NodeID
	selected topology.NodeID
	drag     *drag
	menu     topology.NodeID
	modal    *EditSession
}

// New returns a controller driving s.
func New(s *topology.Store, opts Options) *Controller {
	if opts.Policy == "" {
		opts.Policy = StayArmed
	}
	if opts.AnchorOffset == 0 {
		opts.AnchorOffset = layout.DefaultAnchorOffset
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Controller{
		store:  s,
		policy: opts.Policy,
		anchor: opts.AnchorOffset,
		logger: opts.Logger,
	}
}

// Store returns the store the controller mutates.
func (c *Controller) Store() *topology.Store { return c.store }

// Policy returns the link-mode policy in effect.
func (c *Controller) Policy() LinkPolicy { return c.policy }

// =============================================================================
// Link mode
// =============================================================================

// LinkState returns the current link-mode state.
func (c *Controller) LinkState() LinkState { return c.state }

// Source returns the pending link source, if one is selected.
func (c *Controller) Source() (topology.NodeID, bool) {
	return c.source, c.state == LinkSourceSelected
}

// ToggleLinkMode arms link mode from Idle and returns to Idle otherwise.
func (c *Controller) ToggleLinkMode() LinkState {
	if c.state == Idle {
		c.setState(LinkArmed)
	} else {
		c.setState(Idle)
	}
	return c.state
}

// Cancel is the Escape key: it leaves link mode, ends any drag and closes
// the context menu. The edit modal is not affected.
func (c *Controller) Cancel() {
	c.setState(Idle)
	c.drag = nil
	c.menu = 0
}

func (c *Controller) setState(s LinkState) {
	if s != LinkSourceSelected {
		c.source = 0
	}
	if s == c.state {
		return
	}
	c.logger.Debug("link mode", "from", c.state, "to", s)
	observability.Editor().OnLinkStateChange(context.Background(), c.state.String(), s.String())
	c.state = s
}

// ClickResult describes what a click did.
type ClickResult struct {
	// Connection is set when the click completed a link.
	Connection topology.Connection
	Connected  bool

	// Selected is the node selected by the click outside link mode.
	Selected topology.NodeID
}

// Click handles a single click on a node. Outside link mode it selects the
// node. In link mode the first click picks the source and the second click
// on a different node creates the connection; clicking the source again
// does nothing. Clicks on unknown nodes are ignored.
func (c *Controller) Click(id topology.NodeID) ClickResult {
	if _, ok := c.store.Node(id); !ok {
		return ClickResult{}
	}
	switch c.state {
	case LinkArmed:
		c.setState(LinkSourceSelected)
		c.source = id
		c.logger.Debug("link source", "node", id)
		return ClickResult{}
	case LinkSourceSelected:
		if id == c.source {
			return ClickResult{}
		}
		conn, ok := c.store.CreateConnection(c.source, id)
		if ok {
			c.logger.Debug("connected", "connection", conn.Name, "a", conn.EndpointA, "b", conn.EndpointB)
			c.mutated("connection.create")
		} else {
			c.logger.Debug("connection rejected", "a", c.source, "b", id, "reason", c.store.CanConnect(c.source, id))
		}
		if c.policy == ExitAfterConnect {
			c.setState(Idle)
		} else {
			c.setState(LinkArmed)
		}
		return ClickResult{Connection: conn, Connected: ok}
	default:
		c.selected = id
		return ClickResult{Selected: id}
	}
}

// Selected returns the selected node, if any.
func (c *Controller) Selected() (topology.NodeID, bool) {
	if _, ok := c.store.Node(c.selected); !ok {
		return 0, false
	}
	return c.selected, true
}

// =============================================================================
// Dragging
// =============================================================================

// PointerDown starts dragging node id from pointer. It reports false when
// the node does not exist or another drag is active.
func (c *Controller) PointerDown(id topology.NodeID, pointer topology.Position) bool {
	if c.drag != nil {
		return false
	}
	n, ok := c.store.Node(id)
	if !ok {
		return false
	}
	c.drag = &drag{node: id, offset: pointer.Sub(n.Position)}
	return true
}

// PointerMove moves the dragged node to pointer minus the press offset. It
// reports false when no drag is active.
func (c *Controller) PointerMove(pointer topology.Position) (topology.Node, bool) {
	if c.drag == nil {
		return topology.Node{}, false
	}
	if err := c.store.MoveNode(c.drag.node, pointer.Sub(c.drag.offset)); err != nil {
		// the node was deleted mid-drag
		c.drag = nil
		return topology.Node{}, false
	}
	n, _ := c.store.Node(c.drag.node)
	return n, true
}

// PointerUp ends the drag, wherever the pointer is.
func (c *Controller) PointerUp() {
	if c.drag != nil {
		c.logger.Debug("drag ended", "node", c.drag.node)
		c.mutated("node.move")
	}
	c.drag = nil
}

// Dragging returns the node being dragged, if any.
func (c *Controller) Dragging() (topology.NodeID, bool) {
	if c.drag == nil {
		return 0, false
	}
	return c.drag.node, true
}

// =============================================================================
// Context menu and modal
// =============================================================================

// OpenContext opens the context menu on node id. Later context actions
// target this node.
func (c *Controller) OpenContext(id topology.NodeID) error {
	if _, ok := c.store.Node(id); !ok {
		return notFound(id)
	}
	c.menu = id
	return nil
}

// ContextTarget returns the node the context menu was last opened on.
func (c *Controller) ContextTarget() (topology.NodeID, bool) {
	return c.menu, c.menu != 0
}

// CloseContext closes the context menu.
func (c *Controller) CloseContext() { c.menu = 0 }

// ContextEdit opens the edit modal for the context target.
func (c *Controller) ContextEdit() (*EditSession, error) {
	id := c.menu
	c.menu = 0
	if id == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "no context menu is open")
	}
	return c.DoubleClick(id)
}

// ContextDelete deletes the context target and its connections.
func (c *Controller) ContextDelete() error {
	id := c.menu
	c.menu = 0
	if id == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "no context menu is open")
	}
	c.DeleteNode(id)
	return nil
}

// DoubleClick opens the edit modal for node id, pre-filled with its current
// values. An open modal for another node is discarded.
func (c *Controller) DoubleClick(id topology.NodeID) (*EditSession, error) {
	n, ok := c.store.Node(id)
	if !ok {
		return nil, notFound(id)
	}
	c.modal = newEditSession(c, n)
	return c.modal, nil
}

// Modal returns the open edit session, or nil.
func (c *Controller) Modal() *EditSession { return c.modal }

// =============================================================================
// Graph actions
// =============================================================================

// AddNode creates a node with defaults at pos.
func (c *Controller) AddNode(pos topology.Position) topology.Node {
	n, _ := c.store.CreateNode(pos, topology.NodePatch{}) // an empty patch cannot fail
	c.mutated("node.create")
	return n
}

// DeleteNode removes a node and its connections and clears every piece of
// interaction state that referred to it.
func (c *Controller) DeleteNode(id topology.NodeID) {
	if _, ok := c.store.Node(id); !ok {
		return
	}
	c.store.DeleteNode(id)
	if c.source == id && c.state == LinkSourceSelected {
		c.setState(LinkArmed)
	}
	if c.selected == id {
		c.selected = 0
	}
	if c.menu == id {
		c.menu = 0
	}
	if c.drag != nil && c.drag.node == id {
		c.drag = nil
	}
	if c.modal != nil && c.modal.node == id {
		c.modal = nil
	}
	c.mutated("node.delete")
}

// DeleteConnection removes one connection.
func (c *Controller) DeleteConnection(id topology.ConnectionID) {
	if _, ok := c.store.Connection(id); !ok {
		return
	}
	c.store.DeleteConnection(id)
	c.mutated("connection.delete")
}

// Generate adds a preset batch anchored to the right of the visible nodes
// and marks the topology as generated.
func (c *Controller) Generate(preset layout.Preset, p layout.Params, vp layout.Viewport) (layout.Batch, error) {
	start := time.Now()
	if err := layout.CheckLimits(preset, p); err != nil {
		observability.Editor().OnGenerate(context.Background(), string(preset), 0, 0, time.Since(start), err)
		return layout.Batch{}, err
	}
	center := layout.Anchor(c.store.Nodes(), vp, c.anchor)
	b, err := layout.Generate(c.store, preset, p, center)
	observability.Editor().OnGenerate(context.Background(), string(preset), len(b.Nodes), len(b.Connections), time.Since(start), err)
	if err != nil {
		return b, err
	}
	c.store.SetKind(topology.TopologyGenerated)
	c.logger.Debug("generated", "preset", preset, "nodes", len(b.Nodes), "connections", len(b.Connections), "center", center)
	c.mutated("generate")
	return b, nil
}

// Import replaces the whole topology with an import document. On error the
// topology and interaction state are untouched.
func (c *Controller) Import(data []byte) error {
	if err := serialize.Import(c.store, data); err != nil {
		return err
	}
	c.reset()
	c.mutated("import")
	return nil
}

// Clear empties the topology and resets the id counters.
func (c *Controller) Clear() {
	c.store.Clear()
	c.reset()
	c.mutated("clear")
}

func (c *Controller) reset() {
	c.setState(Idle)
	c.selected = 0
	c.drag = nil
	c.menu = 0
	c.modal = nil
}

func (c *Controller) mutated(op string) {
	observability.Editor().OnMutation(context.Background(), op, c.store.NodeCount(), c.store.ConnectionCount())
}

func notFound(id topology.NodeID) error {
	return apperrors.Wrap(apperrors.ErrCodeNotFound, topology.ErrNodeNotFound, "node %d", id)
}
