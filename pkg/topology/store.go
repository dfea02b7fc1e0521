package topology

import (
	"fmt"
	"maps"
	"slices"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
)

// NodePatch carries optional field values. A nil field is left untouched by
// [Store.UpdateNode] and takes its default in [Store.CreateNode].
type NodePatch struct {
	Name            *string
	Kind            *Kind
	Image           *string
	CPU             *int
	MemoryGB        *int
	DiskGB          *int
	InternetEnabled *bool
	Position        *Position
}

// Ptr returns a pointer to v. It keeps patch literals short:
//
//	s.UpdateNode(id, topology.NodePatch{CPU: topology.Ptr(4)})
func Ptr[T any](v T) *T { return &v }

// Store is the single source of truth for one editing session.
//
// The zero value is not usable - use New.
type Store struct {
	name        string
	description string
	kind        TopologyKind

	nodes map[NodeID]*Node
	conns map[ConnectionID]*Connection
	pairs map[pair]ConnectionID

	lastNode NodeID
	lastConn ConnectionID
}

// New creates an empty store for a topology called name.
func New(name string) *Store {
	return &Store{
		name:  name,
		kind:  TopologyCustom,
		nodes: make(map[NodeID]*Node),
		conns: make(map[ConnectionID]*Connection),
		pairs: make(map[pair]ConnectionID),
	}
}

// Name returns the topology name.
func (s *Store) Name() string { return s.name }

// SetName renames the topology.
func (s *Store) SetName(name string) { s.name = name }

// Description returns the topology description.
func (s *Store) Description() string { return s.description }

// SetDescription replaces the topology description.
func (s *Store) SetDescription(d string) { s.description = d }

// Kind returns the informational topology classification.
func (s *Store) Kind() TopologyKind { return s.kind }

// SetKind replaces the informational topology classification.
func (s *Store) SetKind(k TopologyKind) { s.kind = k }

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// ConnectionCount returns the number of connections.
func (s *Store) ConnectionCount() int { return len(s.conns) }

// CreateNode allocates the next node id, applies defaults and the patch, and
// inserts the node. Only invalid kind or image values are rejected; numeric
// fields are clamped.
func (s *Store) CreateNode(pos Position, p NodePatch) (Node, error) {
	n := Node{
		Kind:     DefaultKind,
		Image:    DefaultImage,
		CPU:      DefaultCPU,
		MemoryGB: DefaultMemoryGB,
		DiskGB:   DefaultDiskGB,
		Position: pos,
	}
	if err := applyPatch(&n, p); err != nil {
		return Node{}, err
	}

	s.lastNode++
	n.ID = s.lastNode
	if n.Name == "" {
		n.Name = fmt.Sprintf("PC%d", n.ID)
	}
	s.nodes[n.ID] = &n
	return n.clone(), nil
}

// UpdateNode overwrites the fields set in p. It returns a NOT_FOUND error
// wrapping [ErrNodeNotFound] when id is absent. The update is applied to a
// copy first, so a rejected patch leaves the node unchanged.
func (s *Store) UpdateNode(id NodeID, p NodePatch) error {
	cur, ok := s.nodes[id]
	if !ok {
		return apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNodeNotFound, "node %d", id)
	}
	next := cur.clone()
	if err := applyPatch(&next, p); err != nil {
		return err
	}
	if next.Name == "" {
		next.Name = cur.Name
	}
	*cur = next
	return nil
}

// MoveNode sets a node's position. Coordinates are not bounded.
func (s *Store) MoveNode(id NodeID, pos Position) error {
	return s.UpdateNode(id, NodePatch{Position: &pos})
}

func applyPatch(n *Node, p NodePatch) error {
	if p.Kind != nil {
		if !p.Kind.Valid() {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrInvalidKind, "kind %q", *p.Kind)
		}
		n.Kind = *p.Kind
	}
	if p.Image != nil {
		image := *p.Image
		if image == "" {
			image = DefaultImage
		}
		if err := apperrors.ValidateImageName(image); err != nil {
			return err
		}
		n.Image = image
	}
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.CPU != nil {
		n.CPU = *p.CPU
	}
	if p.MemoryGB != nil {
		n.MemoryGB = *p.MemoryGB
	}
	if p.DiskGB != nil {
		n.DiskGB = *p.DiskGB
	}
	n.CPU = ClampResource(ResourceCPU, n.CPU)
	n.MemoryGB = ClampResource(ResourceMemory, n.MemoryGB)
	n.DiskGB = ClampResource(ResourceDisk, n.DiskGB)
	if p.InternetEnabled != nil {
		n.InternetEnabled = *p.InternetEnabled
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	return nil
}

// DeleteNode removes the node and every connection touching it. Deleting an
// absent node is a no-op.
func (s *Store) DeleteNode(id NodeID) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	for _, cid := range slices.Clone(n.InterfaceIDs) {
		s.DeleteConnection(cid)
	}
	delete(s.nodes, id)
}

// CanConnect explains whether CreateConnection(a, b) would succeed. It
// returns nil, [ErrSelfLoop], [ErrUnknownEndpoint] or [ErrDuplicateConnection].
func (s *Store) CanConnect(a, b NodeID) error {
	if a == b {
		return ErrSelfLoop
	}
	if _, ok := s.nodes[a]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := s.nodes[b]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := s.pairs[pairOf(a, b)]; ok {
		return ErrDuplicateConnection
	}
	return nil
}

// CreateConnection links a and b. It reports false, without mutating the
// store, for self-loops, unknown endpoints and already-linked pairs.
func (s *Store) CreateConnection(a, b NodeID) (Connection, bool) {
	if s.CanConnect(a, b) != nil {
		return Connection{}, false
	}
	s.lastConn++
	c := &Connection{
		ID:        s.lastConn,
		Name:      fmt.Sprintf("Link %d", s.lastConn),
		EndpointA: a,
		EndpointB: b,
	}
	s.conns[c.ID] = c
	s.pairs[pairOf(a, b)] = c.ID
	s.nodes[a].InterfaceIDs = append(s.nodes[a].InterfaceIDs, c.ID)
	s.nodes[b].InterfaceIDs = append(s.nodes[b].InterfaceIDs, c.ID)
	return *c, true
}

// DeleteConnection removes the connection and detaches it from both
// endpoints. Deleting an absent connection is a no-op.
func (s *Store) DeleteConnection(id ConnectionID) {
	c, ok := s.conns[id]
	if !ok {
		return
	}
	delete(s.conns, id)
	if key := pairOf(c.EndpointA, c.EndpointB); s.pairs[key] == id {
		delete(s.pairs, key)
		// ReplaceAll may have loaded duplicates; the pair stays taken while
		// one of them survives.
		for _, other := range slices.Sorted(maps.Keys(s.conns)) {
			if pairOf(s.conns[other].EndpointA, s.conns[other].EndpointB) == key {
				s.pairs[key] = other
				break
			}
		}
	}
	for _, nid := range []NodeID{c.EndpointA, c.EndpointB} {
		if n, ok := s.nodes[nid]; ok {
			n.InterfaceIDs = slices.DeleteFunc(n.InterfaceIDs, func(x ConnectionID) bool { return x == id })
		}
	}
}

// Clear empties the store and resets both id counters, so the next node
// created is id 1 again. Metadata is kept.
func (s *Store) Clear() {
	clear(s.nodes)
	clear(s.conns)
	clear(s.pairs)
	s.lastNode = 0
	s.lastConn = 0
}

// ReplaceAll swaps the whole graph in one step. Ids are taken as given and
// the counters continue after the highest id supplied. Referential integrity
// is not checked; dangling connections are kept so that the validator can
// report them. InterfaceIDs are rebuilt from the connections.
func (s *Store) ReplaceAll(nodes []Node, conns []Connection) {
	s.Clear()
	for _, n := range nodes {
		n := n.clone()
		n.InterfaceIDs = nil
		s.nodes[n.ID] = &n
		s.lastNode = max(s.lastNode, n.ID)
	}
	for _, c := range conns {
		s.conns[c.ID] = &c
		s.lastConn = max(s.lastConn, c.ID)
		if _, dup := s.pairs[pairOf(c.EndpointA, c.EndpointB)]; !dup {
			s.pairs[pairOf(c.EndpointA, c.EndpointB)] = c.ID
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.conns)) {
		c := s.conns[id]
		if n, ok := s.nodes[c.EndpointA]; ok {
			n.InterfaceIDs = append(n.InterfaceIDs, id)
		}
		if n, ok := s.nodes[c.EndpointB]; ok && c.EndpointB != c.EndpointA {
			n.InterfaceIDs = append(n.InterfaceIDs, id)
		}
	}
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Connection returns a copy of the connection with the given id.
func (s *Store) Connection(id ConnectionID) (Connection, bool) {
	c, ok := s.conns[id]
	if !ok {
		return Connection{}, false
	}
	return *c, true
}

// ConnectionBetween returns the connection linking a and b in either direction.
func (s *Store) ConnectionBetween(a, b NodeID) (Connection, bool) {
	id, ok := s.pairs[pairOf(a, b)]
	if !ok {
		return Connection{}, false
	}
	return s.Connection(id)
}

// Nodes returns copies of all nodes ordered by id.
func (s *Store) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, id := range slices.Sorted(maps.Keys(s.nodes)) {
		out = append(out, s.nodes[id].clone())
	}
	return out
}

// Connections returns copies of all connections ordered by id.
func (s *Store) Connections() []Connection {
	out := make([]Connection, 0, len(s.conns))
	for _, id := range slices.Sorted(maps.Keys(s.conns)) {
		out = append(out, *s.conns[id])
	}
	return out
}

// Snapshot returns a detached copy of the whole topology.
func (s *Store) Snapshot() Topology {
	return Topology{
		Name:        s.name,
		Description: s.description,
		Kind:        s.kind,
		Nodes:       s.Nodes(),
		Connections: s.Connections(),

		LastNodeID:       s.lastNode,
		LastConnectionID: s.lastConn,
	}
}

// Load replaces the store's metadata and graph with a snapshot. It is the
// import path and has the same integrity rules as ReplaceAll. The snapshot's
// id high-water marks are restored, so ids deleted before it was taken are
// not handed out again.
func (s *Store) Load(t Topology) {
	s.name = t.Name
	s.description = t.Description
	s.kind = t.Kind
	if s.kind == "" {
		s.kind = TopologyCustom
	}
	s.ReplaceAll(t.Nodes, t.Connections)
	s.lastNode = max(s.lastNode, t.LastNodeID)
	s.lastConn = max(s.lastConn, t.LastConnectionID)
}
