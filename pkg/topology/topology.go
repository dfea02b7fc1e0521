package topology

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNodeNotFound is returned by [Store.UpdateNode] when the node id is
	// absent. Deletes swallow it.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectionNotFound is returned when a connection id is absent.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrSelfLoop is reported by [Store.CanConnect] when both endpoints are
	// the same node.
	ErrSelfLoop = errors.New("a connection needs two distinct nodes")

	// ErrUnknownEndpoint is reported by [Store.CanConnect] when either
	// endpoint does not exist.
	ErrUnknownEndpoint = errors.New("unknown connection endpoint")

	// ErrDuplicateConnection is reported by [Store.CanConnect] when the two
	// nodes are already linked, in either direction.
	ErrDuplicateConnection = errors.New("nodes are already connected")

	// ErrInvalidKind is returned when a node kind outside [Kinds] is set.
	ErrInvalidKind = errors.New("invalid node kind")
)

// NodeID identifies a node within one store. Zero means "no node".
type NodeID int

// ConnectionID identifies a connection within one store. Zero means "no connection".
type ConnectionID int

// Kind selects the icon a node is drawn with. It has no behavioral effect.
type Kind string

const (
	KindHost   Kind = "host"
	KindRouter Kind = "router"
	KindSwitch Kind = "switch"
	KindServer Kind = "server"
)

// Kinds lists every valid node kind in display order.
var Kinds = []Kind{KindHost, KindRouter, KindSwitch, KindServer}

// Valid reports whether k is one of [Kinds].
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// ParseKind converts free text into a Kind. Matching is case-insensitive and
// the legacy "vm" and "pc" spellings map to [KindHost].
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "vm", "pc":
		return KindHost, nil
	default:
		if k.Valid() {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// TopologyKind is an informational classification of how a topology came to be.
type TopologyKind string

const (
	TopologyCustom    TopologyKind = "Custom"
	TopologyGenerated TopologyKind = "Generated"
	TopologyImported  TopologyKind = "Imported"
)

// Position is a point on the logical canvas. The model imposes no bounds;
// the reference canvas is [CanvasSize] units square.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CanvasSize is the side of the virtual canvas used by the editor surfaces.
const CanvasSize = 3000.0

// Add returns p translated by q.
func (p Position) Add(q Position) Position { return Position{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Position) Sub(q Position) Position { return Position{X: p.X - q.X, Y: p.Y - q.Y} }

// Node is a placed device in the topology.
type Node struct {
	ID              NodeID
	Name            string
	Kind            Kind
	Image           string
	CPU             int
	MemoryGB        int
	DiskGB          int
	InternetEnabled bool
	Position        Position

	// InterfaceIDs lists the connections this node participates in, in
	// creation order. It is maintained by the store.
	InterfaceIDs []ConnectionID
}

// Isolated reports whether the node has no connections.
func (n Node) Isolated() bool { return len(n.InterfaceIDs) == 0 }

func (n Node) clone() Node {
	n.InterfaceIDs = slices.Clone(n.InterfaceIDs)
	return n
}

// Connection is an undirected link between two distinct nodes.
type Connection struct {
	ID        ConnectionID
	Name      string
	EndpointA NodeID
	EndpointB NodeID
}

// Touches reports whether id is one of the connection's endpoints.
func (c Connection) Touches(id NodeID) bool { return c.EndpointA == id || c.EndpointB == id }

// Other returns the endpoint opposite to id, or 0 if id is not an endpoint.
func (c Connection) Other(id NodeID) NodeID {
	switch id {
	case c.EndpointA:
		return c.EndpointB
	case c.EndpointB:
		return c.EndpointA
	}
	return 0
}

// pair is the unordered endpoint key used for duplicate detection.
type pair struct{ lo, hi NodeID }

func pairOf(a, b NodeID) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Topology is a value snapshot of a store: metadata plus nodes and
// connections ordered by id.
type Topology struct {
	Name        string
	Description string
	Kind        TopologyKind
	Nodes       []Node
	Connections []Connection

	// Highest ids ever minted. Zero means derive them from the ids present.
	LastNodeID       NodeID
	LastConnectionID ConnectionID
}

// NodeByID returns the node with the given id from the snapshot.
func (t Topology) NodeByID(id NodeID) (Node, bool) {
	i := slices.IndexFunc(t.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return t.Nodes[i], true
}

// NodeNames maps node ids to names for the snapshot.
func (t Topology) NodeNames() map[NodeID]string {
	names := make(map[NodeID]string, len(t.Nodes))
	for _, n := range t.Nodes {
		names[n.ID] = n.Name
	}
	return names
}
