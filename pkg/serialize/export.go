package serialize

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Document is the export format.
type Document struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	TopologyKind topology.TopologyKind `json:"topologyKind"`
	Nodes        []NodeDoc             `json:"nodes"`
	Connections  []ConnectionDoc       `json:"connections"`
	Sequence     string                `json:"sequence"`
	Metadata     Metadata              `json:"metadata"`
}

// NodeDoc is one exported node. InternetEnabled is written as 0 or 1.
type NodeDoc struct {
	ID              topology.NodeID         `json:"id"`
	Name            string                  `json:"name"`
	Kind            topology.Kind           `json:"kind"`
	Image           string                  `json:"image"`
	CPU             int                     `json:"cpu"`
	MemoryGB        int                     `json:"memoryGB"`
	DiskGB          int                     `json:"diskGB"`
	InternetEnabled int                     `json:"internetEnabled"`
	Position        topology.Position       `json:"position"`
	InterfaceIDs    []topology.ConnectionID `json:"interfaceIds"`
}

// ConnectionDoc is one exported connection.
type ConnectionDoc struct {
	ID        topology.ConnectionID `json:"id"`
	Name      string                `json:"name"`
	EndpointA topology.NodeID       `json:"endpointA"`
	EndpointB topology.NodeID       `json:"endpointB"`
}

// Metadata summarises the document. The next-id counters let a reload keep
// deleted ids retired.
type Metadata struct {
	NodeCount        int                   `json:"nodeCount"`
	ConnectionCount  int                   `json:"connectionCount"`
	NextNodeID       topology.NodeID       `json:"nextNodeId,omitempty"`
	NextConnectionID topology.ConnectionID `json:"nextConnectionId,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
}

// Export builds the export document for t, stamped with createdAt (UTC).
func Export(t topology.Topology, createdAt time.Time) Document {
	doc := Document{
		Name:         t.Name,
		Description:  t.Description,
		TopologyKind: t.Kind,
		Nodes:        make([]NodeDoc, 0, len(t.Nodes)),
		Connections:  make([]ConnectionDoc, 0, len(t.Connections)),
		Sequence:     Sequence(t),
		Metadata: Metadata{
			NodeCount:        len(t.Nodes),
			ConnectionCount:  len(t.Connections),
			NextNodeID:       t.LastNodeID,
			NextConnectionID: t.LastConnectionID,
			CreatedAt:        createdAt.UTC(),
		},
	}
	if doc.TopologyKind == "" {
		doc.TopologyKind = topology.TopologyCustom
	}
	for _, n := range t.Nodes {
		doc.Nodes = append(doc.Nodes, ExportNode(n))
		doc.Metadata.NextNodeID = max(doc.Metadata.NextNodeID, n.ID)
	}
	for _, c := range t.Connections {
		doc.Connections = append(doc.Connections, ExportConnection(c))
		doc.Metadata.NextConnectionID = max(doc.Metadata.NextConnectionID, c.ID)
	}
	if len(t.Nodes) > 0 || t.LastNodeID > 0 {
		doc.Metadata.NextNodeID++
	}
	if len(t.Connections) > 0 || t.LastConnectionID > 0 {
		doc.Metadata.NextConnectionID++
	}
	return doc
}

// ExportNode converts one node to its document form.
func ExportNode(n topology.Node) NodeDoc {
	ifaces := n.InterfaceIDs
	if ifaces == nil {
		ifaces = []topology.ConnectionID{}
	}
	return NodeDoc{
		ID:              n.ID,
		Name:            n.Name,
		Kind:            n.Kind,
		Image:           n.Image,
		CPU:             n.CPU,
		MemoryGB:        n.MemoryGB,
		DiskGB:          n.DiskGB,
		InternetEnabled: boolToInt(n.InternetEnabled),
		Position:        n.Position,
		InterfaceIDs:    ifaces,
	}
}

// ExportConnection converts one connection to its document form.
func ExportConnection(c topology.Connection) ConnectionDoc {
	return ConnectionDoc{
		ID:        c.ID,
		Name:      c.Name,
		EndpointA: c.EndpointA,
		EndpointB: c.EndpointB,
	}
}

// Sequence lists the connections of t as ordered name pairs, in connection
// id order. Endpoints that do not resolve are written as "?<id>".
func Sequence(t topology.Topology) string {
	names := t.NodeNames()
	label := func(id topology.NodeID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return fmt.Sprintf("?%d", id)
	}
	pairs := make([]string, 0, len(t.Connections))
	for _, c := range t.Connections {
		pairs = append(pairs, "("+label(c.EndpointA)+","+label(c.EndpointB)+")")
	}
	return "Seq = [" + strings.Join(pairs, ", ") + "]"
}

// ExportFilename derives the download filename from a topology name: runs
// of whitespace become one underscore, path separators are replaced too and
// ".json" is appended. An empty name yields "topology.json".
func ExportFilename(name string) string {
	base := strings.Join(strings.Fields(name), "_")
	base = strings.NewReplacer("/", "_", "\\", "_").Replace(base)
	if base == "" {
		base = "topology"
	}
	return base + ".json"
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
