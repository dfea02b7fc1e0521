package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Flavors maps legacy flavor strings to {cpu, memoryGB, diskGB}.
var Flavors = map[string][3]int{
	"2GBRAM_2VCPUS_10GBRoot": {2, 2, 10},
	"4GBRAM_2VCPUS_20GBRoot": {2, 4, 20},
	"8GBRAM_4VCPUS_40GBRoot": {4, 8, 40},
}

// DefaultFlavor is used for unknown or missing flavors in legacy documents.
var DefaultFlavor = [3]int{topology.DefaultCPU, topology.DefaultMemoryGB, topology.DefaultDiskGB}

type importDoc struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	TopologyKind string        `json:"topologyKind"`
	Nodes        *[]importNode `json:"nodes"`
	Connections  *[]importConn `json:"connections"`
	Links        *[]importConn `json:"links"`
	Metadata     *importMeta   `json:"metadata"`
}

type importMeta struct {
	NextNodeID       flexInt `json:"nextNodeId"`
	NextConnectionID flexInt `json:"nextConnectionId"`
}

type importNode struct {
	ID       idKey              `json:"id"`
	Name     string             `json:"name"`
	Kind     string             `json:"kind"`
	Type     string             `json:"type"`
	Image    string             `json:"image"`
	Flavor   *string            `json:"flavor"`
	CPU      flexInt            `json:"cpu"`
	MemoryGB flexInt            `json:"memoryGB"`
	Memory   flexInt            `json:"memory"`
	DiskGB   flexInt            `json:"diskGB"`
	Disk     flexInt            `json:"disk"`
	Internet flexBool           `json:"internetEnabled"`
	Legacy   flexBool           `json:"internet"`
	Position *topology.Position `json:"position"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
}

type importConn struct {
	ID        idKey  `json:"id"`
	Name      string `json:"name"`
	EndpointA ref    `json:"endpointA"`
	EndpointB ref    `json:"endpointB"`
	Source    ref    `json:"source"`
	Target    ref    `json:"target"`
	From      ref    `json:"from"`
	To        ref    `json:"to"`
}

// Parse decodes an import document. Every failure is a single
// INVALID_IMPORT error; no partial result is returned.
func Parse(data []byte) (topology.Topology, error) {
	t, err := parse(data)
	if err != nil {
		return topology.Topology{}, apperrors.New(apperrors.ErrCodeInvalidImport, "import failed: %v", err)
	}
	return t, nil
}

// Import parses data and, on success, loads it into s. On failure s is
// untouched.
func Import(s *topology.Store, data []byte) error {
	t, err := Parse(data)
	if err != nil {
		return err
	}
	s.Load(t)
	return nil
}

func parse(data []byte) (topology.Topology, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return topology.Topology{}, fmt.Errorf("document must be a JSON object")
	}
	var doc importDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return topology.Topology{}, fmt.Errorf("decode: %w", err)
	}
	if doc.Nodes == nil {
		return topology.Topology{}, fmt.Errorf(`missing "nodes" array`)
	}
	conns := doc.Connections
	if conns == nil {
		conns = doc.Links
	}
	if conns == nil {
		return topology.Topology{}, fmt.Errorf(`missing "connections" array`)
	}

	t := topology.Topology{
		Name:        doc.Name,
		Description: doc.Description,
		Kind:        parseTopologyKind(doc.TopologyKind),
	}

	nodeIDs, keepNodeIDs := nodeIDPlan(*doc.Nodes)
	byName := make(map[string]topology.NodeID)
	byOldKey := make(map[string]topology.NodeID)
	for i, in := range *doc.Nodes {
		n, err := convertNode(in, nodeIDs[i])
		if err != nil {
			label := in.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i)
			}
			return topology.Topology{}, fmt.Errorf("node %s: %w", label, err)
		}
		if _, dup := byName[n.Name]; !dup {
			byName[n.Name] = n.ID
		}
		if in.ID.set() {
			if _, dup := byOldKey[in.ID.key]; !dup {
				byOldKey[in.ID.key] = n.ID
			}
		}
		t.Nodes = append(t.Nodes, n)
	}

	// Names win over old ids; a string that is neither is an error.
	resolve := func(r ref) (topology.NodeID, error) {
		switch {
		case !r.set:
			return 0, fmt.Errorf("missing endpoint")
		case r.name != "":
			if id, ok := byName[r.name]; ok {
				return id, nil
			}
			if id, ok := byOldKey[strings.TrimSpace(r.name)]; ok {
				return id, nil
			}
			return 0, fmt.Errorf("unknown node %q", r.name)
		case keepNodeIDs:
			return topology.NodeID(r.id), nil
		default:
			if id, ok := byOldKey[strconv.Itoa(r.id)]; ok {
				return id, nil
			}
			// Left dangling for the validator, like ReplaceAll does.
			return topology.NodeID(r.id), nil
		}
	}

	connIDs, keepConnIDs := connIDPlan(*conns)
	for i, in := range *conns {
		a, err := resolve(first(in.EndpointA, in.Source, in.From))
		if err == nil {
			var b topology.NodeID
			if b, err = resolve(first(in.EndpointB, in.Target, in.To)); err == nil {
				c := topology.Connection{ID: connIDs[i], Name: in.Name, EndpointA: a, EndpointB: b}
				if c.Name == "" {
					c.Name = fmt.Sprintf("Link %d", c.ID)
				}
				t.Connections = append(t.Connections, c)
				continue
			}
		}
		return topology.Topology{}, fmt.Errorf("connection #%d: %w", i, err)
	}

	// Counters only carry over when the ids they count were kept.
	if m := doc.Metadata; m != nil {
		if keepNodeIDs && m.NextNodeID.val > 1 {
			t.LastNodeID = topology.NodeID(m.NextNodeID.val - 1)
		}
		if keepConnIDs && m.NextConnectionID.val > 1 {
			t.LastConnectionID = topology.ConnectionID(m.NextConnectionID.val - 1)
		}
	}
	return t, nil
}

// nodeIDPlan keeps the document's ids when all are unique and positive and
// renumbers from 1 otherwise.
func nodeIDPlan(nodes []importNode) ([]topology.NodeID, bool) {
	ids := make([]topology.NodeID, len(nodes))
	seen := make(map[int]bool, len(nodes))
	keep := true
	for i, n := range nodes {
		if !n.ID.numeric || n.ID.num <= 0 || seen[n.ID.num] {
			keep = false
			break
		}
		seen[n.ID.num] = true
		ids[i] = topology.NodeID(n.ID.num)
	}
	if !keep {
		for i := range ids {
			ids[i] = topology.NodeID(i + 1)
		}
	}
	return ids, keep
}

func connIDPlan(conns []importConn) ([]topology.ConnectionID, bool) {
	ids := make([]topology.ConnectionID, len(conns))
	seen := make(map[int]bool, len(conns))
	for i, c := range conns {
		if !c.ID.numeric || c.ID.num <= 0 || seen[c.ID.num] {
			for j := range ids {
				ids[j] = topology.ConnectionID(j + 1)
			}
			return ids, false
		}
		seen[c.ID.num] = true
		ids[i] = topology.ConnectionID(c.ID.num)
	}
	return ids, true
}

func convertNode(in importNode, id topology.NodeID) (topology.Node, error) {
	n := topology.Node{
		ID:              id,
		Name:            strings.TrimSpace(in.Name),
		Kind:            topology.DefaultKind,
		Image:           strings.TrimSpace(in.Image),
		InternetEnabled: bool(in.Internet || in.Legacy),
		Position:        topology.Position{X: in.X, Y: in.Y},
	}
	if n.Name == "" && in.ID.set() && !in.ID.numeric {
		n.Name = in.ID.key
	}
	if n.Name == "" {
		n.Name = fmt.Sprintf("PC%d", id)
	}
	if raw := firstNonEmpty(in.Kind, in.Type); raw != "" {
		k, err := topology.ParseKind(raw)
		if err != nil {
			return topology.Node{}, err
		}
		n.Kind = k
	}
	if n.Image == "" {
		n.Image = topology.DefaultImage
	}
	if err := apperrors.ValidateImageName(n.Image); err != nil {
		return topology.Node{}, err
	}
	if in.Position != nil {
		n.Position = *in.Position
	}

	res := DefaultFlavor
	if in.Flavor != nil {
		if f, ok := Flavors[strings.TrimSpace(*in.Flavor)]; ok {
			res = f
		}
	}
	pick := func(r topology.Resource, fallback int, vals ...flexInt) int {
		for _, v := range vals {
			if v.set {
				return topology.ClampResource(r, v.val)
			}
		}
		return fallback
	}
	n.CPU = pick(topology.ResourceCPU, res[0], in.CPU)
	n.MemoryGB = pick(topology.ResourceMemory, res[1], in.MemoryGB, in.Memory)
	n.DiskGB = pick(topology.ResourceDisk, res[2], in.DiskGB, in.Disk)
	return n, nil
}

func parseTopologyKind(s string) topology.TopologyKind {
	for _, k := range []topology.TopologyKind{topology.TopologyCustom, topology.TopologyGenerated, topology.TopologyImported} {
		if strings.EqualFold(s, string(k)) {
			return k
		}
	}
	return topology.TopologyImported
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
