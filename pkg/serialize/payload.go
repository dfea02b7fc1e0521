package serialize

import "github.com/matzehuels/slicetopo/pkg/topology"

// LinkBandwidth is the bandwidth sent for every link. It is not user
// configurable.
const LinkBandwidth = "1Gbps"

// Payload is the Slice Manager submission body. The validate tags are
// checked by the submission client before anything is sent.
type Payload struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	Nodes       map[string]PayloadNode `json:"nodes" validate:"required,min=1,dive,keys,required,endkeys"`
	Links       []PayloadLink          `json:"links" validate:"dive"`
}

// PayloadNode is one node of the payload, keyed by name in [Payload.Nodes].
type PayloadNode struct {
	Type      string            `json:"type" validate:"required,oneof=host router switch server"`
	Image     string            `json:"image" validate:"required"`
	Internet  bool              `json:"internet"`
	Resources Resources         `json:"resources"`
	Position  topology.Position `json:"position"`
}

// Resources are the requested VM resources of a payload node.
type Resources struct {
	CPU    int `json:"cpu" validate:"min=1"`
	Memory int `json:"memory" validate:"min=1"`
	Disk   int `json:"disk" validate:"min=10"`
}

// PayloadLink is one link of the payload. Endpoints are node names.
type PayloadLink struct {
	ID        string `json:"id" validate:"required"`
	Source    string `json:"source" validate:"required,nefield=Target"`
	Target    string `json:"target" validate:"required"`
	Bandwidth string `json:"bandwidth" validate:"required"`
}

// NewPayload builds the submission payload for t. Connections whose
// endpoints do not resolve are skipped; the validator reports them.
func NewPayload(t topology.Topology) Payload {
	p := Payload{
		Name:        t.Name,
		Description: t.Description,
		Nodes:       make(map[string]PayloadNode, len(t.Nodes)),
		Links:       make([]PayloadLink, 0, len(t.Connections)),
	}
	for _, n := range t.Nodes {
		p.Nodes[n.Name] = PayloadNode{
			Type:     string(n.Kind),
			Image:    n.Image,
			Internet: n.InternetEnabled,
			Resources: Resources{
				CPU:    n.CPU,
				Memory: n.MemoryGB,
				Disk:   n.DiskGB,
			},
			Position: n.Position,
		}
	}
	names := t.NodeNames()
	for _, c := range t.Connections {
		src, okA := names[c.EndpointA]
		dst, okB := names[c.EndpointB]
		if !okA || !okB {
			continue
		}
		p.Links = append(p.Links, PayloadLink{
			ID:        c.Name,
			Source:    src,
			Target:    dst,
			Bandwidth: LinkBandwidth,
		})
	}
	return p
}
