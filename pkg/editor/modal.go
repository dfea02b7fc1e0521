package editor

import (
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// EditSession is an open edit modal. Its exported fields are the form
// values; numeric fields are free text until Commit.
type EditSession struct {
	Name     string
	Kind     string
	Image    string
	CPU      string
	MemoryGB string
	DiskGB   string
	Internet bool

	c    *Controller
	node topology.NodeID
	done bool
}

func newEditSession(c *Controller, n topology.Node) *EditSession {
	return &EditSession{
		Name:     n.Name,
		Kind:     string(n.Kind),
		Image:    n.Image,
		CPU:      strconv.Itoa(n.CPU),
		MemoryGB: strconv.Itoa(n.MemoryGB),
		DiskGB:   strconv.Itoa(n.DiskGB),
		Internet: n.InternetEnabled,
		c:        c,
		node:     n.ID,
	}
}

// Node returns the id of the node being edited.
func (e *EditSession) Node() topology.NodeID { return e.node }

// Patch converts the form values into a node patch. Numbers go through the
// clamp-and-default policy; the kind must be one of topology.Kinds.
func (e *EditSession) Patch() (topology.NodePatch, error) {
	kind, err := topology.ParseKind(e.Kind)
	if err != nil {
		return topology.NodePatch{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "kind")
	}
	return topology.NodePatch{
		Name:            topology.Ptr(strings.TrimSpace(e.Name)),
		Kind:            &kind,
		Image:           topology.Ptr(strings.TrimSpace(e.Image)),
		CPU:             topology.Ptr(topology.CoerceResource(topology.ResourceCPU, e.CPU)),
		MemoryGB:        topology.Ptr(topology.CoerceResource(topology.ResourceMemory, e.MemoryGB)),
		DiskGB:          topology.Ptr(topology.CoerceResource(topology.ResourceDisk, e.DiskGB)),
		InternetEnabled: topology.Ptr(e.Internet),
	}, nil
}

// Commit applies the form to the node and closes the modal. On error the
// modal stays open and the node is unchanged.
func (e *EditSession) Commit() error {
	if e.done {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "edit session is closed")
	}
	p, err := e.Patch()
	if err != nil {
		return err
	}
	if err := e.c.store.UpdateNode(e.node, p); err != nil {
		return err
	}
	e.close()
	e.c.logger.Debug("node updated", "node", e.node)
	e.c.mutated("node.update")
	return nil
}

// Discard closes the modal without applying anything.
func (e *EditSession) Discard() { e.close() }

func (e *EditSession) close() {
	e.done = true
	if e.c.modal == e {
		e.c.modal = nil
	}
}
