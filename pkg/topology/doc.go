// Package topology provides the in-memory graph of a slice topology being
// authored: nodes (virtual machines and network devices), undirected
// connections between them, and the [Store] through which every mutation
// passes.
//
// # Model
//
// A [Node] is a placed device with resource hints (cpu, memory, disk), an
// OS image name, an internet flag and a canvas [Position]. A [Connection]
// links exactly two distinct nodes. Both are identified by process-local
// ids allocated monotonically by the store; ids are never reused until
// [Store.Clear] resets the counters.
//
// Connections store node ids, never pointers, and each node carries the
// derived InterfaceIDs list. The store keeps that list equal to the set of
// connections touching the node after every mutation:
//
//	s := topology.New("lab")
//	a, _ := s.CreateNode(topology.Position{X: 0, Y: 0}, topology.NodePatch{})
//	b, _ := s.CreateNode(topology.Position{X: 200, Y: 0}, topology.NodePatch{})
//	c, ok := s.CreateConnection(a.ID, b.ID)  // ok == true
//	_, ok = s.CreateConnection(b.ID, a.ID)   // ok == false, pair exists
//	s.DeleteNode(a.ID)                       // cascades to c
//
// # Resource Policy
//
// Numeric resource fields are never rejected. Values below the per-field
// minimum, and free text that does not parse, fall back to the minimum
// listed in [ResourceMinimums]. See [ClampResource] and [CoerceResource].
//
// # Concurrency
//
// A Store is owned by one editing session and is not safe for concurrent
// use. Hosts that share a store between goroutines (the HTTP API) must
// serialize access themselves.
package topology
