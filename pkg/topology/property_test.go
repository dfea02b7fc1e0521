package topology

import (
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// checkInvariants verifies referential integrity and InterfaceIDs
// consistency. It returns a description of the first violation found.
func checkInvariants(s *Store) error {
	want := make(map[NodeID][]ConnectionID)
	seen := make(map[pair]bool)
	for _, c := range s.Connections() {
		if c.EndpointA == c.EndpointB {
			return fmt.Errorf("connection %d is a self-loop", c.ID)
		}
		for _, end := range []NodeID{c.EndpointA, c.EndpointB} {
			if _, ok := s.Node(end); !ok {
				return fmt.Errorf("connection %d references missing node %d", c.ID, end)
			}
			want[end] = append(want[end], c.ID)
		}
		p := pairOf(c.EndpointA, c.EndpointB)
		if seen[p] {
			return fmt.Errorf("duplicate connection between %d and %d", p.lo, p.hi)
		}
		seen[p] = true
	}
	for _, n := range s.Nodes() {
		got := slices.Sorted(slices.Values(n.InterfaceIDs))
		exp := slices.Sorted(slices.Values(want[n.ID]))
		if !slices.Equal(got, exp) {
			return fmt.Errorf("node %d InterfaceIDs = %v, want %v", n.ID, got, exp)
		}
	}
	if len(seen) != len(s.pairs) || !slices.Equal(slices.SortedFunc(maps.Keys(seen), comparePairs), sortedPairs(s.pairs)) {
		return fmt.Errorf("pair index out of sync")
	}
	return nil
}

func sortedPairs(m map[pair]ConnectionID) []pair {
	return slices.SortedFunc(maps.Keys(m), comparePairs)
}

func comparePairs(a, b pair) int {
	if a.lo != b.lo {
		return int(a.lo - b.lo)
	}
	return int(a.hi - b.hi)
}

// applyOp decodes one generated integer into a store operation over a small
// id space so that collisions, repeats and misses are frequent.
func applyOp(s *Store, code int) {
	a := NodeID(code/4%8 + 1)
	b := NodeID(code/32%8 + 1)
	switch code % 4 {
	case 0:
		_, _ = s.CreateNode(Position{X: float64(a), Y: float64(b)}, NodePatch{})
	case 1:
		s.DeleteNode(a)
	case 2:
		s.CreateConnection(a, b)
	case 3:
		s.DeleteConnection(ConnectionID(a))
	}
}

func TestStoreInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("integrity holds after every mutation", prop.ForAll(
		func(ops []int) bool {
			s := New("prop")
			for _, op := range ops {
				applyOp(s, op)
				if err := checkInvariants(s); err != nil {
					t.Log(err)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 255)),
	))

	properties.Property("self connection is always rejected", prop.ForAll(
		func(ops []int, pick int) bool {
			s := New("prop")
			for _, op := range ops {
				applyOp(s, op)
			}
			nodes := s.Nodes()
			if len(nodes) == 0 {
				return true
			}
			id := nodes[pick%len(nodes)].ID
			before := s.ConnectionCount()
			_, ok := s.CreateConnection(id, id)
			return !ok && s.ConnectionCount() == before
		},
		gen.SliceOf(gen.IntRange(0, 255)),
		gen.IntRange(0, 1000),
	))

	properties.Property("connect then reverse connect leaves one connection", prop.ForAll(
		func(ops []int) bool {
			s := New("prop")
			for _, op := range ops {
				applyOp(s, op)
			}
			a, _ := s.CreateNode(Position{}, NodePatch{})
			b, _ := s.CreateNode(Position{}, NodePatch{})
			s.CreateConnection(a.ID, b.ID)
			s.CreateConnection(b.ID, a.ID)
			n := 0
			for _, c := range s.Connections() {
				if pairOf(c.EndpointA, c.EndpointB) == pairOf(a.ID, b.ID) {
					n++
				}
			}
			return n == 1
		},
		gen.SliceOf(gen.IntRange(0, 255)),
	))

	properties.Property("delete node removes it and its connections idempotently", prop.ForAll(
		func(ops []int, target int) bool {
			s := New("prop")
			for _, op := range ops {
				applyOp(s, op)
			}
			id := NodeID(target%8 + 1)
			s.DeleteNode(id)
			nodes, conns := s.NodeCount(), s.ConnectionCount()
			s.DeleteNode(id)
			if s.NodeCount() != nodes || s.ConnectionCount() != conns {
				return false
			}
			if _, ok := s.Node(id); ok {
				return false
			}
			for _, c := range s.Connections() {
				if c.Touches(id) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 255)),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
