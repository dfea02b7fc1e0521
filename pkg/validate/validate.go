// Package validate checks a topology before it leaves the editor.
//
// Validation is a pure function over a [topology.Topology] snapshot. Every
// rule runs and every violation is collected into one [Report]; nothing is
// fixed automatically and the input is never mutated.
//
//	r := validate.Validate(store.Snapshot(), validate.Options{})
//	if !r.Valid {
//	    return r.Err()
//	}
package validate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Severity controls whether isolated nodes block submission.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ParseSeverity accepts "error" and "warning" (case-insensitive). The empty
// string maps to [SeverityError].
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidInput, "unknown severity %q (valid: error, warning)", s)
}

// Options tunes the rule set.
type Options struct {
	// IsolatedNodes is the severity of the isolated-node rule. Zero means
	// SeverityError.
	IsolatedNodes Severity
}

// Report is the validation outcome.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// Err returns nil for a valid report and a *errors.ValidationError listing
// every problem otherwise.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return &apperrors.ValidationError{Problems: slices.Clone(r.Errors)}
}

// Validate runs every rule over t.
func Validate(t topology.Topology, opts Options) Report {
	v := &checker{t: t, opts: opts}
	v.structure()
	v.names()
	v.integrity()
	v.resources()
	v.isolation()
	return Report{
		Valid:    len(v.errs) == 0,
		Errors:   append([]string{}, v.errs...),
		Warnings: v.warns,
	}
}

type checker struct {
	t     topology.Topology
	opts  Options
	errs  []string
	warns []string
}

func (v *checker) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}

func (v *checker) structure() {
	if len(v.t.Nodes) == 0 {
		v.fail("topology must contain at least one node")
	}
	if strings.TrimSpace(v.t.Name) == "" {
		v.fail("topology name must not be empty")
	}
}

func (v *checker) names() {
	seen := make(map[string]topology.NodeID)
	ids := make(map[topology.NodeID]bool)
	for _, n := range v.t.Nodes {
		if ids[n.ID] {
			v.fail("node id %d is used more than once", n.ID)
		}
		ids[n.ID] = true

		name := strings.TrimSpace(n.Name)
		if name == "" {
			v.fail("node %d has no name", n.ID)
			continue
		}
		if first, dup := seen[name]; dup {
			v.fail("node name %q is used by nodes %d and %d", name, first, n.ID)
			continue
		}
		seen[name] = n.ID
	}
}

// integrity checks what ReplaceAll does not: endpoints exist, no self-loops
// or repeated pairs, and interfaceIds mirror the connection set.
func (v *checker) integrity() {
	nodes := make(map[topology.NodeID]bool, len(v.t.Nodes))
	for _, n := range v.t.Nodes {
		nodes[n.ID] = true
	}

	type key struct{ lo, hi topology.NodeID }
	pairs := make(map[key]topology.ConnectionID)
	want := make(map[topology.NodeID]map[topology.ConnectionID]bool)
	connIDs := make(map[topology.ConnectionID]bool)

	for _, c := range v.t.Connections {
		if connIDs[c.ID] {
			v.fail("connection id %d is used more than once", c.ID)
		}
		connIDs[c.ID] = true

		label := c.Name
		if label == "" {
			label = fmt.Sprintf("connection %d", c.ID)
		}
		dangling := false
		for _, end := range []topology.NodeID{c.EndpointA, c.EndpointB} {
			if !nodes[end] {
				v.fail("%s references missing node %d", label, end)
				dangling = true
				continue
			}
			if want[end] == nil {
				want[end] = make(map[topology.ConnectionID]bool)
			}
			want[end][c.ID] = true
		}
		if c.EndpointA == c.EndpointB {
			v.fail("%s connects node %d to itself", label, c.EndpointA)
			continue
		}
		if dangling {
			continue
		}

		k := key{min(c.EndpointA, c.EndpointB), max(c.EndpointA, c.EndpointB)}
		if first, dup := pairs[k]; dup {
			v.fail("%s duplicates connection %d between nodes %d and %d", label, first, k.lo, k.hi)
		} else {
			pairs[k] = c.ID
		}
	}

	for _, n := range v.t.Nodes {
		got := make(map[topology.ConnectionID]bool, len(n.InterfaceIDs))
		for _, id := range n.InterfaceIDs {
			got[id] = true
		}
		if len(got) != len(n.InterfaceIDs) || !maps.Equal(got, nonNil(want[n.ID])) {
			v.fail("node %q interfaces %v do not match its connections %v",
				n.Name, n.InterfaceIDs, slices.Sorted(maps.Keys(want[n.ID])))
		}
	}
}

func nonNil(m map[topology.ConnectionID]bool) map[topology.ConnectionID]bool {
	if m == nil {
		return map[topology.ConnectionID]bool{}
	}
	return m
}

func (v *checker) resources() {
	for _, n := range v.t.Nodes {
		if !n.Kind.Valid() {
			v.fail("node %q has unknown kind %q", n.Name, n.Kind)
		}
		checks := []struct {
			r   topology.Resource
			val int
		}{
			{topology.ResourceCPU, n.CPU},
			{topology.ResourceMemory, n.MemoryGB},
			{topology.ResourceDisk, n.DiskGB},
		}
		for _, c := range checks {
			if floor := topology.ResourceMinimums[c.r]; c.val < floor {
				v.fail("node %q %s %d is below the minimum of %d", n.Name, c.r, c.val, floor)
			}
		}
	}
}

func (v *checker) isolation() {
	if len(v.t.Nodes) <= 1 {
		return
	}
	for _, n := range v.t.Nodes {
		if !n.Isolated() {
			continue
		}
		msg := fmt.Sprintf("node %q is isolated (no connections)", n.Name)
		if v.opts.IsolatedNodes == SeverityWarning {
			v.warns = append(v.warns, msg)
		} else {
			v.errs = append(v.errs, msg)
		}
	}
}
