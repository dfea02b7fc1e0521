package validate

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

func containsProblem(problems []string, substr string) bool {
	for _, p := range problems {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}

func TestValidateEmptyTopology(t *testing.T) {
	r := Validate(topology.New("lab").Snapshot(), Options{})
	if r.Valid {
		t.Fatal("empty topology reported valid")
	}
	if !containsProblem(r.Errors, "at least one node") {
		t.Errorf("errors = %v, want mention of at least one node", r.Errors)
	}
}

func TestValidateSingleNode(t *testing.T) {
	s := topology.New("lab")
	if _, err := s.CreateNode(topology.Position{}, topology.NodePatch{}); err != nil {
		t.Fatal(err)
	}
	r := Validate(s.Snapshot(), Options{})
	if !r.Valid || len(r.Errors) != 0 {
		t.Errorf("single node: valid=%v errors=%v", r.Valid, r.Errors)
	}
}

func TestValidateCollectsAll(t *testing.T) {
	s := topology.New("  ")
	s.CreateNode(topology.Position{}, topology.NodePatch{Name: topology.Ptr("a")})
	s.CreateNode(topology.Position{}, topology.NodePatch{Name: topology.Ptr("a")})

	r := Validate(s.Snapshot(), Options{})
	for _, want := range []string{"name must not be empty", `"a" is used by nodes 1 and 2`, "isolated"} {
		if !containsProblem(r.Errors, want) {
			t.Errorf("missing %q in %v", want, r.Errors)
		}
	}
	if len(r.Errors) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(r.Errors), r.Errors)
	}
}

func TestValidateIsolatedSeverity(t *testing.T) {
	s := topology.New("lab")
	a, _ := s.CreateNode(topology.Position{}, topology.NodePatch{})
	b, _ := s.CreateNode(topology.Position{}, topology.NodePatch{})
	s.CreateNode(topology.Position{}, topology.NodePatch{Name: topology.Ptr("lonely")})
	s.CreateConnection(a.ID, b.ID)

	tests := []struct {
		name      string
		severity  Severity
		wantValid bool
		wantWarns int
	}{
		{"DefaultBlocks", "", false, 0},
		{"Error", SeverityError, false, 0},
		{"Warning", SeverityWarning, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(s.Snapshot(), Options{IsolatedNodes: tt.severity})
			if r.Valid != tt.wantValid || len(r.Warnings) != tt.wantWarns {
				t.Errorf("valid=%v warnings=%v errors=%v", r.Valid, r.Warnings, r.Errors)
			}
			all := append(r.Errors, r.Warnings...)
			if !containsProblem(all, `"lonely" is isolated`) {
				t.Errorf("isolated node not reported: %v", all)
			}
		})
	}
}

func TestValidateIntegrity(t *testing.T) {
	nodes := []topology.Node{
		{ID: 1, Name: "a", Kind: topology.KindHost, CPU: 1, MemoryGB: 1, DiskGB: 10},
		{ID: 2, Name: "b", Kind: topology.KindRouter, CPU: 1, MemoryGB: 1, DiskGB: 10},
	}

	tests := []struct {
		name  string
		conns []topology.Connection
		want  string
	}{
		{"Dangling", []topology.Connection{{ID: 1, Name: "Link 1", EndpointA: 1, EndpointB: 9}}, "references missing node 9"},
		{"SelfLoop", []topology.Connection{{ID: 1, Name: "Link 1", EndpointA: 1, EndpointB: 1}}, "to itself"},
		{"DuplicatePair", []topology.Connection{
			{ID: 1, Name: "Link 1", EndpointA: 1, EndpointB: 2},
			{ID: 2, Name: "Link 2", EndpointA: 2, EndpointB: 1},
		}, "duplicates connection 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := topology.New("lab")
			s.ReplaceAll(nodes, tt.conns)
			r := Validate(s.Snapshot(), Options{})
			if r.Valid {
				t.Fatal("invalid topology reported valid")
			}
			if !containsProblem(r.Errors, tt.want) {
				t.Errorf("errors = %v, want %q", r.Errors, tt.want)
			}
		})
	}

	t.Run("StaleInterfaces", func(t *testing.T) {
		snap := topology.Topology{
			Name: "lab",
			Nodes: []topology.Node{
				{ID: 1, Name: "a", Kind: topology.KindHost, CPU: 1, MemoryGB: 1, DiskGB: 10, InterfaceIDs: []topology.ConnectionID{1, 7}},
				{ID: 2, Name: "b", Kind: topology.KindHost, CPU: 1, MemoryGB: 1, DiskGB: 10, InterfaceIDs: []topology.ConnectionID{1}},
			},
			Connections: []topology.Connection{{ID: 1, EndpointA: 1, EndpointB: 2}},
		}
		r := Validate(snap, Options{})
		if !containsProblem(r.Errors, `node "a" interfaces`) || len(r.Errors) != 1 {
			t.Errorf("errors = %v", r.Errors)
		}
	})
}

func TestValidateResources(t *testing.T) {
	s := topology.New("lab")
	s.ReplaceAll([]topology.Node{
		{ID: 1, Name: "tiny", Kind: "toaster", CPU: 0, MemoryGB: 1, DiskGB: 5},
	}, nil)
	r := Validate(s.Snapshot(), Options{})
	for _, want := range []string{`unknown kind "toaster"`, "cpu 0 is below the minimum of 1", "disk 5 is below the minimum of 10"} {
		if !containsProblem(r.Errors, want) {
			t.Errorf("missing %q in %v", want, r.Errors)
		}
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	s := topology.New("lab")
	a, _ := s.CreateNode(topology.Position{}, topology.NodePatch{})
	b, _ := s.CreateNode(topology.Position{}, topology.NodePatch{})
	s.CreateConnection(a.ID, b.ID)
	before := s.Snapshot()

	Validate(before, Options{})

	after := s.Snapshot()
	if len(after.Nodes) != 2 || len(after.Connections) != 1 || after.Nodes[0].Name != before.Nodes[0].Name {
		t.Error("validation changed the topology")
	}
}

func TestReportErr(t *testing.T) {
	if err := (Report{Valid: true}).Err(); err != nil {
		t.Errorf("valid report Err() = %v", err)
	}
	err := Report{Errors: []string{"x", "y"}}.Err()
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) || len(ve.Problems) != 2 {
		t.Fatalf("Err() = %#v", err)
	}
	if ve.Code() != apperrors.ErrCodeValidationFailed {
		t.Errorf("code = %s", ve.Code())
	}
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{"": SeverityError, "ERROR": SeverityError, "warning": SeverityWarning, "warn": SeverityWarning} {
		if got, err := ParseSeverity(in); err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("ParseSeverity(fatal) error = %v", err)
	}
}
