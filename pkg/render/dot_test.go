package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/slicetopo/pkg/topology"
)

func sample() topology.Topology {
	return topology.Topology{
		Name: "lab",
		Nodes: []topology.Node{
			{ID: 1, Name: "gw", Kind: topology.KindRouter, Image: "vyos", CPU: 1, MemoryGB: 2, DiskGB: 10, InternetEnabled: true, Position: topology.Position{X: 100, Y: 50}},
			{ID: 2, Name: "web", Kind: topology.KindHost, Image: "cirros", CPU: 2, MemoryGB: 4, DiskGB: 20, Position: topology.Position{X: -20.5, Y: -10}},
		},
		Connections: []topology.Connection{
			{ID: 1, Name: "Link 1", EndpointA: 1, EndpointB: 2},
			{ID: 2, Name: "Link 2", EndpointA: 2, EndpointB: 9},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		`graph "lab" {`,
		"layout=neato;",
		`n1 [label="gw", pos="100,-50!", shape=ellipse, style=filled, fillcolor=lightblue];`,
		`n2 [label="web", pos="-20.5,10!"];`,
		"n1 -- n2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "n9") {
		t.Error("ToDOT() drew a dangling connection")
	}
	if strings.Contains(dot, "->") {
		t.Error("ToDOT() produced directed edges")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true, LinkNames: true})

	if !strings.Contains(dot, `router · vyos`) {
		t.Error("ToDOT() detailed output missing kind and image")
	}
	if !strings.Contains(dot, `1 vCPU · 2 GB · 10 GB disk`) {
		t.Error("ToDOT() detailed output missing resources")
	}
	if !strings.Contains(dot, `n1 -- n2 [label="Link 1"];`) {
		t.Error("ToDOT() missing link label")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "graph {{{"); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}

func TestRender_Formats(t *testing.T) {
	dot := ToDOT(sample(), Options{})
	out, err := Render(context.Background(), dot, FormatDOT)
	if err != nil || string(out) != dot {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}
	if _, err := Render(context.Background(), dot, "gif"); err == nil {
		t.Error("Render() accepted an unknown format")
	}
}
