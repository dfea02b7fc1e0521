package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds kind, image and resources to node labels.
	Detailed bool

	// LinkNames labels edges with connection names.
	LinkNames bool
}

var shapes = map[topology.Kind]string{
	topology.KindHost:   "box",
	topology.KindRouter: "ellipse",
	topology.KindSwitch: "hexagon",
	topology.KindServer: "box3d",
}

// ToDOT converts t to Graphviz DOT. Connections with a missing endpoint are
// left out.
func ToDOT(t topology.Topology, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %q {\n", t.Name)
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#555555\"];\n")
	buf.WriteString("\n")

	ids := make(map[topology.NodeID]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		ids[n.ID] = true
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, c := range t.Connections {
		if !ids[c.EndpointA] || !ids[c.EndpointB] {
			continue
		}
		if opts.LinkNames {
			fmt.Fprintf(&buf, "  n%d -- n%d [label=%q];\n", c.EndpointA, c.EndpointB, c.Name)
		} else {
			fmt.Fprintf(&buf, "  n%d -- n%d;\n", c.EndpointA, c.EndpointB)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n topology.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	return fmt.Sprintf("%s\n%s · %s\n%d vCPU · %d GB · %d GB disk",
		n.Name, n.Kind, n.Image, n.CPU, n.MemoryGB, n.DiskGB)
}

func fmtAttrs(n topology.Node, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(n.Position.X), fmtCoord(-n.Position.Y)),
	}
	if shape, ok := shapes[n.Kind]; ok && shape != "box" {
		attrs = append(attrs, "shape="+shape, "style=filled")
	}
	if n.InternetEnabled {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

func fmtCoord(v float64) string {
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Format is an output format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// Render produces dot in the given format.
func Render(ctx context.Context, dot string, f Format) ([]byte, error) {
	switch f {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return renderGraphviz(ctx, dot, graphviz.PNG)
	case FormatPDF:
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		return ToPDF(ctx, svg)
	}
	return nil, fmt.Errorf("unsupported format %q (valid: dot, svg, png, pdf)", f)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
