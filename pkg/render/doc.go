// Package render draws a topology with Graphviz.
//
// # Overview
//
// [ToDOT] converts a [topology.Topology] into an undirected DOT graph for the
// neato engine. Every node is pinned at its canvas position (pos="x,y!"), so
// the picture matches the editor rather than a computed layout. The canvas y
// axis points down and Graphviz's points up; ToDOT flips it.
//
//	dot := render.ToDOT(store.Snapshot(), render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Node kinds map to shapes:
//
//	host    box
//	router  ellipse
//	switch  hexagon
//	server  box3d
//
// Internet-enabled nodes are filled light blue.
//
// # Formats
//
// SVG and PNG are rendered in-process with [github.com/goccy/go-graphviz].
// PDF goes through SVG and the external rsvg-convert tool (librsvg).
package render
