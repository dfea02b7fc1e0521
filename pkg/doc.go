// Package pkg provides the core libraries for slicetopo topology authoring.
//
// # Overview
//
// Slicetopo draws network topologies of hosts, routers, switches and servers
// on a fixed canvas, checks them, and hands them to a Slice Manager that
// provisions the lab. The pkg directory is organized into four areas:
//
//  1. Model: [topology] holds nodes and connections and enforces the graph
//     rules (no self-loops, one connection per node pair).
//  2. Editing: [editor] turns pointer and keyboard gestures into store
//     operations, and [layout] generates preset batches next to the
//     existing drawing.
//  3. Checking and exchange: [validate], [serialize] and [render].
//  4. Infrastructure: [draft] persistence, [slicemanager] submission,
//     [config], [observability], [errors] and [buildinfo].
//
// # Architecture
//
// The typical data flow:
//
//	gestures (CLI, terminal editor, HTTP API)
//	         ↓
//	    [editor] controller (link mode, drag, edit form)
//	         ↓
//	    [topology] store  ←  [layout] preset batches
//	         ↓
//	    [validate] report
//	         ↓
//	    [serialize] export document / Slice Manager payload
//	         ↓
//	    [draft] store, [slicemanager] submission, [render] drawings
//
// # Quick Start
//
// Generate a star, connect a gateway to it and submit the result:
//
//	s := topology.New("Lab 1")
//	ctl := editor.New(s, editor.Options{})
//
//	vp := layout.Viewport{Width: topology.CanvasSize, Height: topology.CanvasSize}
//	batch, _ := ctl.Generate(layout.PresetStar, layout.Params{NodeCount: 4}, vp)
//
//	gw := ctl.AddNode(topology.Position{X: 100, Y: 100})
//	ctl.ToggleLinkMode()
//	ctl.Click(gw.ID)
//	ctl.Click(batch.Nodes[0].ID)
//
//	client, _ := slicemanager.NewClient(slicemanager.Config{URL: url}, logger)
//	res, err := slicemanager.NewSubmitter(client, validate.Options{}, logger).Send(ctx, s.Snapshot())
//
// # Testing
//
//	go test ./pkg/...                                   # All tests
//	go test -run Example ./pkg/...                      # Examples only
//	SLICETOPO_TEST_REDIS=localhost:6379 go test ./pkg/draft
//
// [topology]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/topology
// [editor]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/editor
// [layout]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/layout
// [validate]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/validate
// [serialize]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/serialize
// [render]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/render
// [draft]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/draft
// [slicemanager]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/slicemanager
// [config]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/slicetopo/pkg/buildinfo
package pkg
