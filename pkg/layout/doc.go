// Package layout generates preset topologies.
//
// # Presets
//
// Each [Preset] is a deterministic recipe that places a batch of nodes
// around a caller-supplied centre and links them:
//
//   - star: one hub plus NodeCount leaves on a circle, leaf-hub links only
//   - tree: a binary tree with Levels rows; row L holds 2^L nodes and each
//     child links to the parent at index floor(i/2) in the row above
//   - ring: NodeCount nodes on a circle, each linked to its successor
//   - bus: NodeCount nodes on a horizontal line, neighbours linked
//   - mesh: a Rows x Cols grid, each cell linked right and down
//   - fullmesh: NodeCount nodes on a circle, every pair linked
//
// Nodes are named PC{index}-t{tier}. Numbering restarts at zero for every
// batch, so two batches can produce the same names.
//
// # Generating
//
// [Plan] is the pure part: it returns positions, names and index pairs.
// [Generate] materializes a plan through a [topology.Store], so ids come from
// the store's own sequence and its connection rules apply. A ring of one
// node, for example, yields a single isolated node because the store
// rejects the self-loop.
//
//	center := layout.Anchor(s.Nodes(), viewport, layout.DefaultAnchorOffset)
//	batch, err := layout.Generate(s, layout.PresetRing, layout.Params{NodeCount: 6}, center)
//
// [Plan] and [Generate] do not range-check parameters. [CheckLimits] bounds
// a batch by [MaxNodes] and [MaxConnections]; the editor calls it before
// generating anything.
package layout
