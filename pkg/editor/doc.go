// Package editor implements the interaction controller of the topology
// editor.
//
// A [Controller] owns the short-lived interaction state of one editing
// session: link mode, the selected node, the node being dragged, the node
// targeted by the context menu and the open edit modal. It turns pointer and
// key events into calls on a [topology.Store]; it never renders anything.
//
// # Link mode
//
// Link mode is a small state machine:
//
//	Idle ──ToggleLinkMode──▶ Armed ──Click(a)──▶ SourceSelected
//	                           ▲                      │
//	                           └──── Click(b), b≠a ───┘  (connection a-b)
//
// Cancel (Escape) or toggling again returns to Idle from any state. With
// [ExitAfterConnect] the controller goes back to Idle after each connection
// instead of staying armed.
//
// # Dragging
//
// PointerDown records the offset between the pointer and the node;
// PointerMove places the node at pointer minus offset without clamping;
// PointerUp ends the drag wherever the pointer is. Only one node can be
// dragged at a time.
//
// # Editing
//
// DoubleClick (or ContextEdit) opens an [EditSession] pre-filled with the
// node's current values. Fields hold free text the way a form does; Commit
// coerces numbers with [topology.CoerceResource] and applies the result in
// one [topology.Store.UpdateNode] call.
//
// Controllers are not safe for concurrent use.
package editor
