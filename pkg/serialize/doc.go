// Package serialize converts topologies to and from their external JSON
// shapes.
//
// Three shapes live here:
//
//   - [Document]: the export file a user downloads and can import again
//   - [Payload]: the body POSTed to the Slice Manager
//   - the import format, which accepts [Document] plus older variants
//     (a "links" array, endpoints by name, "flavor" strings)
//
// # Export
//
//	doc := serialize.Export(store.Snapshot(), time.Now())
//	serialize.WriteFile(doc, serialize.ExportFilename(doc.Name))
//
// Exported documents carry a human-readable connection listing:
//
//	"sequence": "Seq = [(PC1,PC2), (PC2,PC3)]"
//
// # Import
//
// [Parse] is all-or-nothing: any problem yields one INVALID_IMPORT error and
// no topology. [Import] loads a parsed document into a store with
// [topology.Store.Load], so the store is only touched on success.
//
// Ids are preserved when every node (respectively every connection) carries
// a unique positive id; otherwise they are renumbered from 1 and endpoints
// are resolved through the old ids or by node name.
//
// # Submission payload
//
// [NewPayload] keys nodes by name, which is why duplicate names are a
// validation error before submission. The field names are an external
// contract.
package serialize
