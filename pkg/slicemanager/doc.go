// Package slicemanager submits topologies to the Slice Manager.
//
// The Slice Manager is the external service that provisions a submitted
// topology. The contract is one HTTP call:
//
//	POST <url>
//	Content-Type: application/json
//	Authorization: Bearer <api key>   (only when a key is configured)
//
// with a [serialize.Payload] body. Any 2xx status is success; anything else,
// and any transport failure, is reported as a single error. There are no
// retries.
//
// [Submitter] wraps a [Client] with the editor-side rules: the topology is
// validated first (no request is made when it is invalid), a second Send
// while one is in flight fails with SUBMISSION_IN_PROGRESS, and every call
// is bounded by a timeout. The topology is only read.
package slicemanager
