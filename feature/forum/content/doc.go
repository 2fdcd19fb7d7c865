// Package content resolves content hashes to typed payloads.
//
// Resolution is a bounded retry loop over object storage (one object per
// hash). Parsing happens once per payload into a typed shape; reconcilers
// never walk dynamic JSON. Two failure modes are distinguished: unreachable
// content (budget exhausted, previous field values kept) and invalid shape
// (fields set to the Unresolvable sentinel).
package content
