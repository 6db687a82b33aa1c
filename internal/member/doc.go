// Package member defines the domain model for the member registry:
// the Member entity, the dual-representation identifier, the error
// taxonomy shared by both storage back-ends, and the Store contract
// that every back-end adapter implements.
//
// The package is storage-agnostic. The relational adapter (relstore)
// and the document adapter (docstore) both translate their native
// failures into this package's error codes before returning, so the
// orchestration layer never sees driver-specific errors.
package member
