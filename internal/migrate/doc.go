// Package migrate is the migration orchestration core: it routes each
// logical member operation to one or both store adapters according to
// an immutable strategy, keeps identifiers consistent across the two
// key types, compensates partial writes on create, and runs
// best-effort divergence comparison out of band.
//
// The orchestrator is stateless between calls. The only concurrency
// control inside a dual-write operation is its ordering: the
// relational store runs first so its outcome can gate the document
// store call. There is no distributed lock and no two-phase commit;
// the weak guarantees this buys are documented per operation.
package migrate
