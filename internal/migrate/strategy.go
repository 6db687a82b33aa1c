package migrate

import (
	"github.com/roach88/memberbridge/internal/member"
)

// Strategy is the orchestrator's routing configuration. It is read
// once at process start and held by value: an operation sees one
// consistent snapshot, never a field-by-field mix of old and new
// values. Test harnesses that switch strategies construct a fresh
// orchestrator rather than mutating a running one.
type Strategy struct {
	// Primary is the authoritative store for single-store strategies.
	Primary member.StoreKind

	// DualWrite applies writes to both stores when true.
	DualWrite bool

	// ReadSource is the store consulted for reads in dual-write mode.
	ReadSource member.StoreKind

	// CompareOnRead enables best-effort divergence detection against
	// the document store after each read. Findings are logged, never
	// surfaced to callers.
	CompareOnRead bool
}

// readFrom names the store reads are served from under this strategy.
func (s Strategy) readFrom() member.StoreKind {
	if s.DualWrite {
		return s.ReadSource
	}
	return s.Primary
}

// compareEnabled reports whether a read under this strategy should
// dispatch a comparison. Comparison targets the document store, so it
// only fires when reads are served from somewhere else.
func (s Strategy) compareEnabled() bool {
	return s.DualWrite && s.CompareOnRead && s.readFrom() != member.StoreDocument
}
