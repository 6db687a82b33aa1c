// Package identity keeps the cross-store identifier invariant true:
// for any dual-written member, the document store's string key equals
// the decimal rendering of the relational store's numeric key.
//
// On create the relational store runs first and is authoritative for
// the new identifier; its auto-increment key is cheap and
// collision-free, so the document store is forced to adopt it rather
// than generating its own key and requiring a second reconciliation
// pass. All functions here are pure.
package identity

import (
	"fmt"

	"github.com/roach88/memberbridge/internal/member"
)

// DocumentKey converts a relational identifier into the literal string
// key used for the corresponding document-store record.
//
// The input must carry a numeric key: receiving anything else means
// the dual-write ordering was violated upstream, which is a fatal
// internal-consistency error, not a recoverable condition.
func DocumentKey(id member.ID) (string, error) {
	if _, ok := id.Numeric(); !ok {
		return "", &member.StoreError{
			Code:    member.CodeConsistency,
			Message: fmt.Sprintf("document key requested for non-numeric identifier %q", id.String()),
		}
	}
	return id.String(), nil
}

// ForDocument returns a copy of a relationally-created member shaped
// for the document store: the numeric key is replaced with its decimal
// string form so the document create uses it as the literal key.
func ForDocument(m member.Member) (member.Member, error) {
	key, err := DocumentKey(m.ID)
	if err != nil {
		return member.Member{}, err
	}
	doc := m
	doc.ID = member.OpaqueID(key)
	return doc, nil
}

// Consistent reports whether two identifiers satisfy the dual-write
// invariant, i.e. they render to the same external string form.
func Consistent(relational, document member.ID) bool {
	return relational.Equal(document)
}
