package member

import (
	"fmt"
	"strconv"
)

// IDKind discriminates the two native key representations.
type IDKind int

const (
	// IDNone is the zero value: no identifier assigned yet.
	IDNone IDKind = iota

	// IDNumeric is the relational store's native key (int64 surrogate).
	IDNumeric

	// IDOpaque is the document store's native key (arbitrary string).
	IDOpaque
)

// ID is a tagged union over the two key representations.
//
// Invariant: for any member that has been dual-written, the opaque
// representation textually equals the decimal form of the numeric
// representation. The identity package is responsible for keeping
// this true; ID itself only provides total conversions.
type ID struct {
	kind IDKind
	num  int64
	str  string
}

// NumericID returns an ID holding a relational surrogate key.
func NumericID(n int64) ID {
	return ID{kind: IDNumeric, num: n}
}

// OpaqueID returns an ID holding a document-store string key.
func OpaqueID(s string) ID {
	return ID{kind: IDOpaque, str: s}
}

// ParseNumeric parses a decimal string into a numeric ID.
// Returns an InvalidIdentifier error for anything that is not a
// base-10 integer. Malformed ids fail loudly here instead of
// degrading into a null identifier.
func ParseNumeric(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ID{}, &StoreError{
			Code:    CodeInvalidIdentifier,
			Message: fmt.Sprintf("id %q is not a valid numeric identifier", s),
		}
	}
	return NumericID(n), nil
}

// Kind returns the representation this ID currently holds.
func (id ID) Kind() IDKind { return id.kind }

// IsZero reports whether no identifier has been assigned.
func (id ID) IsZero() bool { return id.kind == IDNone }

// Numeric returns the int64 key and true when the ID is numeric.
func (id ID) Numeric() (int64, bool) {
	if id.kind != IDNumeric {
		return 0, false
	}
	return id.num, true
}

// String renders the identifier as it crosses external boundaries:
// numeric keys as decimal text, opaque keys verbatim, the zero ID as
// the empty string. Callers never see the representational difference.
func (id ID) String() string {
	switch id.kind {
	case IDNumeric:
		return strconv.FormatInt(id.num, 10)
	case IDOpaque:
		return id.str
	default:
		return ""
	}
}

// Equal reports whether two IDs name the same logical record. A
// numeric ID and an opaque ID compare equal when the opaque form is
// the decimal rendering of the numeric key.
func (id ID) Equal(other ID) bool {
	if id.kind == IDNone || other.kind == IDNone {
		return id.kind == other.kind
	}
	return id.String() == other.String()
}
