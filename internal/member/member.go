package member

import (
	"context"
	"time"
)

// StoreKind names a back-end store.
type StoreKind string

const (
	// StoreRelational is the SQLite-backed store with numeric keys.
	StoreRelational StoreKind = "relational"

	// StoreDocument is the Badger-backed store with string keys.
	StoreDocument StoreKind = "document"
)

// Valid reports whether the kind is one of the two known stores.
func (k StoreKind) Valid() bool {
	return k == StoreRelational || k == StoreDocument
}

// Member is the domain entity. Timestamps are server-assigned by the
// adapter on create/update and immutable by callers.
type Member struct {
	ID        ID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameProfile reports whether two members agree on the caller-visible
// fields (name, email, phone). Identifiers and timestamps are ignored.
func (m Member) SameProfile(other Member) bool {
	return m.Name == other.Name && m.Email == other.Email && m.Phone == other.Phone
}

// Store is the uniform contract both back-end adapters implement.
//
// Identifiers cross this boundary as strings; each adapter owns the
// translation to its native key type and rejects ids of the wrong
// shape with an InvalidIdentifier error.
type Store interface {
	// Create persists a new member and assigns a store-native
	// identifier, unless the incoming member already carries one (the
	// dual-write path forces the reconciled key onto the document
	// store). Fails with DuplicateEmail if the email exists.
	Create(ctx context.Context, m Member) (Member, error)

	// Get returns the member with the given id, or NotFound.
	Get(ctx context.Context, id string) (Member, error)

	// Update replaces name/email/phone of an existing member. Fails
	// with NotFound if absent, or DuplicateEmail if the new email
	// belongs to a different existing member.
	Update(ctx context.Context, id string, m Member) (Member, error)

	// Delete removes the member if present. Returns true if a member
	// existed and was removed, false if absent. Never fails on absent.
	Delete(ctx context.Context, id string) (bool, error)

	// List returns all members in store-native order.
	List(ctx context.Context) ([]Member, error)

	// SearchByName returns members whose name contains the given text,
	// case-insensitively.
	SearchByName(ctx context.Context, name string) ([]Member, error)

	// ExistsByEmail reports whether any member has the given email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Kind identifies the back-end.
	Kind() StoreKind
}
