package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/roach88/memberbridge/internal/member"
)

// Key layout:
//
//	member:<id>    -> JSON document
//	email:<email>  -> id owning that email
//
// Both keys for a member are written and removed in one transaction so
// the email index can never point at a missing document.
const (
	memberPrefix = "member:"
	emailPrefix  = "email:"
)

var _ member.Store = (*Store)(nil)

// document is the persisted JSON shape of a member.
type document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Kind identifies this adapter as the document back-end.
func (s *Store) Kind() member.StoreKind {
	return member.StoreDocument
}

// Create persists a new document. The incoming identifier is used as
// the literal key when present (the dual-write path forces the
// relational key here); otherwise a UUID is generated.
// Fails with DuplicateEmail if the email already exists.
func (s *Store) Create(ctx context.Context, m member.Member) (member.Member, error) {
	if err := ctx.Err(); err != nil {
		return member.Member{}, fmt.Errorf("create document: %w", err)
	}

	id := m.ID.String()
	if m.ID.IsZero() {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	doc := document{
		ID:        id,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey(m.Email))
		if err == nil {
			return member.NewDuplicateEmail(member.StoreDocument, m.Email)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email index: %w", err)
		}
		return writeDocument(txn, doc)
	})
	if err != nil {
		return member.Member{}, err
	}

	m.ID = member.OpaqueID(id)
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

// Get returns the member stored under the given id, or NotFound.
// Any string is an acceptable key shape for this store.
func (s *Store) Get(ctx context.Context, id string) (member.Member, error) {
	if err := ctx.Err(); err != nil {
		return member.Member{}, fmt.Errorf("get document: %w", err)
	}

	var doc document
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = readDocument(txn, id)
		return err
	})
	if err != nil {
		return member.Member{}, err
	}
	return doc.toMember(), nil
}

// Update replaces name/email/phone of an existing document. Fails with
// DuplicateEmail if the new email is indexed to a different document.
func (s *Store) Update(ctx context.Context, id string, m member.Member) (member.Member, error) {
	if err := ctx.Err(); err != nil {
		return member.Member{}, fmt.Errorf("update document: %w", err)
	}

	now := time.Now().UTC()
	var updated document

	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := readDocument(txn, id)
		if err != nil {
			return err
		}

		if existing.Email != m.Email {
			item, err := txn.Get(emailKey(m.Email))
			if err == nil {
				owner, err := item.ValueCopy(nil)
				if err != nil {
					return fmt.Errorf("read email index: %w", err)
				}
				if string(owner) != id {
					return member.NewDuplicateEmail(member.StoreDocument, m.Email)
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check email index: %w", err)
			}
			if err := txn.Delete(emailKey(existing.Email)); err != nil {
				return fmt.Errorf("drop email index: %w", err)
			}
		}

		updated = document{
			ID:        id,
			Name:      m.Name,
			Email:     m.Email,
			Phone:     m.Phone,
			CreatedAt: existing.CreatedAt,
			UpdatedAt: now,
		}
		return writeDocument(txn, updated)
	})
	if err != nil {
		return member.Member{}, err
	}

	return updated.toMember(), nil
}

// Delete removes the document and its email index entry if present.
// Returns true if a document existed and was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}

	existed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		doc, err := readDocument(txn, id)
		if member.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true

		if err := txn.Delete([]byte(memberPrefix + id)); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		if err := txn.Delete(emailKey(doc.Email)); err != nil {
			return fmt.Errorf("delete email index: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// List returns all members in key order.
func (s *Store) List(ctx context.Context) ([]member.Member, error) {
	return s.scan(ctx, func(document) bool { return true })
}

// SearchByName returns members whose name contains the given text.
// Matching uses Unicode case folding, not just ASCII lowering.
func (s *Store) SearchByName(ctx context.Context, name string) ([]member.Member, error) {
	fold := cases.Fold()
	needle := fold.String(name)
	return s.scan(ctx, func(doc document) bool {
		return strings.Contains(fold.String(doc.Name), needle)
	})
}

// ExistsByEmail reports whether any document is indexed under the email.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}

	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey(email))
		if err == nil {
			exists = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("check email index: %w", err)
	})
	return exists, err
}

// scan iterates all member documents and keeps those the filter accepts.
// Returns an empty slice instead of nil when nothing matches.
func (s *Store) scan(ctx context.Context, keep func(document) bool) ([]member.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	members := []member.Member{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(memberPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var doc document
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("decode document %s: %w", it.Item().Key(), err)
			}
			if keep(doc) {
				members = append(members, doc.toMember())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (d document) toMember() member.Member {
	return member.Member{
		ID:        member.OpaqueID(d.ID),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// readDocument fetches and decodes one document within a transaction.
func readDocument(txn *badger.Txn, id string) (document, error) {
	item, err := txn.Get([]byte(memberPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return document{}, member.NewNotFound(member.StoreDocument, id)
	}
	if err != nil {
		return document{}, fmt.Errorf("read document: %w", err)
	}

	var doc document
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

// writeDocument stores the document and its email index entry.
func writeDocument(txn *badger.Txn, doc document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := txn.Set([]byte(memberPrefix+doc.ID), data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := txn.Set(emailKey(doc.Email), []byte(doc.ID)); err != nil {
		return fmt.Errorf("write email index: %w", err)
	}
	return nil
}

func emailKey(email string) []byte {
	return []byte(emailPrefix + email)
}
