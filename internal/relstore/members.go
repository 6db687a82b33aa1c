package relstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/memberbridge/internal/member"
)

// timeLayout is how timestamps are persisted. RFC 3339 with
// nanoseconds round-trips through TEXT columns without loss.
const timeLayout = time.RFC3339Nano

var _ member.Store = (*Store)(nil)

// Kind identifies this adapter as the relational back-end.
func (s *Store) Kind() member.StoreKind {
	return member.StoreRelational
}

// Create inserts a new member and assigns an auto-increment key.
// Any identifier on the incoming member is ignored; the relational
// store is always authoritative for key generation.
// Fails with DuplicateEmail if the email already exists.
func (s *Store) Create(ctx context.Context, m member.Member) (member.Member, error) {
	exists, err := s.ExistsByEmail(ctx, m.Email)
	if err != nil {
		return member.Member{}, fmt.Errorf("create member: %w", err)
	}
	if exists {
		return member.Member{}, member.NewDuplicateEmail(member.StoreRelational, m.Email)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO members (name, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.Name, m.Email, m.Phone, now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return member.Member{}, fmt.Errorf("create member: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return member.Member{}, fmt.Errorf("create member: last insert id: %w", err)
	}

	m.ID = member.NumericID(id)
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

// Get returns the member with the given id.
// Fails with InvalidIdentifier for non-numeric ids and NotFound when absent.
func (s *Store) Get(ctx context.Context, id string) (member.Member, error) {
	key, err := member.ParseNumeric(id)
	if err != nil {
		return member.Member{}, err
	}
	num, _ := key.Numeric()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM members
		WHERE id = ?
	`, num)

	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return member.Member{}, member.NewNotFound(member.StoreRelational, id)
	}
	if err != nil {
		return member.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// Update replaces name/email/phone of an existing member.
// created_at is preserved; updated_at is server-assigned.
func (s *Store) Update(ctx context.Context, id string, m member.Member) (member.Member, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return member.Member{}, err
	}

	// A changed email must not collide with a different member.
	if existing.Email != m.Email {
		exists, err := s.ExistsByEmail(ctx, m.Email)
		if err != nil {
			return member.Member{}, fmt.Errorf("update member: %w", err)
		}
		if exists {
			return member.Member{}, member.NewDuplicateEmail(member.StoreRelational, m.Email)
		}
	}

	num, _ := existing.ID.Numeric()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE members
		SET name = ?, email = ?, phone = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, m.Email, m.Phone, now.Format(timeLayout), num)
	if err != nil {
		return member.Member{}, fmt.Errorf("update member: %w", err)
	}

	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = now
	return m, nil
}

// Delete removes the member if present. Returns true if a row was
// deleted. A non-numeric id is rejected with InvalidIdentifier.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	key, err := member.ParseNumeric(id)
	if err != nil {
		return false, err
	}
	num, _ := key.Numeric()

	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, num)
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete member: rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns all members ordered by id.
func (s *Store) List(ctx context.Context) ([]member.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM members
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	return collectMembers(rows)
}

// SearchByName returns members whose name contains the given text,
// case-insensitively. LIKE metacharacters in the input are escaped so
// they match literally.
func (s *Store) SearchByName(ctx context.Context, name string) ([]member.Member, error) {
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM members
		WHERE lower(name) LIKE ? ESCAPE '\'
		ORDER BY id ASC
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	defer rows.Close()

	return collectMembers(rows)
}

// ExistsByEmail reports whether any member has the given email.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM members WHERE email = ?
	`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return count > 0, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMember reads one member row.
func scanMember(row rowScanner) (member.Member, error) {
	var (
		id                   int64
		name, email, phone   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &name, &email, &phone, &createdAt, &updatedAt); err != nil {
		return member.Member{}, err
	}

	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return member.Member{}, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(timeLayout, updatedAt)
	if err != nil {
		return member.Member{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return member.Member{
		ID:        member.NumericID(id),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// collectMembers drains a result set into a slice.
// Returns an empty slice instead of nil when no rows match.
func collectMembers(rows *sql.Rows) ([]member.Member, error) {
	members := []member.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// escapeLike escapes LIKE metacharacters with backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
