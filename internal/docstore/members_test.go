package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memberbridge/internal/member"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUsesSuppliedID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// The dual-write path forces the reconciled relational key.
	created, err := s.Create(ctx, member.Member{
		ID:    member.OpaqueID("1"),
		Name:  "John Doe",
		Email: "john@example.com",
		Phone: "+12345678901",
	})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID.String())

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", got.Email)
}

func TestCreateGeneratesKeyWhenAbsent(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Create(context.Background(), member.Member{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID.String())
	assert.Equal(t, member.IDOpaque, created.ID.Kind())
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{ID: member.OpaqueID("1"), Name: "John", Email: "john@example.com"})
	require.NoError(t, err)

	_, err = s.Create(ctx, member.Member{ID: member.OpaqueID("2"), Name: "John II", Email: "john@example.com"})
	require.Error(t, err)
	assert.True(t, member.IsDuplicateEmail(err))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, member.IsNotFound(err))
}

func TestGetAcceptsAnyStringID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Unlike the relational adapter, arbitrary string keys are fine.
	_, err := s.Create(ctx, member.Member{ID: member.OpaqueID("doc-abc"), Name: "X", Email: "x@example.com"})
	require.NoError(t, err)

	got, err := s.Get(ctx, "doc-abc")
	require.NoError(t, err)
	assert.Equal(t, "doc-abc", got.ID.String())
}

func TestUpdateReindexesEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{ID: member.OpaqueID("1"), Name: "John", Email: "john@example.com"})
	require.NoError(t, err)

	_, err = s.Update(ctx, "1", member.Member{Name: "Updated", Email: "updated@example.com"})
	require.NoError(t, err)

	exists, err := s.ExistsByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.False(t, exists, "old email should be released")

	exists, err = s.ExistsByEmail(ctx, "updated@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateSameEmailAllowed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{ID: member.OpaqueID("1"), Name: "John", Email: "john@example.com"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, "1", member.Member{Name: "John D", Email: "john@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "John D", updated.Name)
}

func TestUpdateDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{ID: member.OpaqueID("1"), Name: "John", Email: "john@example.com"})
	require.NoError(t, err)
	_, err = s.Create(ctx, member.Member{ID: member.OpaqueID("2"), Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	_, err = s.Update(ctx, "2", member.Member{Name: "Jane", Email: "john@example.com"})
	require.Error(t, err)
	assert.True(t, member.IsDuplicateEmail(err))
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(context.Background(), "missing", member.Member{Name: "X", Email: "x@example.com"})
	require.Error(t, err)
	assert.True(t, member.IsNotFound(err))
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{ID: member.OpaqueID("1"), Name: "John", Email: "john@example.com"})
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(ctx, "1")
	require.NoError(t, err)
	assert.False(t, deleted)

	// The email is free again after delete.
	exists, err := s.ExistsByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSearchByNameCaseFolded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, m := range []member.Member{
		{Name: "John Dove", Email: "john.dove@example.com"},
		{Name: "Jane Dove", Email: "jane.dove@example.com"},
		{Name: "Alice Smith", Email: "alice@example.com"},
	} {
		m.ID = member.OpaqueID(string(rune('1' + i)))
		_, err := s.Create(ctx, m)
		require.NoError(t, err)
	}

	found, err := s.SearchByName(ctx, "DOVE")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.SearchByName(ctx, "smith")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alice Smith", found[0].Name)
}

func TestListEmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
