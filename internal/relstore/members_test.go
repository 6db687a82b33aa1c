package relstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memberbridge/internal/member"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "members.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, member.Member{Name: "John Doe", Email: "john@example.com", Phone: "+12345678901"})
	require.NoError(t, err)
	second, err := s.Create(ctx, member.Member{Name: "Jane Smith", Email: "jane@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "1", first.ID.String())
	assert.Equal(t, "2", second.ID.String())
	assert.False(t, first.CreatedAt.IsZero())
	assert.False(t, first.UpdatedAt.IsZero())
}

func TestCreateDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{Name: "John Doe", Email: "john@example.com"})
	require.NoError(t, err)

	_, err = s.Create(ctx, member.Member{Name: "Another John", Email: "john@example.com"})
	require.Error(t, err)
	assert.True(t, member.IsDuplicateEmail(err))

	// No second record was created.
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, member.Member{Name: "John Doe", Email: "john@example.com", Phone: "+12345678901"})
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, got.SameProfile(created))
	assert.Equal(t, created.ID.String(), got.ID.String())
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, member.IsNotFound(err))
}

func TestGetRejectsNonNumericID(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "507f1f77bcf86cd799439011")
	require.Error(t, err)
	assert.True(t, member.IsInvalidIdentifier(err))
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, member.Member{Name: "John Doe", Email: "john@example.com"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID.String(), member.Member{Name: "Updated", Email: "updated@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Name)
	assert.Equal(t, created.ID.String(), updated.ID.String())
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	got, err := s.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "updated@example.com", got.Email)
}

func TestUpdateDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)
	jane, err := s.Create(ctx, member.Member{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	// Changing Jane's email to John's collides.
	_, err = s.Update(ctx, jane.ID.String(), member.Member{Name: "Jane", Email: "john@example.com"})
	require.Error(t, err)
	assert.True(t, member.IsDuplicateEmail(err))

	// Keeping her own email is fine.
	_, err = s.Update(ctx, jane.ID.String(), member.Member{Name: "Jane D", Email: "jane@example.com"})
	require.NoError(t, err)
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(context.Background(), "42", member.Member{Name: "X", Email: "x@example.com"})
	require.Error(t, err)
	assert.True(t, member.IsNotFound(err))
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, member.Member{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete reports absence, never an error.
	deleted, err = s.Delete(ctx, created.ID.String())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSearchByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, m := range []member.Member{
		{Name: "John Dove", Email: "john.dove@example.com"},
		{Name: "Jane Dove", Email: "jane.dove@example.com"},
		{Name: "Alice Smith", Email: "alice@example.com"},
	} {
		_, err := s.Create(ctx, m)
		require.NoError(t, err)
	}

	found, err := s.SearchByName(ctx, "dove")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "John Dove", found[0].Name)
	assert.Equal(t, "Jane Dove", found[1].Name)

	// LIKE metacharacters match literally, not as wildcards.
	found, err = s.SearchByName(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestListEmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestExistsByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, member.Member{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)

	exists, err := s.ExistsByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
