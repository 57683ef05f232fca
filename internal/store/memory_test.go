package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetUpsertRemove(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Upsert(ctx, "u1", Document{"type": "user", "username": "alice"}))

	doc, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc["username"])

	require.NoError(t, m.Remove(ctx, "u1"))
	_, err = m.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Remove(ctx, "u1"), ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Upsert(ctx, "u1", Document{"type": "user", "username": "alice"}))

	doc, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	doc["username"] = "mallory"

	again, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again["username"])
}

func TestMemoryAddToSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Upsert(ctx, "u1", Document{"type": "user"}))

	// absent field behaves as an empty set
	added, err := m.AddToSet(ctx, "u1", "following", "u2")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.AddToSet(ctx, "u1", "following", "u2")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = m.AddToSet(ctx, "u1", "following", "u3")
	require.NoError(t, err)
	assert.True(t, added)

	doc, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3"}, Strings(doc, "following"))

	_, err = m.AddToSet(ctx, "ghost", "following", "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPullValue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Upsert(ctx, "u1", Document{"type": "user", "following": []string{"u2", "u3"}}))

	removed, err := m.PullValue(ctx, "u1", "following", "u2")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.PullValue(ctx, "u1", "following", "u2")
	require.NoError(t, err)
	assert.False(t, removed)

	doc, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, Strings(doc, "following"))
}

func TestMemoryIncField(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Upsert(ctx, "a1", Document{"type": "article"}))

	require.NoError(t, m.IncField(ctx, "a1", "favorites_count", 1))
	require.NoError(t, m.IncField(ctx, "a1", "favorites_count", 1))
	require.NoError(t, m.IncField(ctx, "a1", "favorites_count", -1))

	doc, err := m.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), Int64(doc, "favorites_count"))
}

func TestMemorySetFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Upsert(ctx, "a1", Document{"type": "article", "title": "old", "body": "keep"}))

	require.NoError(t, m.SetFields(ctx, "a1", Document{"title": "new"}))

	doc, err := m.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "new", doc["title"])
	assert.Equal(t, "keep", doc["body"])
}

func TestMemoryFindFilterAndSort(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, m.Upsert(ctx, "a1", Document{"type": "article", "author_id": "u1", "created_at": base}))
	require.NoError(t, m.Upsert(ctx, "a2", Document{"type": "article", "author_id": "u2", "created_at": base.Add(time.Hour)}))
	require.NoError(t, m.Upsert(ctx, "a3", Document{"type": "article", "author_id": "u1", "created_at": base.Add(2 * time.Hour)}))
	require.NoError(t, m.Upsert(ctx, "u1", Document{"type": "user"}))

	all, err := m.Find(ctx, Query{
		Filter:    Filter{"type": "article"},
		SortField: "created_at",
		SortDesc:  true,
	})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, Time(all[0], "created_at").After(Time(all[2], "created_at")))

	byAuthor, err := m.Find(ctx, Query{Filter: Filter{"type": "article", "author_id": "u1"}})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	membership, err := m.Find(ctx, Query{Filter: Filter{"type": "article", "author_id": []string{"u2", "u9"}}})
	require.NoError(t, err)
	assert.Len(t, membership, 1)

	byID, err := m.Find(ctx, Query{Filter: Filter{"_id": []string{"a1", "a3", "gone"}}})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
}

func TestMemoryFindPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "a2", "a3", "a4"} {
		require.NoError(t, m.Upsert(ctx, id, Document{
			"type":       "article",
			"created_at": base.Add(time.Duration(i) * time.Minute),
		}))
	}

	q := Query{Filter: Filter{"type": "article"}, SortField: "created_at", Limit: 2, Offset: 1}
	page, err := m.Find(ctx, q)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, base.Add(time.Minute), Time(page[0], "created_at"))

	q.Offset = 10
	empty, err := m.Find(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryFindOne(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Upsert(ctx, "u1", Document{"type": "user", "username": "alice"}))

	doc, err := m.FindOne(ctx, Filter{"type": "user", "username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", doc["username"])

	_, err = m.FindOne(ctx, Filter{"type": "user", "username": "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}
