package docstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

type doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestDocRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users", "u1", &doc{ID: "u1", Name: "alice"}))

	var got doc
	require.NoError(t, s.Get(ctx, "users", "u1", &got))
	assert.Equal(t, "alice", got.Name)

	ok, err := s.Exists(ctx, "users", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetMissingDocument(t *testing.T) {
	s := newTestStore(t)

	var got doc
	err := s.Get(context.Background(), "users", "nope", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAddIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "posts", "p1", &doc{ID: "p1"}))

	added, err := s.SetAdd(ctx, "posts", "p1", "likes", "u1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.SetAdd(ctx, "posts", "p1", "likes", "u1")
	require.NoError(t, err)
	assert.False(t, added)

	members, err := s.SetMembers(ctx, "posts", "p1", "likes")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, members)
}

func TestSetAddRequiresDocument(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SetAdd(context.Background(), "posts", "ghost", "likes", "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SetRemove(context.Background(), "posts", "ghost", "likes", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "posts", "p1", &doc{ID: "p1"}))

	_, err := s.SetAdd(ctx, "posts", "p1", "likes", "u1")
	require.NoError(t, err)

	removed, err := s.SetRemove(ctx, "posts", "p1", "likes", "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.SetRemove(ctx, "posts", "p1", "likes", "u1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListAppendKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "posts", "p1", &doc{ID: "p1"}))

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, s.ListAppend(ctx, "posts", "p1", "comments", v))
	}

	raw, err := s.ListRange(ctx, "posts", "p1", "comments")
	require.NoError(t, err)
	assert.Equal(t, []string{`"a"`, `"b"`, `"c"`}, raw)
}

func TestListAppendRequiresDocument(t *testing.T) {
	s := newTestStore(t)
	err := s.ListAppend(context.Background(), "posts", "ghost", "comments", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndexRevRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.IndexPut(ctx, "posts", "created", 100, "p1"))
	require.NoError(t, s.IndexPut(ctx, "posts", "created", 300, "p2"))
	require.NoError(t, s.IndexPut(ctx, "posts", "created", 200, "p3"))

	ids, err := s.IndexRevRange(ctx, "posts", "created", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3", "p1"}, ids)

	require.NoError(t, s.IndexRemove(ctx, "posts", "created", "p2"))
	ids, err = s.IndexRevRange(ctx, "posts", "created", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p1"}, ids)
}

func TestLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LookupPut(ctx, "users", "username", "alice", "u1"))

	id, err := s.LookupGet(ctx, "users", "username", "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = s.LookupGet(ctx, "users", "username", "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.LookupRemove(ctx, "users", "username", "alice"))
	_, err = s.LookupGet(ctx, "users", "username", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupPutIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.LookupPutIfAbsent(ctx, "users", "username", "alice", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	// 已占用的键不会被改写
	ok, err = s.LookupPutIfAbsent(ctx, "users", "username", "alice", "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := s.LookupGet(ctx, "users", "username", "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestDeleteRemovesFieldKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "posts", "p1", &doc{ID: "p1"}))
	_, err := s.SetAdd(ctx, "posts", "p1", "likes", "u1")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "posts", "p1", "likes"))

	ok, err := s.Exists(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err := s.SetMembers(ctx, "posts", "p1", "likes")
	require.NoError(t, err)
	assert.Empty(t, members)
}
