package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSRoundTrip(t *testing.T) {
	store := NewFS(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "topics/extracted_topics.json", []byte(`{"2026-01-05":{}}`)))

	got, err := store.Get(ctx, "topics/extracted_topics.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"2026-01-05":{}}`, string(got))
}

func TestFSGetMissingKey(t *testing.T) {
	store := NewFS(t.TempDir())

	_, err := store.Get(context.Background(), "conversations/absent.jsonl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSPutOverwrites(t *testing.T) {
	store := NewFS(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("old")))
	require.NoError(t, store.Put(ctx, "k", []byte("new")))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
