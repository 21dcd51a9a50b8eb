package stores

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStoreSimple(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveAndFetch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveMessage(ctx, "c1", "user", "hello"))
	require.NoError(t, store.SaveMessage(ctx, "c1", "assistant", "hi"))
	require.NoError(t, store.SaveMessage(ctx, "c2", "user", "other"))

	history, err := store.FetchHistory(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Sequence)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, 2, history[1].Sequence)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestSQLiteStore_FetchHistoryLimitKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, content := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.SaveMessage(ctx, "c1", "user", content))
	}

	history, err := store.FetchHistory(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].Content)
	assert.Equal(t, "d", history[1].Content)
}

func TestSQLiteStore_Conversations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateConversation(ctx, "c1", "assistant"))
	require.NoError(t, store.SaveMessage(ctx, "c1", "user", "hello"))

	convs, err := store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "assistant", convs[0].ClientName)
	assert.Equal(t, 1, convs[0].MessageCount)

	require.NoError(t, store.DeleteConversation(ctx, "c1"))
	history, err := store.FetchHistory(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSQLiteStore_CreateConversationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveMessage(ctx, "c1", "user", "hello"))
	require.NoError(t, store.CreateConversation(ctx, "c1", "assistant"))
	require.NoError(t, store.CreateConversation(ctx, "c1", "other"))

	convs, err := store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "assistant", convs[0].ClientName)
	assert.Equal(t, 1, convs[0].MessageCount)
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.sqlite")
	store, err := NewStore(NewStoreConfig("sqlite", path))
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping())
}

func TestNewStore_UnsupportedType(t *testing.T) {
	_, err := NewStore(NewStoreConfig("mysql", "dsn"))
	assert.ErrorContains(t, err, "unsupported store type")
}

func TestGORMTraceStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	traces, err := NewGORMTraceStore(store.DB())
	require.NoError(t, err)

	require.NoError(t, traces.SaveTrace(ctx, &RunTrace{ConversationID: "c1", ClientName: "a", TraceID: "t1", Status: "ok"}))
	require.NoError(t, traces.SaveTrace(ctx, &RunTrace{ConversationID: "c1", ClientName: "a", TraceID: "t2", Status: "error"}))

	got, err := traces.GetTracesByConversation(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].TraceID)

	byID, err := traces.GetTracesByTraceID(ctx, "t2")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "error", byID[0].Status)

	require.NoError(t, traces.DeleteTracesByConversation(ctx, "c1"))
	got, err = traces.GetTracesByConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Error(t, traces.SaveTrace(ctx, nil))
}
