package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triviatastic/triviatastic/pkg/cache"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// fakeRemote is an in-memory Remote whose failure mode can be toggled
// per test.
type fakeRemote struct {
	values  map[string][]byte
	putErr  error
	getErr  error
	putKeys []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{values: make(map[string][]byte)}
}

func (f *fakeRemote) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.values[key] = append([]byte{}, value...)
	f.putKeys = append(f.putKeys, key)
	return nil
}

func (f *fakeRemote) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return nil, &ErrNotFound{}
	}
	return value, nil
}

func storeDocument() *types.GameStateDocument {
	doc := types.NewGameStateDocument()
	doc.GameID = "12345"
	doc.Categories = []types.Category{
		{Title: "Capitals", Clues: []types.Clue{{Question: "Q", Answer: "A", Value: 200}}},
	}
	doc.TileStates["0-0"] = types.NewTileState(200)
	doc.Users = []types.Player{{Name: "Alice"}}
	return doc
}

func TestSaveAndLoadGameState(t *testing.T) {
	remote := newFakeRemote()
	store := NewStateStore(remote, cache.NewInMemoryCache())

	doc := storeDocument()
	saved, err := store.SaveGameState(context.Background(), "one-two-three-four", doc)
	require.NoError(t, err)
	assert.True(t, saved)

	loaded, err := store.LoadGameState(context.Background(), "one-two-three-four")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, doc.Categories, loaded.Categories)
	assert.Equal(t, doc.Users, loaded.Users)
	assert.False(t, loaded.LastUpdated.IsZero(), "save stamps LastUpdated")
	assert.True(t, doc.LastUpdated.IsZero(), "caller's document is not mutated")
}

func TestSaveGameStateEmptyBoard(t *testing.T) {
	remote := newFakeRemote()
	store := NewStateStore(remote, cache.NewInMemoryCache())

	saved, err := store.SaveGameState(context.Background(), "one-two-three-four", types.NewGameStateDocument())
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, remote.putKeys, "empty boards must never reach the remote")
}

func TestSaveGameStateMissingIdentifier(t *testing.T) {
	store := NewStateStore(newFakeRemote(), cache.NewInMemoryCache())
	_, err := store.SaveGameState(context.Background(), "", storeDocument())
	assert.Error(t, err)
}

func TestSaveGameStateRemoteFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.putErr = errors.New("connection refused")
	localCache := cache.NewInMemoryCache()
	store := NewStateStore(remote, localCache)

	saved, err := store.SaveGameState(context.Background(), "one-two-three-four", storeDocument())
	require.NoError(t, err, "transport failures are absorbed")
	assert.False(t, saved)

	cached, err := localCache.Get("one-two-three-four")
	require.NoError(t, err)
	assert.NotEmpty(t, cached, "cache is updated even when the remote rejects")
}

func TestLoadGameStateNotCreatedYet(t *testing.T) {
	store := NewStateStore(newFakeRemote(), cache.NewInMemoryCache())
	doc, err := store.LoadGameState(context.Background(), "one-two-three-four")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLoadGameStateMalformed(t *testing.T) {
	remote := newFakeRemote()
	remote.values["one-two-three-four"] = []byte("{not json")
	store := NewStateStore(remote, cache.NewInMemoryCache())

	doc, err := store.LoadGameState(context.Background(), "one-two-three-four")
	require.NoError(t, err, "malformed snapshots are skipped, not fatal")
	assert.Nil(t, doc)
}

func TestLoadGameStateCacheFallback(t *testing.T) {
	remote := newFakeRemote()
	localCache := cache.NewInMemoryCache()
	store := NewStateStore(remote, localCache)

	_, err := store.SaveGameState(context.Background(), "one-two-three-four", storeDocument())
	require.NoError(t, err)

	remote.getErr = errors.New("connection refused")
	doc, err := store.LoadGameState(context.Background(), "one-two-three-four")
	require.NoError(t, err)
	require.NotNil(t, doc, "cache serves the last snapshot during an outage")
	assert.Equal(t, "12345", doc.GameID)
}

func TestLoadGameStateRemoteNotFoundSkipsCache(t *testing.T) {
	remote := newFakeRemote()
	localCache := cache.NewInMemoryCache()
	store := NewStateStore(remote, localCache)

	stale, err := json.Marshal(storeDocument())
	require.NoError(t, err)
	require.NoError(t, localCache.Set("one-two-three-four", stale))

	doc, err := store.LoadGameState(context.Background(), "one-two-three-four")
	require.NoError(t, err)
	assert.Nil(t, doc, "an authoritative 404 wins over stale cache")
}

func TestWagerKey(t *testing.T) {
	assert.Equal(t, "12345-wager-Alice", WagerKey("12345", "Alice"))
}

func TestSaveAndLoadWager(t *testing.T) {
	store := NewStateStore(newFakeRemote(), cache.NewInMemoryCache())

	saved, err := store.SaveWager(context.Background(), "12345", "Alice", &types.WagerRecord{Wager: 500, Answer: "What is Rome?"})
	require.NoError(t, err)
	assert.True(t, saved)

	record, err := store.LoadWager(context.Background(), "12345", "Alice")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 500, record.Wager)
	assert.Equal(t, "What is Rome?", record.Answer)
	assert.True(t, record.HasWager())

	missing, err := store.LoadWager(context.Background(), "12345", "Bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&ErrNotFound{}))
	assert.False(t, IsNotFound(errors.New("not found")))
	assert.False(t, IsNotFound(nil))
}
