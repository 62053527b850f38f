package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/triviatastic/triviatastic/pkg/cache"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// Remote is a blob put/get service addressed by string key. It is
// assumed eventually-available, not transactional or versioned: the last
// successful write to a key wins.
type Remote interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// StateStore persists and replicates game state through a Remote,
// mirroring every successful read and every write into a local cache so
// reads survive remote outages. Transport failures are absorbed here and
// never propagate as fatal: a dropped write is simply retried by the
// next write trigger, a failed read falls back to the cache.
type StateStore struct {
	remote Remote
	cache  cache.Cache
}

func NewStateStore(remote Remote, localCache cache.Cache) *StateStore {
	return &StateStore{
		remote: remote,
		cache:  localCache,
	}
}

// SaveGameState writes the document under its identifier and reports
// whether the remote accepted it. A document with no categories is never
// written: during startup races an uninitialized local copy must not
// overwrite good remote state. The cache is updated regardless of the
// remote outcome.
func (s *StateStore) SaveGameState(ctx context.Context, identifier string, doc *types.GameStateDocument) (bool, error) {
	if identifier == "" {
		return false, fmt.Errorf("missing game identifier")
	}
	if len(doc.Categories) == 0 {
		log.Debug("Not saving empty board for %s", identifier)
		return false, nil
	}

	stamped := doc.Copy()
	stamped.LastUpdated = time.Now().UTC()

	data, err := json.Marshal(stamped)
	if err != nil {
		return false, fmt.Errorf("failed to marshal game state: %v", err)
	}

	if err := s.cache.Set(identifier, data); err != nil {
		log.Warn("Failed to cache game state for %s: %v", identifier, err)
	}

	if err := s.remote.Put(ctx, identifier, data); err != nil {
		log.Warn("Failed to save game state for %s: %v", identifier, err)
		return false, nil
	}
	return true, nil
}

// LoadGameState reads the document for an identifier. A game that has
// not been created yet is not an error: it returns (nil, nil) and the
// session proceeds with an empty document. When the remote is
// unreachable the local cache serves the last known snapshot.
func (s *StateStore) LoadGameState(ctx context.Context, identifier string) (*types.GameStateDocument, error) {
	data, err := s.fetch(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	doc := types.NewGameStateDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		log.Warn("Malformed game state for %s: %v", identifier, err)
		return nil, nil
	}
	return doc, nil
}

// WagerKey is the side-channel key for one player's final round record.
// It is deliberately separate from the main document key so a player's
// own client may write it even though only the creator writes the
// document.
func WagerKey(gameID, name string) string {
	return fmt.Sprintf("%s-wager-%s", gameID, name)
}

// SaveWager writes one player's wager record to the side-channel and
// reports whether the remote accepted it.
func (s *StateStore) SaveWager(ctx context.Context, gameID, name string, record *types.WagerRecord) (bool, error) {
	stamped := *record
	stamped.LastUpdated = time.Now().UTC()

	data, err := json.Marshal(&stamped)
	if err != nil {
		return false, fmt.Errorf("failed to marshal wager record: %v", err)
	}

	key := WagerKey(gameID, name)
	if err := s.cache.Set(key, data); err != nil {
		log.Warn("Failed to cache wager for %s: %v", name, err)
	}

	if err := s.remote.Put(ctx, key, data); err != nil {
		log.Warn("Failed to save wager for %s: %v", name, err)
		return false, nil
	}
	return true, nil
}

// LoadWager reads one player's wager record, returning (nil, nil) when
// the player has not submitted anything yet.
func (s *StateStore) LoadWager(ctx context.Context, gameID, name string) (*types.WagerRecord, error) {
	data, err := s.fetch(ctx, WagerKey(gameID, name))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	record := &types.WagerRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		log.Warn("Malformed wager record for %s: %v", name, err)
		return nil, nil
	}
	return record, nil
}

// fetch reads a key from the remote, mirroring hits into the cache and
// falling back to the cache when the remote call fails. A key that is
// missing both remotely and locally yields (nil, nil).
func (s *StateStore) fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.remote.Get(ctx, key)
	if err == nil {
		if cacheErr := s.cache.Set(key, data); cacheErr != nil {
			log.Warn("Failed to cache %s: %v", key, cacheErr)
		}
		return data, nil
	}
	if IsNotFound(err) {
		return nil, nil
	}

	log.Warn("Remote read for %s failed, trying cache: %v", key, err)
	cached, cacheErr := s.cache.Get(key)
	if cacheErr != nil {
		if cache.IsMiss(cacheErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache for %s: %v", key, cacheErr)
	}
	return cached, nil
}
