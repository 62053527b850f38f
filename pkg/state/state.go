package state

import (
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// StateManager provides shared access to a session's game state document.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current document.
	Get() (*types.GameStateDocument, error)
	// Set replaces the current document.
	Set(doc *types.GameStateDocument) error
	// Update applies a mutation to the document while holding the lock.
	Update(mutate func(doc *types.GameStateDocument) error) error
}
