package state

import (
	"fmt"
	"sync"

	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

type InMemoryStateManager struct {
	lock sync.RWMutex
	doc  *types.GameStateDocument
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		doc: types.NewGameStateDocument(),
	}
}

func (m *InMemoryStateManager) Get() (*types.GameStateDocument, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.doc.Copy(), nil
}

func (m *InMemoryStateManager) Set(doc *types.GameStateDocument) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	m.doc = doc
	return nil
}

func (m *InMemoryStateManager) Update(mutate func(doc *types.GameStateDocument) error) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return mutate(m.doc)
}
