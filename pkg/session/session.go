package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/triviatastic/triviatastic/pkg/identifier"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/scores"
	"github.com/triviatastic/triviatastic/pkg/state"
	"github.com/triviatastic/triviatastic/pkg/trivia"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// Role is fixed for the lifetime of a session instance and is never
// inferred from player list position.
type Role string

const (
	// RoleCreator is the single client permitted to write the main
	// game document.
	RoleCreator Role = "creator"
	// RoleViewer observes the game read-only through polling.
	RoleViewer Role = "viewer"
)

// SaveRequest asks the push worker to persist a document snapshot.
type SaveRequest struct {
	Identifier string
	Document   *types.GameStateDocument
}

// GameSession binds one client to one game identifier and one role. All
// document mutation goes through its methods; the UI layer never pokes
// tile or score internals directly.
type GameSession struct {
	role       Role
	identifier string
	board      *types.BoardData
	states     state.StateManager
	saveChan   chan<- SaveRequest

	generationLock sync.Mutex
	generation     uuid.UUID
}

type NewCreatorSessionOptions struct {
	Board  *types.BoardData
	GameID string
	// SaveChan receives a snapshot after session creation and after
	// every accepted mutation.
	SaveChan chan<- SaveRequest
	// Rand drives join code sampling. Defaults to a time-seeded source.
	Rand *rand.Rand
}

// NewCreatorSession starts a game from board data. The shared join code
// is derived once from the board's text, every clue gets an empty tile
// state, and an initial save is triggered immediately.
func NewCreatorSession(opts NewCreatorSessionOptions) (*GameSession, error) {
	if opts.Board == nil {
		return nil, fmt.Errorf("board data is required")
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	joinCode := identifier.ForBoard(opts.Board, rng)
	if joinCode == "" {
		return nil, fmt.Errorf("board has no usable words for a join code")
	}

	doc := types.NewGameStateDocument()
	doc.GameID = opts.GameID
	if err := trivia.SwitchRound(doc, types.RoundFirst, opts.Board); err != nil {
		return nil, fmt.Errorf("failed to initialize board: %v", err)
	}

	states := state.NewInMemoryStateManager()
	if err := states.Set(doc); err != nil {
		return nil, fmt.Errorf("failed to set initial state: %v", err)
	}

	s := &GameSession{
		role:       RoleCreator,
		identifier: joinCode,
		board:      opts.Board,
		states:     states,
		saveChan:   opts.SaveChan,
		generation: uuid.New(),
	}
	s.notifyChange()
	return s, nil
}

type NewViewerSessionOptions struct {
	Identifier string
}

// NewViewerSession joins an existing game by its join code. The document
// starts empty until the first successful pull.
func NewViewerSession(opts NewViewerSessionOptions) (*GameSession, error) {
	if opts.Identifier == "" {
		return nil, fmt.Errorf("game identifier is required")
	}
	return &GameSession{
		role:       RoleViewer,
		identifier: opts.Identifier,
		states:     state.NewInMemoryStateManager(),
		generation: uuid.New(),
	}, nil
}

func (s *GameSession) Role() Role {
	return s.role
}

func (s *GameSession) Identifier() string {
	return s.identifier
}

// Generation identifies the session's current polling epoch. Results
// stamped with an older generation must be discarded on arrival.
func (s *GameSession) Generation() uuid.UUID {
	s.generationLock.Lock()
	defer s.generationLock.Unlock()
	return s.generation
}

// Close invalidates the session's polling generation so any in-flight
// poll result is discarded instead of applied.
func (s *GameSession) Close() {
	s.generationLock.Lock()
	defer s.generationLock.Unlock()
	s.generation = uuid.New()
}

// GetCurrentState returns a copy of the current document.
func (s *GameSession) GetCurrentState() (*types.GameStateDocument, error) {
	return s.states.Get()
}

// CalculateScores derives every player's score from the current document.
func (s *GameSession) CalculateScores() ([]types.Player, error) {
	doc, err := s.states.Get()
	if err != nil {
		return nil, err
	}
	return scores.ComputeScores(doc), nil
}

// LoadState replaces the local document with a polled remote snapshot.
// The snapshot is only applied when its generation matches the session's
// current one; anything else arrives from a cancelled poller.
func (s *GameSession) LoadState(generation uuid.UUID, doc *types.GameStateDocument) error {
	if doc == nil {
		return nil
	}
	if generation != s.Generation() {
		log.Debug("Discarding stale snapshot for %s", s.identifier)
		return nil
	}
	return s.states.Set(doc)
}

// Mutate applies a creator-only mutation to the document and triggers a
// persistence write when it is accepted.
func (s *GameSession) Mutate(mutate func(doc *types.GameStateDocument) error) error {
	if s.role != RoleCreator {
		return fmt.Errorf("only the creator may modify the game document")
	}
	if err := s.states.Update(mutate); err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

// SetCategories replaces the board categories and reinitializes every
// tile state.
func (s *GameSession) SetCategories(categories []types.Category) error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		doc.Categories = categories
		trivia.InitializeTileStates(doc)
		return nil
	})
}

// SetUsers replaces the player list. Names must be unique: they are the
// join key across the document, the wager side-channel and the final
// round display.
func (s *GameSession) SetUsers(users []types.Player) error {
	seen := make(map[string]bool, len(users))
	for _, user := range users {
		if user.Name == "" {
			return fmt.Errorf("player name must not be empty")
		}
		if seen[user.Name] {
			return fmt.Errorf("duplicate player name: %s", user.Name)
		}
		seen[user.Name] = true
	}
	return s.Mutate(func(doc *types.GameStateDocument) error {
		doc.Users = users
		return nil
	})
}

// ResetTileStates reinitializes every tile for the current categories.
func (s *GameSession) ResetTileStates() error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		trivia.InitializeTileStates(doc)
		return nil
	})
}

// SwitchRound moves the board to another round using the session's
// board data.
func (s *GameSession) SwitchRound(round types.Round) error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		return trivia.SwitchRound(doc, round, s.board)
	})
}

// FlipTile advances a tile's reveal progression.
func (s *GameSession) FlipTile(tileID string) error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		return trivia.FlipTile(doc, tileID)
	})
}

// AdvanceModalStep moves the guessing dialog to its next step.
func (s *GameSession) AdvanceModalStep(tileID string) error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		return trivia.AdvanceModalStep(doc, tileID)
	})
}

// ToggleGuess toggles a player's guess status for a tile.
func (s *GameSession) ToggleGuess(tileID, name string, verdict trivia.Verdict) error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		return trivia.ToggleGuess(doc, tileID, name, verdict)
	})
}

// SubmitScoring closes the guessing dialog everywhere and recomputes
// player scores from the recorded guess sets.
func (s *GameSession) SubmitScoring(tileID string) error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		if err := trivia.SubmitScoring(doc, tileID); err != nil {
			return err
		}
		scores.Refresh(doc)
		return nil
	})
}

// DismissScoring closes the guessing dialog without recording anything.
func (s *GameSession) DismissScoring(tileID string) error {
	return s.Mutate(func(doc *types.GameStateDocument) error {
		return trivia.DismissScoring(doc, tileID)
	})
}

// Board returns the board data a creator session was started from.
func (s *GameSession) Board() *types.BoardData {
	return s.board
}

// notifyChange snapshots the document and hands it to the push worker.
// Viewer sessions never write the main document.
func (s *GameSession) notifyChange() {
	if s.role != RoleCreator || s.saveChan == nil {
		return
	}

	err := s.states.Update(func(doc *types.GameStateDocument) error {
		doc.Metadata = types.Metadata{
			SavedAt:           time.Now().UTC(),
			SessionIdentifier: s.identifier,
			IsCreatorWrite:    true,
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to stamp metadata: %v", err)
		return
	}

	doc, err := s.states.Get()
	if err != nil {
		log.Error("Failed to snapshot document: %v", err)
		return
	}

	select {
	case s.saveChan <- SaveRequest{Identifier: s.identifier, Document: doc}:
	default:
		log.Warn("Save queue full, dropping write for %s", s.identifier)
	}
}
