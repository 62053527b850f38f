package finalround

import (
	"context"
	"fmt"

	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/scores"
	"github.com/triviatastic/triviatastic/pkg/session"
	"github.com/triviatastic/triviatastic/pkg/store"
	"github.com/triviatastic/triviatastic/pkg/trivia"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// MinimumWagerCap guarantees every player can stake at least this much,
// so a comeback wager is possible even at a zero or negative score.
const MinimumWagerCap = 1000

// WagerCap returns the most a player with the given score may wager.
func WagerCap(score int) int {
	if score > MinimumWagerCap {
		return score
	}
	return MinimumWagerCap
}

type ErrWagerTooLarge struct {
	Wager int
	Cap   int
}

func (e *ErrWagerTooLarge) Error() string {
	return fmt.Sprintf("wager %d exceeds the cap of %d", e.Wager, e.Cap)
}

func IsWagerTooLarge(err error) bool {
	_, ok := err.(*ErrWagerTooLarge)
	return ok
}

// Coordinator runs the final round's four phase protocol on top of the
// board round machine: collecting wagers, showing the clue, revealing
// the correct response, and scoring against each player's own wager.
// Player submissions travel through the per-player side-channel; only
// phase transitions and the creator's observed wagers are replicated
// through the main document.
type Coordinator struct {
	session *session.GameSession
	store   *store.StateStore
}

type NewCoordinatorOptions struct {
	Session *session.GameSession
	Store   *store.StateStore
}

func NewCoordinator(opts NewCoordinatorOptions) *Coordinator {
	return &Coordinator{
		session: opts.Session,
		store:   opts.Store,
	}
}

// SubmitWager records a player's wager in their own side-channel key.
// A wager above max(current score, 1000) is rejected without writing
// anything. Any previously submitted answer is preserved.
func (c *Coordinator) SubmitWager(ctx context.Context, name string, wager int) error {
	if wager < 0 {
		return fmt.Errorf("wager must not be negative")
	}

	doc, err := c.session.GetCurrentState()
	if err != nil {
		return fmt.Errorf("failed to read game state: %v", err)
	}
	limit := WagerCap(scores.PlayerScore(doc, name))
	if wager > limit {
		return &ErrWagerTooLarge{Wager: wager, Cap: limit}
	}

	record, err := c.store.LoadWager(ctx, doc.GameID, name)
	if err != nil {
		return fmt.Errorf("failed to load wager record: %v", err)
	}
	if record == nil {
		record = &types.WagerRecord{}
	}
	record.Wager = wager

	ok, err := c.store.SaveWager(ctx, doc.GameID, name, record)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wager for %s was not accepted by the store", name)
	}
	return nil
}

// SubmitAnswer records a player's final round answer, preserving any
// previously submitted wager.
func (c *Coordinator) SubmitAnswer(ctx context.Context, name, answer string) error {
	doc, err := c.session.GetCurrentState()
	if err != nil {
		return fmt.Errorf("failed to read game state: %v", err)
	}

	record, err := c.store.LoadWager(ctx, doc.GameID, name)
	if err != nil {
		return fmt.Errorf("failed to load wager record: %v", err)
	}
	if record == nil {
		record = &types.WagerRecord{}
	}
	record.Answer = answer

	ok, err := c.store.SaveWager(ctx, doc.GameID, name, record)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("answer for %s was not accepted by the store", name)
	}
	return nil
}

// CollectWagers reads every player's side-channel record. Players who
// have not submitted anything yet are absent from the result.
func (c *Coordinator) CollectWagers(ctx context.Context) (map[string]*types.WagerRecord, error) {
	doc, err := c.session.GetCurrentState()
	if err != nil {
		return nil, fmt.Errorf("failed to read game state: %v", err)
	}

	records := make(map[string]*types.WagerRecord)
	for _, name := range doc.PlayerNames() {
		record, err := c.store.LoadWager(ctx, doc.GameID, name)
		if err != nil {
			log.Warn("Failed to load wager for %s: %v", name, err)
			continue
		}
		if record != nil {
			records[name] = record
		}
	}
	return records, nil
}

// ApplyWagerRecords folds polled side-channel records into the
// replicated document and auto-advances the protocol: to the clue phase
// once every player has a wager, and to the reveal once every player has
// both a wager and an answer. Each transition is itself replicated.
func (c *Coordinator) ApplyWagerRecords(records map[string]*types.WagerRecord) error {
	return c.session.Mutate(func(doc *types.GameStateDocument) error {
		if doc.Final == nil {
			return nil
		}

		allWagered := len(doc.Users) > 0
		allSubmitted := len(doc.Users) > 0
		for _, name := range doc.PlayerNames() {
			record := records[name]
			if record.HasWager() {
				doc.Final.Wagers[name] = record.Wager
			} else {
				allWagered = false
			}
			if !record.Submitted() {
				allSubmitted = false
			}
		}

		if doc.Final.Phase == types.FinalPhaseWagers && allWagered {
			doc.Final.Phase = types.FinalPhaseClue
		}
		if doc.Final.Phase == types.FinalPhaseClue && allSubmitted {
			c.revealLocked(doc, records)
		}
		return nil
	})
}

// ForceAdvance moves from collecting wagers to the clue phase before
// every wager is in. This is an explicit creator override with no
// safeguard beyond the caller's own confirmation.
func (c *Coordinator) ForceAdvance() error {
	return c.session.Mutate(func(doc *types.GameStateDocument) error {
		if doc.Final == nil {
			return fmt.Errorf("final round is not active")
		}
		if doc.Final.Phase == types.FinalPhaseWagers {
			doc.Final.Phase = types.FinalPhaseClue
		}
		return nil
	})
}

// Reveal shows the correct response to all clients. The reveal normally
// happens automatically once every submission is in, but the creator
// remains an implicit source of truth if polling lags.
func (c *Coordinator) Reveal(records map[string]*types.WagerRecord) error {
	return c.session.Mutate(func(doc *types.GameStateDocument) error {
		if doc.Final == nil {
			return fmt.Errorf("final round is not active")
		}
		c.revealLocked(doc, records)
		return nil
	})
}

func (c *Coordinator) revealLocked(doc *types.GameStateDocument, records map[string]*types.WagerRecord) {
	doc.Final.Phase = types.FinalPhaseRevealed
	for name, record := range records {
		if record == nil {
			continue
		}
		if record.HasWager() {
			doc.Final.Wagers[name] = record.Wager
		}
		if record.Answer != "" {
			doc.Final.Answers[name] = record.Answer
		}
	}
}

// ToggleOutcome toggles a player between unset, correct and incorrect
// for the final clue, scored against their own wager instead of a fixed
// clue value. Like tile scoring it is exactly self-inverse.
func (c *Coordinator) ToggleOutcome(name string, verdict trivia.Verdict) error {
	return c.session.Mutate(func(doc *types.GameStateDocument) error {
		if doc.Final == nil {
			return fmt.Errorf("final round is not active")
		}
		switch verdict {
		case trivia.VerdictCorrect:
			doc.Final.CorrectGuessers = toggleName(doc.Final.CorrectGuessers, name)
			doc.Final.IncorrectGuessers = removeName(doc.Final.IncorrectGuessers, name)
		case trivia.VerdictIncorrect:
			doc.Final.IncorrectGuessers = toggleName(doc.Final.IncorrectGuessers, name)
			doc.Final.CorrectGuessers = removeName(doc.Final.CorrectGuessers, name)
		default:
			return fmt.Errorf("unknown verdict: %s", verdict)
		}
		scores.Refresh(doc)
		return nil
	})
}

// UnmarkedPlayers lists players whose final outcome has not been marked.
// Proceeding with unmarked players is allowed: their guess sets stay
// empty and their score does not change.
func (c *Coordinator) UnmarkedPlayers() ([]string, error) {
	doc, err := c.session.GetCurrentState()
	if err != nil {
		return nil, err
	}
	if doc.Final == nil {
		return nil, fmt.Errorf("final round is not active")
	}

	marked := make(map[string]bool)
	for _, name := range doc.Final.CorrectGuessers {
		marked[name] = true
	}
	for _, name := range doc.Final.IncorrectGuessers {
		marked[name] = true
	}

	var unmarked []string
	for _, name := range doc.PlayerNames() {
		if !marked[name] {
			unmarked = append(unmarked, name)
		}
	}
	return unmarked, nil
}

// ShowFinalScores moves the protocol to the final scores display.
func (c *Coordinator) ShowFinalScores() error {
	return c.session.Mutate(func(doc *types.GameStateDocument) error {
		if doc.Final == nil {
			return fmt.Errorf("final round is not active")
		}
		doc.Final.Phase = types.FinalPhaseScores
		scores.Refresh(doc)
		return nil
	})
}

// FinalScores returns the players sorted by score, highest first.
func (c *Coordinator) FinalScores() ([]types.Player, error) {
	players, err := c.session.CalculateScores()
	if err != nil {
		return nil, err
	}
	return scores.SortedDescending(players), nil
}

// Close dismisses the final scores display: the round goes back to
// first with a fresh board for a potential rematch, and every player's
// score is carried forward unchanged as the new baseline.
func (c *Coordinator) Close() error {
	return c.session.Mutate(func(doc *types.GameStateDocument) error {
		carryover := make(map[string]int)
		for _, player := range scores.ComputeScores(doc) {
			carryover[player.Name] = player.Score
		}
		doc.Carryover = carryover
		if err := trivia.SwitchRound(doc, types.RoundFirst, c.session.Board()); err != nil {
			return err
		}
		scores.Refresh(doc)
		return nil
	})
}

func toggleName(names []string, name string) []string {
	for i, existing := range names {
		if existing == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return append(names, name)
}

func removeName(names []string, name string) []string {
	for i, existing := range names {
		if existing == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
