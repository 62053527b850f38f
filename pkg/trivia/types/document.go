package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Round identifies which stage of the game the board is showing.
type Round string

const (
	RoundFirst  Round = "first"
	RoundSecond Round = "second"
	RoundFinal  Round = "final"
)

// ModalStep is the creator-driven sub-state of the guessing dialog.
// It is replicated so viewer dialogs mirror the creator's step.
type ModalStep string

const (
	ModalStepClue    ModalStep = "clue"
	ModalStepAnswer  ModalStep = "answer"
	ModalStepScoring ModalStep = "scoring"
)

// FinalPhase tracks progress through the final round protocol.
type FinalPhase string

const (
	FinalPhaseWagers   FinalPhase = "collectingWagers"
	FinalPhaseClue     FinalPhase = "showingClue"
	FinalPhaseRevealed FinalPhase = "revealed"
	FinalPhaseScores   FinalPhase = "finalScores"
)

type Clue struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Value       int    `json:"value"`
	DailyDouble bool   `json:"isDailyDouble,omitempty"`
}

type Category struct {
	Title string `json:"title"`
	Clues []Clue `json:"questions"`
}

// TileState is the replicated reveal progression and guess record for one clue.
type TileState struct {
	IsFlipped         bool      `json:"isFlipped"`
	IsAnswerShown     bool      `json:"isAnswerShown"`
	IsBlank           bool      `json:"isBlank"`
	CorrectGuessers   []string  `json:"correctGuessers"`
	IncorrectGuessers []string  `json:"incorrectGuessers"`
	OriginalValue     int       `json:"originalValue"`
	ModalStep         ModalStep `json:"modalStep"`
	ShowModal         bool      `json:"showModal"`

	// PendingCorrectGuessers and PendingIncorrectGuessers are the open
	// dialog's scratch toggles. They stay local to the creator and are
	// never persisted: submitting copies them into the recorded sets,
	// dismissing discards them.
	PendingCorrectGuessers   []string `json:"-"`
	PendingIncorrectGuessers []string `json:"-"`
}

// NewTileState returns a hidden tile with the clue's point value captured.
// The value is never recomputed afterwards, so reloading categories cannot
// drift the score contribution of an already-scored tile.
func NewTileState(value int) *TileState {
	return &TileState{
		CorrectGuessers:   []string{},
		IncorrectGuessers: []string{},
		OriginalValue:     value,
		ModalStep:         ModalStepClue,
	}
}

func (t *TileState) Copy() *TileState {
	copied := *t
	copied.CorrectGuessers = append([]string{}, t.CorrectGuessers...)
	copied.IncorrectGuessers = append([]string{}, t.IncorrectGuessers...)
	if t.PendingCorrectGuessers != nil {
		copied.PendingCorrectGuessers = append([]string{}, t.PendingCorrectGuessers...)
	}
	if t.PendingIncorrectGuessers != nil {
		copied.PendingIncorrectGuessers = append([]string{}, t.PendingIncorrectGuessers...)
	}
	return &copied
}

type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// FinalRoundState is the replicated portion of the final round protocol.
// Wagers holds the creator's last observed wager per player so that viewers
// derive the same final scores without reading the side-channel themselves.
type FinalRoundState struct {
	Phase             FinalPhase        `json:"phase"`
	Wagers            map[string]int    `json:"wagers,omitempty"`
	Answers           map[string]string `json:"answers,omitempty"`
	CorrectGuessers   []string          `json:"correctGuessers"`
	IncorrectGuessers []string          `json:"incorrectGuessers"`
}

func NewFinalRoundState() *FinalRoundState {
	return &FinalRoundState{
		Phase:             FinalPhaseWagers,
		Wagers:            make(map[string]int),
		Answers:           make(map[string]string),
		CorrectGuessers:   []string{},
		IncorrectGuessers: []string{},
	}
}

func (f *FinalRoundState) Copy() *FinalRoundState {
	copied := &FinalRoundState{
		Phase:             f.Phase,
		Wagers:            make(map[string]int, len(f.Wagers)),
		Answers:           make(map[string]string, len(f.Answers)),
		CorrectGuessers:   append([]string{}, f.CorrectGuessers...),
		IncorrectGuessers: append([]string{}, f.IncorrectGuessers...),
	}
	for name, wager := range f.Wagers {
		copied.Wagers[name] = wager
	}
	for name, answer := range f.Answers {
		copied.Answers[name] = answer
	}
	return copied
}

type Metadata struct {
	SavedAt           time.Time `json:"savedAt"`
	SessionIdentifier string    `json:"gameIdentifier"`
	IsCreatorWrite    bool      `json:"isCreatorWrite,omitempty"`
}

// GameStateDocument is the single replicated object per game identifier.
// The creator's session is the only writer; viewers replace their local
// copy wholesale with each successfully polled snapshot.
type GameStateDocument struct {
	Categories        []Category            `json:"categories"`
	TileStates        map[string]*TileState `json:"tileStates"`
	Users             []Player              `json:"users"`
	Round             Round                 `json:"round"`
	FinalModalVisible bool                  `json:"finalModalVisible"`
	Final             *FinalRoundState      `json:"final,omitempty"`
	// Carryover is the per-player score baseline carried into a rematch
	// after the final round's tiles are reset.
	Carryover   map[string]int `json:"carryover,omitempty"`
	GameID      string         `json:"gameId"`
	Metadata    Metadata       `json:"metadata"`
	LastUpdated time.Time      `json:"lastUpdated,omitempty"`
}

func NewGameStateDocument() *GameStateDocument {
	return &GameStateDocument{
		Categories: []Category{},
		TileStates: make(map[string]*TileState),
		Users:      []Player{},
		Round:      RoundFirst,
	}
}

func (d *GameStateDocument) Copy() *GameStateDocument {
	copied := &GameStateDocument{
		Categories:        make([]Category, len(d.Categories)),
		TileStates:        make(map[string]*TileState, len(d.TileStates)),
		Users:             append([]Player{}, d.Users...),
		Round:             d.Round,
		FinalModalVisible: d.FinalModalVisible,
		GameID:            d.GameID,
		Metadata:          d.Metadata,
		LastUpdated:       d.LastUpdated,
	}
	for i, category := range d.Categories {
		copied.Categories[i] = Category{
			Title: category.Title,
			Clues: append([]Clue{}, category.Clues...),
		}
	}
	for id, tile := range d.TileStates {
		copied.TileStates[id] = tile.Copy()
	}
	if d.Final != nil {
		copied.Final = d.Final.Copy()
	}
	if d.Carryover != nil {
		copied.Carryover = make(map[string]int, len(d.Carryover))
		for name, score := range d.Carryover {
			copied.Carryover[name] = score
		}
	}
	return copied
}

// TileID returns the stable key for a clue's tile state.
func TileID(categoryIndex, clueIndex int) string {
	return fmt.Sprintf("%d-%d", categoryIndex, clueIndex)
}

// ParseTileID splits a tile id back into category and clue indices.
func ParseTileID(id string) (categoryIndex, clueIndex int, err error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed tile id: %s", id)
	}
	categoryIndex, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed tile id: %s", id)
	}
	clueIndex, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed tile id: %s", id)
	}
	return categoryIndex, clueIndex, nil
}

// Tile returns the tile state for the given id, if present.
func (d *GameStateDocument) Tile(id string) (*TileState, bool) {
	tile, ok := d.TileStates[id]
	return tile, ok
}

// ClueForTile resolves a tile id to its category/clue pair.
func (d *GameStateDocument) ClueForTile(id string) (*Clue, error) {
	categoryIndex, clueIndex, err := ParseTileID(id)
	if err != nil {
		return nil, err
	}
	if categoryIndex < 0 || categoryIndex >= len(d.Categories) {
		return nil, fmt.Errorf("tile %s has no category", id)
	}
	category := d.Categories[categoryIndex]
	if clueIndex < 0 || clueIndex >= len(category.Clues) {
		return nil, fmt.Errorf("tile %s has no clue", id)
	}
	return &category.Clues[clueIndex], nil
}

// PlayerNames returns the player names in document order.
func (d *GameStateDocument) PlayerNames() []string {
	names := make([]string, len(d.Users))
	for i, user := range d.Users {
		names[i] = user.Name
	}
	return names
}
