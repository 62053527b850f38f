package trivia

import (
	"fmt"

	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// Verdict is the creator's ruling on one player's guess for one tile.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// InitializeTileStates replaces every tile state with a fresh hidden one
// for the document's current categories. This is always a full replace:
// tile states from a previous round's categories are never merged by
// position.
func InitializeTileStates(doc *types.GameStateDocument) {
	tileStates := make(map[string]*types.TileState)
	for categoryIndex, category := range doc.Categories {
		for clueIndex, clue := range category.Clues {
			tileStates[types.TileID(categoryIndex, clueIndex)] = types.NewTileState(clue.Value)
		}
	}
	doc.TileStates = tileStates
}

// SwitchRound moves the board to another round. For the first and second
// rounds the board categories are replaced from the provided board data
// and every tile is reinitialized. Switching to the final round leaves
// the board as-is and opens the final round protocol on all clients.
func SwitchRound(doc *types.GameStateDocument, round types.Round, board *types.BoardData) error {
	switch round {
	case types.RoundFirst, types.RoundSecond:
		if board == nil {
			return fmt.Errorf("no board data for round %s", round)
		}
		doc.Round = round
		doc.Categories = board.CategoriesForRound(round)
		doc.FinalModalVisible = false
		doc.Final = nil
		InitializeTileStates(doc)
	case types.RoundFinal:
		doc.Round = types.RoundFinal
		doc.FinalModalVisible = true
		doc.Final = types.NewFinalRoundState()
	default:
		return fmt.Errorf("unknown round: %s", round)
	}
	return nil
}

// FlipTile advances a tile out of its hidden state. In the replicated
// model a flip goes straight to blank with the scoring dialog open, so
// viewers never see a half-revealed clue before a decision is recorded.
// Flipping a blanked tile with a closed dialog resets it to hidden.
func FlipTile(doc *types.GameStateDocument, tileID string) error {
	tile, ok := doc.Tile(tileID)
	if !ok {
		return fmt.Errorf("no tile state for %s", tileID)
	}
	if !tile.IsFlipped {
		tile.IsFlipped = true
		tile.IsAnswerShown = false
		tile.IsBlank = true
		tile.ShowModal = true
		tile.ModalStep = types.ModalStepClue
		tile.PendingCorrectGuessers = append([]string{}, tile.CorrectGuessers...)
		tile.PendingIncorrectGuessers = append([]string{}, tile.IncorrectGuessers...)
		return nil
	}
	if tile.IsBlank && !tile.ShowModal {
		tile.IsFlipped = false
		tile.IsAnswerShown = false
		tile.IsBlank = false
		tile.ModalStep = types.ModalStepClue
		return nil
	}
	return nil
}

// AdvanceModalStep moves the guessing dialog forward: clue, answer,
// scoring. The step is replicated so viewer dialogs mirror it. Advancing
// past scoring is a no-op.
func AdvanceModalStep(doc *types.GameStateDocument, tileID string) error {
	tile, ok := doc.Tile(tileID)
	if !ok {
		return fmt.Errorf("no tile state for %s", tileID)
	}
	if !tile.ShowModal {
		return fmt.Errorf("guessing dialog for %s is not open", tileID)
	}
	switch tile.ModalStep {
	case types.ModalStepClue:
		tile.ModalStep = types.ModalStepAnswer
		tile.IsAnswerShown = true
	case types.ModalStepAnswer:
		tile.ModalStep = types.ModalStepScoring
	case types.ModalStepScoring:
	default:
		return fmt.Errorf("unknown modal step: %s", tile.ModalStep)
	}
	return nil
}

// ToggleGuess toggles a player between unset, correct and incorrect in
// the open dialog's pending sets. Toggling the same verdict twice clears
// it, and a name is never present in both sets at once. Nothing is
// recorded on the tile itself until the dialog is submitted, so viewers
// never see guesses or scores change mid-dialog.
func ToggleGuess(doc *types.GameStateDocument, tileID string, name string, verdict Verdict) error {
	tile, ok := doc.Tile(tileID)
	if !ok {
		return fmt.Errorf("no tile state for %s", tileID)
	}
	if !tile.ShowModal {
		return fmt.Errorf("guessing dialog for %s is not open", tileID)
	}
	switch verdict {
	case VerdictCorrect:
		tile.PendingCorrectGuessers = toggleName(tile.PendingCorrectGuessers, name)
		tile.PendingIncorrectGuessers = removeName(tile.PendingIncorrectGuessers, name)
	case VerdictIncorrect:
		tile.PendingIncorrectGuessers = toggleName(tile.PendingIncorrectGuessers, name)
		tile.PendingCorrectGuessers = removeName(tile.PendingCorrectGuessers, name)
	default:
		return fmt.Errorf("unknown verdict: %s", verdict)
	}
	return nil
}

// SubmitScoring records the pending toggles into the tile's guess sets,
// closes the guessing dialog for all clients and resets the dialog step
// for the next tile. Players left unmarked simply contribute no score
// change. The caller recomputes scores afterwards.
func SubmitScoring(doc *types.GameStateDocument, tileID string) error {
	tile, ok := doc.Tile(tileID)
	if !ok {
		return fmt.Errorf("no tile state for %s", tileID)
	}
	if !tile.ShowModal {
		return fmt.Errorf("guessing dialog for %s is not open", tileID)
	}
	tile.CorrectGuessers = append([]string{}, tile.PendingCorrectGuessers...)
	tile.IncorrectGuessers = append([]string{}, tile.PendingIncorrectGuessers...)
	tile.PendingCorrectGuessers = nil
	tile.PendingIncorrectGuessers = nil
	tile.ShowModal = false
	tile.ModalStep = types.ModalStepClue
	return nil
}

// DismissScoring closes the guessing dialog without submitting. The
// pending toggles are discarded and the tile's recorded guess sets are
// left untouched.
func DismissScoring(doc *types.GameStateDocument, tileID string) error {
	tile, ok := doc.Tile(tileID)
	if !ok {
		return fmt.Errorf("no tile state for %s", tileID)
	}
	tile.PendingCorrectGuessers = nil
	tile.PendingIncorrectGuessers = nil
	tile.ShowModal = false
	tile.ModalStep = types.ModalStepClue
	return nil
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
