package scores

import (
	"sort"

	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// ComputeScores derives every player's score from the replicated document.
// It is pure: it never mutates the document and always yields the same
// output for the same input. Correct guesses add the tile's captured value,
// incorrect guesses subtract it, and final round outcomes add or subtract
// each player's own wager. Because only whole-document snapshots are
// replicated, recomputing from source keeps creator and viewer score
// displays convergent after any missed poll.
func ComputeScores(doc *types.GameStateDocument) []types.Player {
	totals := make(map[string]int, len(doc.Users))
	for _, user := range doc.Users {
		totals[user.Name] = doc.Carryover[user.Name]
	}

	for _, tile := range doc.TileStates {
		for _, name := range tile.CorrectGuessers {
			if _, ok := totals[name]; ok {
				totals[name] += tile.OriginalValue
			}
		}
		for _, name := range tile.IncorrectGuessers {
			if _, ok := totals[name]; ok {
				totals[name] -= tile.OriginalValue
			}
		}
	}

	if doc.Final != nil {
		for _, name := range doc.Final.CorrectGuessers {
			if _, ok := totals[name]; ok {
				totals[name] += doc.Final.Wagers[name]
			}
		}
		for _, name := range doc.Final.IncorrectGuessers {
			if _, ok := totals[name]; ok {
				totals[name] -= doc.Final.Wagers[name]
			}
		}
	}

	players := make([]types.Player, len(doc.Users))
	for i, user := range doc.Users {
		players[i] = types.Player{Name: user.Name, Score: totals[user.Name]}
	}
	return players
}

// Refresh recomputes the document's player scores in place.
func Refresh(doc *types.GameStateDocument) {
	doc.Users = ComputeScores(doc)
}

// PlayerScore returns the derived score for a single player.
func PlayerScore(doc *types.GameStateDocument, name string) int {
	for _, player := range ComputeScores(doc) {
		if player.Name == name {
			return player.Score
		}
	}
	return 0
}

// SortedDescending returns a copy of the players ordered by score from
// highest to lowest, for the final scores display.
func SortedDescending(players []types.Player) []types.Player {
	sorted := append([]types.Player{}, players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
