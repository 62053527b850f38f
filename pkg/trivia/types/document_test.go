package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileID(t *testing.T) {
	id := TileID(2, 3)
	assert.Equal(t, "2-3", id)

	categoryIndex, clueIndex, err := ParseTileID(id)
	require.NoError(t, err)
	assert.Equal(t, 2, categoryIndex)
	assert.Equal(t, 3, clueIndex)

	for _, malformed := range []string{"", "2", "a-b", "2-b"} {
		_, _, err := ParseTileID(malformed)
		assert.Error(t, err, malformed)
	}
}

func TestDocumentCopy(t *testing.T) {
	doc := NewGameStateDocument()
	doc.GameID = "173"
	doc.Round = RoundSecond
	doc.Categories = []Category{
		{Title: "HISTORY", Clues: []Clue{{Question: "q", Answer: "a", Value: 200}}},
	}
	doc.TileStates["0-0"] = NewTileState(200)
	doc.TileStates["0-0"].CorrectGuessers = []string{"Alice"}
	doc.TileStates["0-0"].PendingCorrectGuessers = []string{"Bob"}
	doc.Users = []Player{{Name: "Alice", Score: 200}}
	doc.Final = NewFinalRoundState()
	doc.Final.Wagers["Alice"] = 100
	doc.Carryover = map[string]int{"Alice": 200}

	copied := doc.Copy()
	require.Equal(t, doc, copied)

	// Mutating the copy must not leak into the original.
	copied.TileStates["0-0"].CorrectGuessers[0] = "Bob"
	copied.TileStates["0-0"].PendingCorrectGuessers[0] = "Carol"
	copied.Categories[0].Clues[0].Value = 999
	copied.Final.Wagers["Alice"] = 0
	copied.Carryover["Alice"] = 0

	assert.Equal(t, []string{"Alice"}, doc.TileStates["0-0"].CorrectGuessers)
	assert.Equal(t, []string{"Bob"}, doc.TileStates["0-0"].PendingCorrectGuessers)
	assert.Equal(t, 200, doc.Categories[0].Clues[0].Value)
	assert.Equal(t, 100, doc.Final.Wagers["Alice"])
	assert.Equal(t, 200, doc.Carryover["Alice"])
}

func TestClueForTile(t *testing.T) {
	doc := NewGameStateDocument()
	doc.Categories = []Category{
		{Title: "HISTORY", Clues: []Clue{{Question: "q", Answer: "a", Value: 200}}},
	}

	clue, err := doc.ClueForTile("0-0")
	require.NoError(t, err)
	assert.Equal(t, 200, clue.Value)

	_, err = doc.ClueForTile("1-0")
	assert.Error(t, err)
	_, err = doc.ClueForTile("0-5")
	assert.Error(t, err)
}

func TestWagerRecordSubmitted(t *testing.T) {
	var record *WagerRecord
	assert.False(t, record.HasWager())
	assert.False(t, record.Submitted())

	record = &WagerRecord{Wager: 0}
	assert.False(t, record.HasWager(), "presence is judged by the write timestamp")

	record.LastUpdated = record.LastUpdated.Add(1)
	assert.True(t, record.HasWager())
	assert.False(t, record.Submitted())

	record.Answer = "Mount Everest"
	assert.True(t, record.Submitted())
}
