package session

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triviatastic/triviatastic/pkg/identifier"
	"github.com/triviatastic/triviatastic/pkg/trivia"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

func sessionBoard() *types.BoardData {
	return &types.BoardData{
		Title: "Session Board",
		FirstRound: []types.Category{
			{
				Title: "World Capitals",
				Clues: []types.Clue{
					{Question: "This sprawling capital sits on the Seine", Answer: "What is Paris?", Value: 200},
				},
			},
		},
		SecondRound: []types.Category{
			{
				Title: "Famous Painters",
				Clues: []types.Clue{
					{Question: "He painted melting clocks", Answer: "Who is Dali?", Value: 400},
				},
			},
		},
		Final: types.FinalClue{
			Category: "Ancient History",
			Clue:     "This empire built an enormous colosseum",
			Answer:   "What is Rome?",
		},
	}
}

func newTestCreator(t *testing.T, saveChan chan SaveRequest) *GameSession {
	t.Helper()
	s, err := NewCreatorSession(NewCreatorSessionOptions{
		Board:    sessionBoard(),
		GameID:   "12345",
		SaveChan: saveChan,
		Rand:     rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	return s
}

func TestNewCreatorSession(t *testing.T) {
	saveChan := make(chan SaveRequest, 8)
	s := newTestCreator(t, saveChan)

	assert.Equal(t, RoleCreator, s.Role())
	assert.Len(t, strings.Split(s.Identifier(), "-"), identifier.WordCount)

	doc, err := s.GetCurrentState()
	require.NoError(t, err)
	assert.Equal(t, types.RoundFirst, doc.Round)
	assert.Equal(t, "12345", doc.GameID)
	require.Contains(t, doc.TileStates, "0-0")
	assert.Equal(t, 200, doc.TileStates["0-0"].OriginalValue)

	// Creation itself queues the first save.
	require.Len(t, saveChan, 1)
	req := <-saveChan
	assert.Equal(t, s.Identifier(), req.Identifier)
	assert.True(t, req.Document.Metadata.IsCreatorWrite)
	assert.Equal(t, s.Identifier(), req.Document.Metadata.SessionIdentifier)
}

func TestNewCreatorSessionRequiresBoard(t *testing.T) {
	_, err := NewCreatorSession(NewCreatorSessionOptions{})
	assert.Error(t, err)
}

func TestNewViewerSession(t *testing.T) {
	s, err := NewViewerSession(NewViewerSessionOptions{Identifier: "one-two-three-four"})
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, s.Role())
	assert.Equal(t, "one-two-three-four", s.Identifier())

	doc, err := s.GetCurrentState()
	require.NoError(t, err)
	assert.Empty(t, doc.Categories)
}

func TestNewViewerSessionRequiresIdentifier(t *testing.T) {
	_, err := NewViewerSession(NewViewerSessionOptions{})
	assert.Error(t, err)
}

func TestViewerCannotMutate(t *testing.T) {
	s, err := NewViewerSession(NewViewerSessionOptions{Identifier: "one-two-three-four"})
	require.NoError(t, err)

	assert.Error(t, s.FlipTile("0-0"))
	assert.Error(t, s.SetUsers([]types.Player{{Name: "Alice"}}))
	assert.Error(t, s.SwitchRound(types.RoundSecond))
}

func TestLoadStateGenerationMismatch(t *testing.T) {
	s, err := NewViewerSession(NewViewerSessionOptions{Identifier: "one-two-three-four"})
	require.NoError(t, err)

	snapshot := types.NewGameStateDocument()
	snapshot.GameID = "12345"
	snapshot.Categories = []types.Category{{Title: "Capitals"}}

	stale := s.Generation()
	s.Close()
	require.NoError(t, s.LoadState(stale, snapshot))

	doc, err := s.GetCurrentState()
	require.NoError(t, err)
	assert.Empty(t, doc.GameID, "stale snapshots must be discarded")

	require.NoError(t, s.LoadState(s.Generation(), snapshot))
	doc, err = s.GetCurrentState()
	require.NoError(t, err)
	assert.Equal(t, "12345", doc.GameID)
}

func TestSetUsersValidation(t *testing.T) {
	s := newTestCreator(t, make(chan SaveRequest, 8))

	assert.Error(t, s.SetUsers([]types.Player{{Name: ""}}))
	assert.Error(t, s.SetUsers([]types.Player{{Name: "Alice"}, {Name: "Alice"}}))
	assert.NoError(t, s.SetUsers([]types.Player{{Name: "Alice"}, {Name: "Bob"}}))
}

func TestMutationsQueueSaves(t *testing.T) {
	saveChan := make(chan SaveRequest, 8)
	s := newTestCreator(t, saveChan)
	<-saveChan

	require.NoError(t, s.FlipTile("0-0"))
	require.Len(t, saveChan, 1)
	req := <-saveChan
	assert.True(t, req.Document.TileStates["0-0"].IsFlipped)
}

func TestFullGuessingFlow(t *testing.T) {
	saveChan := make(chan SaveRequest, 64)
	s := newTestCreator(t, saveChan)
	require.NoError(t, s.SetUsers([]types.Player{{Name: "Alice"}, {Name: "Bob"}}))

	require.NoError(t, s.FlipTile("0-0"))
	require.NoError(t, s.AdvanceModalStep("0-0"))
	require.NoError(t, s.AdvanceModalStep("0-0"))
	require.NoError(t, s.ToggleGuess("0-0", "Alice", trivia.VerdictCorrect))
	require.NoError(t, s.ToggleGuess("0-0", "Bob", trivia.VerdictIncorrect))
	require.NoError(t, s.SubmitScoring("0-0"))

	doc, err := s.GetCurrentState()
	require.NoError(t, err)
	assert.False(t, doc.TileStates["0-0"].ShowModal)
	assert.Equal(t, []types.Player{
		{Name: "Alice", Score: 200},
		{Name: "Bob", Score: -200},
	}, doc.Users)

	// A viewer applying the creator's latest snapshot derives the same
	// scores from the same document.
	var last *types.GameStateDocument
	for len(saveChan) > 0 {
		last = (<-saveChan).Document
	}
	require.NotNil(t, last)

	viewer, err := NewViewerSession(NewViewerSessionOptions{Identifier: s.Identifier()})
	require.NoError(t, err)
	require.NoError(t, viewer.LoadState(viewer.Generation(), last))

	viewerScores, err := viewer.CalculateScores()
	require.NoError(t, err)
	assert.Equal(t, doc.Users, viewerScores)
}

func TestDismissScoringLeavesScoresUnchanged(t *testing.T) {
	saveChan := make(chan SaveRequest, 64)
	s := newTestCreator(t, saveChan)
	require.NoError(t, s.SetUsers([]types.Player{{Name: "Alice"}}))

	require.NoError(t, s.FlipTile("0-0"))
	require.NoError(t, s.AdvanceModalStep("0-0"))
	require.NoError(t, s.AdvanceModalStep("0-0"))
	require.NoError(t, s.ToggleGuess("0-0", "Alice", trivia.VerdictCorrect))

	// Mid-dialog snapshots replicate the dialog step but no guesses.
	var last *types.GameStateDocument
	for len(saveChan) > 0 {
		last = (<-saveChan).Document
	}
	require.NotNil(t, last)
	assert.True(t, last.TileStates["0-0"].ShowModal)
	assert.Empty(t, last.TileStates["0-0"].CorrectGuessers)

	require.NoError(t, s.DismissScoring("0-0"))

	players, err := s.CalculateScores()
	require.NoError(t, err)
	assert.Equal(t, []types.Player{{Name: "Alice", Score: 0}}, players)

	doc, err := s.GetCurrentState()
	require.NoError(t, err)
	assert.Empty(t, doc.TileStates["0-0"].CorrectGuessers)
}

func TestSwitchRound(t *testing.T) {
	s := newTestCreator(t, make(chan SaveRequest, 8))

	require.NoError(t, s.SwitchRound(types.RoundSecond))
	doc, err := s.GetCurrentState()
	require.NoError(t, err)
	assert.Equal(t, types.RoundSecond, doc.Round)
	assert.Equal(t, "Famous Painters", doc.Categories[0].Title)
	assert.Equal(t, 400, doc.TileStates["0-0"].OriginalValue)

	require.NoError(t, s.SwitchRound(types.RoundFinal))
	doc, err = s.GetCurrentState()
	require.NoError(t, err)
	assert.True(t, doc.FinalModalVisible)
	require.NotNil(t, doc.Final)
	assert.Equal(t, types.FinalPhaseWagers, doc.Final.Phase)
	assert.Equal(t, "Famous Painters", doc.Categories[0].Title, "final round leaves the board untouched")
}

func TestGetCurrentStateReturnsCopy(t *testing.T) {
	s := newTestCreator(t, make(chan SaveRequest, 8))

	doc, err := s.GetCurrentState()
	require.NoError(t, err)
	doc.GameID = "tampered"
	doc.TileStates["0-0"].IsFlipped = true

	fresh, err := s.GetCurrentState()
	require.NoError(t, err)
	assert.Equal(t, "12345", fresh.GameID)
	assert.False(t, fresh.TileStates["0-0"].IsFlipped)
}
