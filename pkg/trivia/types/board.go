package types

import "time"

// BoardData is the structure supplied by a board-data provider. It is
// treated as opaque input once received: the engine only ever reads it
// through CategoriesForRound and Final.
type BoardData struct {
	Title       string     `json:"title,omitempty"`
	FirstRound  []Category `json:"firstRound"`
	SecondRound []Category `json:"secondRound"`
	Final       FinalClue  `json:"finalRound"`
}

// FinalClue is the single clue played during the final round.
type FinalClue struct {
	Category string `json:"category"`
	Clue     string `json:"clue"`
	Answer   string `json:"answer"`
}

// CategoriesForRound returns the board categories for a non-final round.
// The final round has no board; it returns nil.
func (b *BoardData) CategoriesForRound(round Round) []Category {
	switch round {
	case RoundFirst:
		return b.FirstRound
	case RoundSecond:
		return b.SecondRound
	default:
		return nil
	}
}

// WagerRecord is one player's private final round submission, stored in
// the per-player side-channel rather than the main document.
type WagerRecord struct {
	Answer      string    `json:"answer"`
	Wager       int       `json:"wager"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// HasWager reports whether a wager has been recorded. A zero wager is a
// valid wager, so presence is judged by the record's write timestamp.
func (w *WagerRecord) HasWager() bool {
	return w != nil && !w.LastUpdated.IsZero()
}

// Submitted reports whether the record carries both a wager and an answer.
func (w *WagerRecord) Submitted() bool {
	return w.HasWager() && w.Answer != ""
}
