package identifier

import (
	"math/rand"
	"strings"
	"unicode"

	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

const (
	// MinWordLength filters out short tokens that make poor join codes.
	MinWordLength = 5
	// WordCount is the number of tokens sampled into a join code.
	WordCount = 4
)

// ExtractWords collects candidate tokens from the board's category titles
// and clue text. Answers are deliberately excluded so a join code never
// leaks a correct response. Tokens are lower-cased, stripped of
// punctuation, deduplicated in first-seen order, and kept only when at
// least MinWordLength characters long.
func ExtractWords(board *types.BoardData) []string {
	if board == nil {
		return nil
	}

	var allText []string
	for _, categories := range [][]types.Category{board.FirstRound, board.SecondRound} {
		for _, category := range categories {
			allText = append(allText, category.Title)
			for _, clue := range category.Clues {
				allText = append(allText, clue.Question)
			}
		}
	}
	allText = append(allText, board.Final.Category, board.Final.Clue)

	seen := make(map[string]bool)
	var words []string
	for _, field := range strings.Fields(strings.ToLower(strings.Join(allText, " "))) {
		word := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				return r
			}
			return -1
		}, field)
		if len([]rune(word)) < MinWordLength || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	return words
}

// Generate samples WordCount distinct words and joins them with hyphens.
// The result is a convenience addressing scheme, not a security boundary:
// it must be treated as guessable and must never gate anything sensitive.
func Generate(words []string, rng *rand.Rand) string {
	if len(words) == 0 {
		return ""
	}

	pool := append([]string{}, words...)
	var selected []string
	for len(selected) < WordCount && len(pool) > 0 {
		i := rng.Intn(len(pool))
		selected = append(selected, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return strings.Join(selected, "-")
}

// ForBoard derives a join code for a board in one step.
func ForBoard(board *types.BoardData, rng *rand.Rand) string {
	return Generate(ExtractWords(board), rng)
}
