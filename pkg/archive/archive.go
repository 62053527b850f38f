package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// Provider supplies board data for a game identifier. The engine treats
// the returned structure as opaque input; fetching and scraping of the
// underlying trivia archive happen behind this boundary.
type Provider interface {
	FetchBoard(ctx context.Context, gameID string) (*types.BoardData, error)
}

// HTTPProvider loads pre-parsed board JSON from a static file host.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client:  client,
	}
}

func (p *HTTPProvider) FetchBoard(ctx context.Context, gameID string) (*types.BoardData, error) {
	boardURL := fmt.Sprintf("%s/games/game_%s.json", p.baseURL, url.PathEscape(gameID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %v", gameID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load game %s: status %d", gameID, resp.StatusCode)
	}

	board := &types.BoardData{}
	if err := json.NewDecoder(resp.Body).Decode(board); err != nil {
		return nil, fmt.Errorf("failed to parse game %s: %v", gameID, err)
	}
	return board, nil
}

// LoadBoardFile reads board data from a local JSON file.
func LoadBoardFile(path string) (*types.BoardData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %v", err)
	}
	board := &types.BoardData{}
	if err := json.Unmarshal(data, board); err != nil {
		return nil, fmt.Errorf("failed to parse board file: %v", err)
	}
	return board, nil
}
