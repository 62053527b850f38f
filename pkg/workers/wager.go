package workers

import (
	"context"
	"time"

	"github.com/triviatastic/triviatastic/pkg/finalround"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/session"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// DefaultWagerPollInterval is how often the creator polls the per-player
// side-channel during the final round.
const DefaultWagerPollInterval = 3 * time.Second

// WagerPollWorker drives the creator side of the final round protocol:
// it polls every player's wager record and lets the coordinator fold the
// results into the replicated document, auto-advancing phases as
// submissions complete. Polling stops once the reveal has happened so a
// late side-channel write cannot override revealed answers.
type WagerPollWorker struct {
	coordinator *finalround.Coordinator
	session     *session.GameSession
	interval    time.Duration
}

type NewWagerPollWorkerOptions struct {
	Coordinator *finalround.Coordinator
	Session     *session.GameSession
	Interval    time.Duration
}

func NewWagerPollWorker(opts NewWagerPollWorkerOptions) *WagerPollWorker {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultWagerPollInterval
	}
	return &WagerPollWorker{
		coordinator: opts.Coordinator,
		session:     opts.Session,
		interval:    interval,
	}
}

func (w *WagerPollWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *WagerPollWorker) tick(ctx context.Context) {
	doc, err := w.session.GetCurrentState()
	if err != nil {
		log.Error("Failed to get current game state: %v", err)
		return
	}
	if doc.Round != types.RoundFinal || doc.Final == nil {
		return
	}
	switch doc.Final.Phase {
	case types.FinalPhaseRevealed, types.FinalPhaseScores:
		return
	}

	records, err := w.coordinator.CollectWagers(ctx)
	if err != nil {
		log.Warn("Failed to collect wagers: %v", err)
		return
	}
	if err := w.coordinator.ApplyWagerRecords(records); err != nil {
		log.Error("Failed to apply wager records: %v", err)
	}
}
