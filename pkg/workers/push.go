package workers

import (
	"context"
	"time"

	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/session"
	"github.com/triviatastic/triviatastic/pkg/store"
)

// DefaultRepublishInterval is how often the creator re-publishes its
// current document even without a mutation, so a write dropped by a
// transport failure is eventually retried.
const DefaultRepublishInterval = 30 * time.Second

type PushGameStateWorker struct {
	store           *store.StateStore
	saveRequestChan <-chan session.SaveRequest
	session         *session.GameSession
	interval        time.Duration
}

type NewPushGameStateWorkerOptions struct {
	Store           *store.StateStore
	SaveRequestChan <-chan session.SaveRequest
	Session         *session.GameSession
	Interval        time.Duration
}

// NewPushGameStateWorker creates a worker that persists creator-side
// mutations. It drains save requests fired by the session's change
// notification and periodically re-publishes the current state.
func NewPushGameStateWorker(opts NewPushGameStateWorkerOptions) *PushGameStateWorker {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultRepublishInterval
	}
	return &PushGameStateWorker{
		store:           opts.Store,
		saveRequestChan: opts.SaveRequestChan,
		session:         opts.Session,
		interval:        interval,
	}
}

func (w *PushGameStateWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case saveRequest := <-w.saveRequestChan:
			w.save(ctx, saveRequest)
		case <-ticker.C:
			doc, err := w.session.GetCurrentState()
			if err != nil {
				log.Error("Failed to get current game state: %v", err)
				continue
			}
			w.save(ctx, session.SaveRequest{
				Identifier: w.session.Identifier(),
				Document:   doc,
			})
		}
	}
}

func (w *PushGameStateWorker) save(ctx context.Context, saveRequest session.SaveRequest) {
	ok, err := w.store.SaveGameState(ctx, saveRequest.Identifier, saveRequest.Document)
	if err != nil {
		log.Error("Failed to save game state: %v", err)
		return
	}
	if ok {
		log.Debug("Saved game state for %s", saveRequest.Identifier)
	}
}
