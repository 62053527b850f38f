package workers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/queue"
	"github.com/triviatastic/triviatastic/pkg/session"
	"github.com/triviatastic/triviatastic/pkg/store"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

// DefaultPollInterval is how often a viewer pulls the shared document.
// Staleness windows up to one interval are accepted as normal.
const DefaultPollInterval = 1 * time.Second

// PollResult is a fetched snapshot stamped with the session generation
// that was current when the request started. The session discards
// results whose generation no longer matches.
type PollResult struct {
	Generation uuid.UUID
	Document   *types.GameStateDocument
}

type PollGameStateWorker struct {
	store         *store.StateStore
	session       *session.GameSession
	snapshotQueue queue.Queue
	interval      time.Duration
}

type NewPollGameStateWorkerOptions struct {
	Store         *store.StateStore
	Session       *session.GameSession
	SnapshotQueue queue.Queue
	Interval      time.Duration
}

// NewPollGameStateWorker creates a worker that polls the remote store
// for document snapshots and applies them to the session. Each fetch
// runs in its own goroutine so a hung request delays only that cycle's
// data, never the next scheduled tick.
func NewPollGameStateWorker(opts NewPollGameStateWorkerOptions) *PollGameStateWorker {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	return &PollGameStateWorker{
		store:         opts.Store,
		session:       opts.Session,
		snapshotQueue: opts.SnapshotQueue,
		interval:      interval,
	}
}

func (w *PollGameStateWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := w.snapshotQueue.ClearQueue(); err != nil {
				log.Error("Failed to clear snapshot queue: %v", err)
			}
			return
		case <-ticker.C:
			w.applyPending()
			go w.poll(ctx)
		}
	}
}

// applyPending drains fetched snapshots into the session. Snapshots from
// a closed session carry a stale generation and are dropped there.
func (w *PollGameStateWorker) applyPending() {
	pending, err := w.snapshotQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read snapshot queue: %v", err)
		return
	}
	for _, item := range pending {
		result, ok := item.(PollResult)
		if !ok {
			log.Error("Unexpected item in snapshot queue: %T", item)
			continue
		}
		if err := w.session.LoadState(result.Generation, result.Document); err != nil {
			log.Error("Failed to apply snapshot: %v", err)
		}
	}
}

func (w *PollGameStateWorker) poll(ctx context.Context) {
	generation := w.session.Generation()
	doc, err := w.store.LoadGameState(ctx, w.session.Identifier())
	if err != nil {
		log.Warn("Failed to load game state for %s: %v", w.session.Identifier(), err)
		return
	}
	if doc == nil {
		// The game has not been created yet; keep polling.
		return
	}
	if err := w.snapshotQueue.Enqueue(PollResult{Generation: generation, Document: doc}); err != nil {
		log.Warn("Failed to enqueue snapshot: %v", err)
	}
}
