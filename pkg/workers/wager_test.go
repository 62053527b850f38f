package workers

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triviatastic/triviatastic/pkg/cache"
	"github.com/triviatastic/triviatastic/pkg/finalround"
	"github.com/triviatastic/triviatastic/pkg/session"
	"github.com/triviatastic/triviatastic/pkg/store"
	"github.com/triviatastic/triviatastic/pkg/trivia/types"
)

func TestWagerPollWorkerAdvancesPhases(t *testing.T) {
	remote := newFakeRemote()
	sideChannel := store.NewStateStore(remote, cache.NewInMemoryCache())

	creator, err := session.NewCreatorSession(session.NewCreatorSessionOptions{
		Board:    workerBoard(),
		GameID:   "12345",
		SaveChan: make(chan session.SaveRequest, 64),
		Rand:     rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	require.NoError(t, creator.SetUsers([]types.Player{{Name: "Alice"}}))
	require.NoError(t, creator.SwitchRound(types.RoundFinal))

	coordinator := finalround.NewCoordinator(finalround.NewCoordinatorOptions{
		Session: creator,
		Store:   sideChannel,
	})
	require.NoError(t, coordinator.SubmitWager(context.Background(), "Alice", 500))

	worker := NewWagerPollWorker(NewWagerPollWorkerOptions{
		Coordinator: coordinator,
		Session:     creator,
		Interval:    10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	assert.Eventually(t, func() bool {
		doc, err := creator.GetCurrentState()
		if err != nil || doc.Final == nil {
			return false
		}
		return doc.Final.Phase == types.FinalPhaseClue && doc.Final.Wagers["Alice"] == 500
	}, 2*time.Second, 10*time.Millisecond)
}
