package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnping/internal/model"
	"turnping/internal/storage"
	"turnping/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return NewStore() })
}

func TestStore_IDsShareOneCounter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	session, err := s.CreateGameSession(ctx, storagetest.GameA())
	require.NoError(t, err)
	status, err := s.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: session.ID,
		SteamID:       "P1",
		Status:        model.StatusReady,
	})
	require.NoError(t, err)
	sub, err := s.SaveSubscription(ctx, model.SubscriptionInput{SteamID: "P1"})
	require.NoError(t, err)

	assert.Equal(t, "1", session.ID)
	assert.Equal(t, "2", status.ID)
	assert.Equal(t, "3", sub.ID)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	session, err := s.CreateGameSession(ctx, storagetest.GameA())
	require.NoError(t, err)
	session.CurrentTurn = "P2"

	status, err := s.UpdatePlayerStatus(ctx, session.ID, "P1", model.StatusBusy, model.SetMessage("afk"))
	require.NoError(t, err)
	*status.Message = "changed"
	status.Status = model.StatusReady

	found, err := s.GetGameSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "P1", found.CurrentTurn)

	stored, err := s.GetPlayerStatus(ctx, session.ID, "P1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusBusy, stored.Status)
	assert.Equal(t, "afk", *stored.Message)
}

func TestStore_UpdatedAtRefreshes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	clock := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return clock }

	session, err := s.CreateGameSession(ctx, storagetest.GameA())
	require.NoError(t, err)
	assert.Equal(t, clock, session.CreatedAt)

	first, err := s.UpdatePlayerStatus(ctx, session.ID, "P1", model.StatusReady, model.KeepMessage())
	require.NoError(t, err)
	assert.Equal(t, clock, first.UpdatedAt)

	clock = clock.Add(time.Minute)
	second, err := s.UpdatePlayerStatus(ctx, session.ID, "P1", model.StatusBusy, model.KeepMessage())
	require.NoError(t, err)
	assert.Equal(t, clock, second.UpdatedAt)

	clock = clock.Add(time.Minute)
	done, err := s.UpdatePlayerLastTurn(ctx, session.ID, "P1")
	require.NoError(t, err)
	assert.Equal(t, clock, *done.LastTurnCompleted)
	assert.Equal(t, clock, done.UpdatedAt)

	again, err := s.CreateGameSession(ctx, storagetest.GameA())
	require.NoError(t, err)
	assert.Equal(t, clock, again.CreatedAt)
	found, err := s.GetGameSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, clock.Add(-2*time.Minute), found.CreatedAt, "createdAt is set once")
}

func TestStore_ExplicitLastTurnOnCreate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ps, err := s.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID:     "1",
		SteamID:           "P1",
		Status:            model.StatusReady,
		Message:           model.SetMessage("back at 8"),
		LastTurnCompleted: &at,
	})
	require.NoError(t, err)
	require.NotNil(t, ps.LastTurnCompleted)
	assert.Equal(t, at, *ps.LastTurnCompleted)
	assert.Equal(t, "back at 8", *ps.Message)
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdatePlayerStatus(ctx, "1", "P1", model.StatusBusy, model.KeepMessage())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.statuses, 1)
}
