// Package storagetest holds the behaviour every storage.Store must show,
// as a suite backends run from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnping/internal/model"
	"turnping/internal/storage"
)

// Run exercises the storage contract against stores built by newStore.
// Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("CreateAndGetByCode", func(t *testing.T) { testCreateAndGetByCode(t, newStore(t)) })
	t.Run("CodeLookupIgnoresCase", func(t *testing.T) { testCodeLookupIgnoresCase(t, newStore(t)) })
	t.Run("GetByIDAbsent", func(t *testing.T) { testGetByIDAbsent(t, newStore(t)) })
	t.Run("CreateGameSessionInvalid", func(t *testing.T) { testCreateGameSessionInvalid(t, newStore(t)) })
	t.Run("WithPlayersByCode", func(t *testing.T) { testWithPlayersByCode(t, newStore(t)) })
	t.Run("WithPlayersAbsent", func(t *testing.T) { testWithPlayersAbsent(t, newStore(t)) })
	t.Run("UpdateTurn", func(t *testing.T) { testUpdateTurn(t, newStore(t)) })
	t.Run("CreatePlayerStatusUpserts", func(t *testing.T) { testCreatePlayerStatusUpserts(t, newStore(t)) })
	t.Run("UpdatePlayerStatusMessage", func(t *testing.T) { testUpdatePlayerStatusMessage(t, newStore(t)) })
	t.Run("UpdatePlayerStatusCreates", func(t *testing.T) { testUpdatePlayerStatusCreates(t, newStore(t)) })
	t.Run("UpdatePlayerStatusInvalid", func(t *testing.T) { testUpdatePlayerStatusInvalid(t, newStore(t)) })
	t.Run("UpdatePlayerLastTurn", func(t *testing.T) { testUpdatePlayerLastTurn(t, newStore(t)) })
	t.Run("SaveSubscriptionUpserts", func(t *testing.T) { testSaveSubscriptionUpserts(t, newStore(t)) })
}

// GameA is the session used across the suite
func GameA() model.NewGameSession {
	return model.NewGameSession{
		Name:           "Game A",
		Code:           "ABC123",
		Player1SteamID: "P1",
		Player2SteamID: "P2",
		CurrentTurn:    "P1",
	}
}

func createGameA(t *testing.T, s storage.Store) *model.GameSession {
	t.Helper()
	session, err := s.CreateGameSession(context.Background(), GameA())
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func testCreateAndGetByCode(t *testing.T, s storage.Store) {
	ctx := context.Background()
	created := createGameA(t, s)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "Game A", created.Name)
	assert.Equal(t, "ABC123", created.Code)
	assert.Equal(t, "P1", created.CurrentTurn)

	found, err := s.GetGameSessionByCode(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Name, found.Name)
	assert.Equal(t, created.Player1SteamID, found.Player1SteamID)
	assert.Equal(t, created.Player2SteamID, found.Player2SteamID)
	assert.Equal(t, created.CurrentTurn, found.CurrentTurn)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))

	byID, err := s.GetGameSessionByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "ABC123", byID.Code)

	missing, err := s.GetGameSessionByCode(ctx, "NOPE99")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testCodeLookupIgnoresCase(t *testing.T, s storage.Store) {
	ctx := context.Background()
	in := GameA()
	in.Code = " abc123 "
	created, err := s.CreateGameSession(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", created.Code)

	found, err := s.GetGameSessionByCode(ctx, "aBc123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
}

func testGetByIDAbsent(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for _, id := range []string{"", "42", "000000000000000000000000"} {
		found, err := s.GetGameSessionByID(ctx, id)
		require.NoError(t, err, id)
		assert.Nil(t, found, id)
	}
}

func testCreateGameSessionInvalid(t *testing.T, s storage.Store) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.NewGameSession)
	}{
		{"missing name", func(in *model.NewGameSession) { in.Name = "  " }},
		{"missing code", func(in *model.NewGameSession) { in.Code = "" }},
		{"missing player 1", func(in *model.NewGameSession) { in.Player1SteamID = "" }},
		{"missing player 2", func(in *model.NewGameSession) { in.Player2SteamID = "" }},
		{"turn outside session", func(in *model.NewGameSession) { in.CurrentTurn = "P3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := GameA()
			tt.mutate(&in)
			session, err := s.CreateGameSession(ctx, in)
			assert.ErrorIs(t, err, storage.ErrInvalidInput)
			assert.Nil(t, session)
		})
	}

	in := GameA()
	in.CurrentTurn = ""
	session, err := s.CreateGameSession(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "P1", session.CurrentTurn, "empty turn defaults to player 1")
}

func testWithPlayersByCode(t *testing.T, s storage.Store) {
	ctx := context.Background()
	session := createGameA(t, s)

	_, err := s.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: session.ID,
		SteamID:       "P1",
		Status:        model.StatusReady,
	})
	require.NoError(t, err)

	game, err := s.GetGameSessionWithPlayersByCode(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, session.ID, game.ID)
	require.NotNil(t, game.Player1Status)
	assert.Equal(t, model.StatusReady, game.Player1Status.Status)
	assert.Nil(t, game.Player2Status, "no waiting record is materialised")

	byID, err := s.GetGameSessionWithPlayers(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.NotNil(t, byID.Player1Status)
	assert.Equal(t, game.Player1Status.ID, byID.Player1Status.ID)
}

func testWithPlayersAbsent(t *testing.T, s storage.Store) {
	ctx := context.Background()

	game, err := s.GetGameSessionWithPlayersByCode(ctx, "NOPE99")
	require.NoError(t, err)
	assert.Nil(t, game)

	game, err = s.GetGameSessionWithPlayers(ctx, "000000000000000000000000")
	require.NoError(t, err)
	assert.Nil(t, game)
}

func testUpdateTurn(t *testing.T, s storage.Store) {
	ctx := context.Background()
	session := createGameA(t, s)

	updated, err := s.UpdateGameSessionTurn(ctx, session.ID, "P2")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "P2", updated.CurrentTurn)
	assert.Equal(t, session.Name, updated.Name)

	found, err := s.GetGameSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "P2", found.CurrentTurn)

	_, err = s.UpdateGameSessionTurn(ctx, session.ID, "P3")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	_, err = s.UpdateGameSessionTurn(ctx, session.ID, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	found, err = s.GetGameSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "P2", found.CurrentTurn, "rejected update leaves the turn alone")

	missing, err := s.UpdateGameSessionTurn(ctx, "000000000000000000000000", "P1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testCreatePlayerStatusUpserts(t *testing.T, s storage.Store) {
	ctx := context.Background()
	session := createGameA(t, s)

	first, err := s.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: session.ID,
		SteamID:       "P1",
		Status:        model.StatusReady,
		Message:       model.SetMessage("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, first.Status)
	require.NotNil(t, first.Message)
	assert.Equal(t, "hello", *first.Message)
	assert.Nil(t, first.LastTurnCompleted)

	second, err := s.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: session.ID,
		SteamID:       "P1",
		Status:        model.StatusBusy,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same composite key, same record")
	assert.Equal(t, model.StatusBusy, second.Status)
	require.NotNil(t, second.Message)
	assert.Equal(t, "hello", *second.Message)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	stored, err := s.GetPlayerStatus(ctx, session.ID, "P1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, model.StatusBusy, stored.Status)

	other, err := s.GetPlayerStatus(ctx, session.ID, "P2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func testUpdatePlayerStatusMessage(t *testing.T, s storage.Store) {
	ctx := context.Background()
	session := createGameA(t, s)

	_, err := s.UpdatePlayerStatus(ctx, session.ID, "P2", model.StatusBusy, model.SetMessage("afk"))
	require.NoError(t, err)

	ps, err := s.UpdatePlayerStatus(ctx, session.ID, "P2", model.StatusReady, model.KeepMessage())
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, ps.Status)
	require.NotNil(t, ps.Message)
	assert.Equal(t, "afk", *ps.Message)

	stored, err := s.GetPlayerStatus(ctx, session.ID, "P2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, stored.Status)
	require.NotNil(t, stored.Message)
	assert.Equal(t, "afk", *stored.Message)

	ps, err = s.UpdatePlayerStatus(ctx, session.ID, "P2", model.StatusReady, model.ClearMessage())
	require.NoError(t, err)
	assert.Nil(t, ps.Message)

	stored, err = s.GetPlayerStatus(ctx, session.ID, "P2")
	require.NoError(t, err)
	assert.Nil(t, stored.Message)
}

func testUpdatePlayerStatusCreates(t *testing.T, s storage.Store) {
	ctx := context.Background()
	session := createGameA(t, s)

	ps, err := s.UpdatePlayerStatus(ctx, session.ID, "P2", model.StatusUnavailable, model.KeepMessage())
	require.NoError(t, err)
	require.NotNil(t, ps)
	assert.NotEmpty(t, ps.ID)
	assert.Equal(t, session.ID, ps.GameSessionID)
	assert.Equal(t, "P2", ps.SteamID)
	assert.Equal(t, model.StatusUnavailable, ps.Status)
	assert.Nil(t, ps.Message)
	assert.Nil(t, ps.LastTurnCompleted)
	assert.False(t, ps.UpdatedAt.IsZero())
}

func testUpdatePlayerStatusInvalid(t *testing.T, s storage.Store) {
	ctx := context.Background()
	session := createGameA(t, s)

	_, err := s.UpdatePlayerStatus(ctx, session.ID, "P1", model.Status("waiting"), model.KeepMessage())
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	_, err = s.UpdatePlayerStatus(ctx, "", "P1", model.StatusReady, model.KeepMessage())
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	_, err = s.CreatePlayerStatus(ctx, model.PlayerStatusInput{GameSessionID: session.ID, Status: model.StatusReady})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	stored, err := s.GetPlayerStatus(ctx, session.ID, "P1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func testUpdatePlayerLastTurn(t *testing.T, s storage.Store) {
	ctx := context.Background()
	session := createGameA(t, s)

	missing, err := s.UpdatePlayerLastTurn(ctx, session.ID, "P1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	stored, err := s.GetPlayerStatus(ctx, session.ID, "P1")
	require.NoError(t, err)
	assert.Nil(t, stored, "no record is created")

	created, err := s.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: session.ID,
		SteamID:       "P1",
		Status:        model.StatusReady,
	})
	require.NoError(t, err)

	ps, err := s.UpdatePlayerLastTurn(ctx, session.ID, "P1")
	require.NoError(t, err)
	require.NotNil(t, ps)
	assert.Equal(t, created.ID, ps.ID)
	require.NotNil(t, ps.LastTurnCompleted)
	assert.True(t, ps.LastTurnCompleted.Equal(ps.UpdatedAt))
	assert.Equal(t, model.StatusReady, ps.Status)
}

func testSaveSubscriptionUpserts(t *testing.T, s storage.Store) {
	ctx := context.Background()

	first, err := s.SaveSubscription(ctx, model.SubscriptionInput{
		SteamID:  "P1",
		Endpoint: "https://push.example/one",
		P256dh:   "key-1",
		Auth:     "auth-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := s.SaveSubscription(ctx, model.SubscriptionInput{
		SteamID:  "P1",
		Endpoint: "https://push.example/two",
		P256dh:   "key-2",
		Auth:     "auth-2",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "https://push.example/two", second.Endpoint)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	stored, err := s.GetSubscriptionBySteamID(ctx, "P1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "https://push.example/two", stored.Endpoint)
	assert.Equal(t, "key-2", stored.P256dh)
	assert.Equal(t, "auth-2", stored.Auth)

	missing, err := s.GetSubscriptionBySteamID(ctx, "P2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.SaveSubscription(ctx, model.SubscriptionInput{Endpoint: "https://push.example/x"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
