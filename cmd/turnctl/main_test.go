package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnping/internal/memory"
	"turnping/internal/model"
	"turnping/internal/service"
)

func runJSON(t *testing.T, games *service.GameService, out any, args ...string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), games, args, &buf))
	require.NoError(t, json.Unmarshal(buf.Bytes(), out))
}

func TestRun_Workflow(t *testing.T) {
	games := service.NewGameService(memory.NewStore(), nil, nil)

	var game model.GameSessionWithPlayers
	runJSON(t, games, &game, "create", "-name", "Game A", "-code", "abc123", "-p1", "P1", "-p2", "P2")
	assert.Equal(t, "ABC123", game.Code)
	assert.Equal(t, "P1", game.CurrentTurn)

	var joined model.GameSessionWithPlayers
	runJSON(t, games, &joined, "join", "-code", "ABC123", "-steam", "P2")
	assert.Equal(t, game.ID, joined.ID)

	var ps model.PlayerStatus
	runJSON(t, games, &ps, "status", "-game", game.ID, "-steam", "P2", "-status", "busy", "-message", "afk")
	require.NotNil(t, ps.Message)
	assert.Equal(t, "afk", *ps.Message)

	// no -message flag keeps the stored message
	runJSON(t, games, &ps, "status", "-game", game.ID, "-steam", "P2", "-status", "ready")
	require.NotNil(t, ps.Message)
	assert.Equal(t, "afk", *ps.Message)

	ps = model.PlayerStatus{}
	runJSON(t, games, &ps, "status", "-game", game.ID, "-steam", "P2", "-status", "ready", "-clear-message")
	assert.Nil(t, ps.Message)

	var after model.GameSessionWithPlayers
	runJSON(t, games, &after, "complete", "-game", game.ID, "-steam", "P1")
	assert.Equal(t, "P2", after.CurrentTurn)

	var shown model.GameSessionWithPlayers
	runJSON(t, games, &shown, "show", "-code", "abc123")
	assert.Equal(t, "P2", shown.CurrentTurn)
	require.NotNil(t, shown.Player2Status)
	assert.Equal(t, model.StatusReady, shown.Player2Status.Status)

	var sub model.Subscription
	runJSON(t, games, &sub, "subscribe", "-steam", "P1", "-endpoint", "https://push.example/abc", "-p256dh", "KEY", "-auth", "SECRET")
	assert.Equal(t, "https://push.example/abc", sub.Endpoint)
}

func TestRun_Errors(t *testing.T) {
	games := service.NewGameService(memory.NewStore(), nil, nil)
	ctx := context.Background()
	var out bytes.Buffer

	assert.ErrorIs(t, run(ctx, games, nil, &out), errUsage)
	assert.ErrorIs(t, run(ctx, games, []string{"launch"}, &out), errUsage)
	assert.Error(t, run(ctx, games, []string{"show", "-bogus"}, &out))
	assert.ErrorIs(t, run(ctx, games, []string{"show", "-code", "NOPE99"}, &out), service.ErrGameNotFound)
	assert.Empty(t, out.String())
}
