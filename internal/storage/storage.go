// Package storage defines the persistence contract shared by the durable
// and volatile backends, and the Hybrid coordinator that falls back from
// one to the other.
//
// Lookups that find nothing return a nil entity and a nil error.
package storage

import (
	"context"

	"turnping/internal/model"
)

// Store is implemented by every backend
type Store interface {
	// Game sessions
	CreateGameSession(ctx context.Context, in model.NewGameSession) (*model.GameSession, error)
	GetGameSessionByCode(ctx context.Context, code string) (*model.GameSession, error)
	GetGameSessionByID(ctx context.Context, id string) (*model.GameSession, error)
	GetGameSessionWithPlayers(ctx context.Context, id string) (*model.GameSessionWithPlayers, error)
	GetGameSessionWithPlayersByCode(ctx context.Context, code string) (*model.GameSessionWithPlayers, error)
	UpdateGameSessionTurn(ctx context.Context, id, steamID string) (*model.GameSession, error)

	// Player statuses
	CreatePlayerStatus(ctx context.Context, in model.PlayerStatusInput) (*model.PlayerStatus, error)
	GetPlayerStatus(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error)
	UpdatePlayerStatus(ctx context.Context, gameSessionID, steamID string, status model.Status, msg model.MessageUpdate) (*model.PlayerStatus, error)
	UpdatePlayerLastTurn(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error)

	// Push subscriptions
	SaveSubscription(ctx context.Context, in model.SubscriptionInput) (*model.Subscription, error)
	GetSubscriptionBySteamID(ctx context.Context, steamID string) (*model.Subscription, error)
}
