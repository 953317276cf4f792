package storage

import (
	"context"

	"turnping/internal/model"
)

// StatusGetter is the lookup WithPlayers needs
type StatusGetter interface {
	GetPlayerStatus(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error)
}

// WithPlayers attaches both players' statuses to session.
// A nil session yields nil without any status lookup.
func WithPlayers(ctx context.Context, statuses StatusGetter, session *model.GameSession) (*model.GameSessionWithPlayers, error) {
	if session == nil {
		return nil, nil
	}

	p1, err := statuses.GetPlayerStatus(ctx, session.ID, session.Player1SteamID)
	if err != nil {
		return nil, err
	}
	p2, err := statuses.GetPlayerStatus(ctx, session.ID, session.Player2SteamID)
	if err != nil {
		return nil, err
	}

	return &model.GameSessionWithPlayers{
		GameSession:   *session,
		Player1Status: p1,
		Player2Status: p2,
	}, nil
}
