package storagetest

import (
	"context"
	"errors"
	"sync/atomic"

	"turnping/internal/model"
	"turnping/internal/storage"
)

// ErrDown is the driver error a Flaky store reports while down
var ErrDown = errors.New("connection refused")

// Flaky wraps a Store and fails every call with ErrBackendUnavailable
// while down. It counts the calls it receives.
type Flaky struct {
	inner storage.Store
	down  atomic.Bool
	calls atomic.Int64
}

var _ storage.Store = (*Flaky)(nil)

func NewFlaky(inner storage.Store) *Flaky {
	return &Flaky{inner: inner}
}

func (f *Flaky) SetDown(down bool) { f.down.Store(down) }

// Calls reports how many contract calls reached f
func (f *Flaky) Calls() int64 { return f.calls.Load() }

func (f *Flaky) check(op string) error {
	f.calls.Add(1)
	if f.down.Load() {
		return storage.Unavailable(op, ErrDown)
	}
	return nil
}

func (f *Flaky) CreateGameSession(ctx context.Context, in model.NewGameSession) (*model.GameSession, error) {
	if err := f.check("create game session"); err != nil {
		return nil, err
	}
	return f.inner.CreateGameSession(ctx, in)
}

func (f *Flaky) GetGameSessionByCode(ctx context.Context, code string) (*model.GameSession, error) {
	if err := f.check("get game session by code"); err != nil {
		return nil, err
	}
	return f.inner.GetGameSessionByCode(ctx, code)
}

func (f *Flaky) GetGameSessionByID(ctx context.Context, id string) (*model.GameSession, error) {
	if err := f.check("get game session by id"); err != nil {
		return nil, err
	}
	return f.inner.GetGameSessionByID(ctx, id)
}

func (f *Flaky) GetGameSessionWithPlayers(ctx context.Context, id string) (*model.GameSessionWithPlayers, error) {
	if err := f.check("get game session with players"); err != nil {
		return nil, err
	}
	return f.inner.GetGameSessionWithPlayers(ctx, id)
}

func (f *Flaky) GetGameSessionWithPlayersByCode(ctx context.Context, code string) (*model.GameSessionWithPlayers, error) {
	if err := f.check("get game session with players by code"); err != nil {
		return nil, err
	}
	return f.inner.GetGameSessionWithPlayersByCode(ctx, code)
}

func (f *Flaky) UpdateGameSessionTurn(ctx context.Context, id, steamID string) (*model.GameSession, error) {
	if err := f.check("update game session turn"); err != nil {
		return nil, err
	}
	return f.inner.UpdateGameSessionTurn(ctx, id, steamID)
}

func (f *Flaky) CreatePlayerStatus(ctx context.Context, in model.PlayerStatusInput) (*model.PlayerStatus, error) {
	if err := f.check("create player status"); err != nil {
		return nil, err
	}
	return f.inner.CreatePlayerStatus(ctx, in)
}

func (f *Flaky) GetPlayerStatus(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	if err := f.check("get player status"); err != nil {
		return nil, err
	}
	return f.inner.GetPlayerStatus(ctx, gameSessionID, steamID)
}

func (f *Flaky) UpdatePlayerStatus(ctx context.Context, gameSessionID, steamID string, status model.Status, msg model.MessageUpdate) (*model.PlayerStatus, error) {
	if err := f.check("update player status"); err != nil {
		return nil, err
	}
	return f.inner.UpdatePlayerStatus(ctx, gameSessionID, steamID, status, msg)
}

func (f *Flaky) UpdatePlayerLastTurn(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	if err := f.check("update player last turn"); err != nil {
		return nil, err
	}
	return f.inner.UpdatePlayerLastTurn(ctx, gameSessionID, steamID)
}

func (f *Flaky) SaveSubscription(ctx context.Context, in model.SubscriptionInput) (*model.Subscription, error) {
	if err := f.check("save subscription"); err != nil {
		return nil, err
	}
	return f.inner.SaveSubscription(ctx, in)
}

func (f *Flaky) GetSubscriptionBySteamID(ctx context.Context, steamID string) (*model.Subscription, error) {
	if err := f.check("get subscription by steam id"); err != nil {
		return nil, err
	}
	return f.inner.GetSubscriptionBySteamID(ctx, steamID)
}
