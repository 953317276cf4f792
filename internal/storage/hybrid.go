package storage

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"turnping/internal/model"
)

// Mode names the backend currently serving a Hybrid
type Mode int

const (
	ModeDurable Mode = iota
	ModeVolatile
)

func (m Mode) String() string {
	if m == ModeDurable {
		return "durable"
	}
	return "volatile"
}

// Hybrid serves every call from the durable backend until it first
// reports ErrBackendUnavailable, then from the volatile backend for the
// rest of its lifetime. The failed call is retried once on volatile.
// Hybrid never returns ErrBackendUnavailable.
type Hybrid struct {
	durable  Store
	volatile Store
	degraded atomic.Bool
	log      *zap.Logger
}

var _ Store = (*Hybrid)(nil)

// NewHybrid builds a coordinator. A nil durable store starts in volatile mode.
func NewHybrid(durable, volatile Store, log *zap.Logger) *Hybrid {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hybrid{
		durable:  durable,
		volatile: volatile,
		log:      log.Named("storage"),
	}
	if durable == nil {
		h.degraded.Store(true)
	}
	return h
}

// Mode reports which backend serves new calls
func (h *Hybrid) Mode() Mode {
	if h.degraded.Load() {
		return ModeVolatile
	}
	return ModeDurable
}

func withFallback[T any](h *Hybrid, op string, call func(Store) (T, error)) (T, error) {
	if !h.degraded.Load() {
		v, err := call(h.durable)
		if err == nil || !errors.Is(err, ErrBackendUnavailable) {
			return v, err
		}
		if h.degraded.CompareAndSwap(false, true) {
			h.log.Warn("durable storage failed, falling back to in-memory storage",
				zap.String("op", op), zap.Error(err))
		}
	}

	v, err := call(h.volatile)
	if err != nil && errors.Is(err, ErrBackendUnavailable) {
		// the volatile backend has no infrastructure to lose
		h.log.Error("volatile storage reported unavailable", zap.String("op", op), zap.Error(err))
		var zero T
		return zero, errors.New(op + ": volatile storage failed")
	}
	return v, err
}

func (h *Hybrid) CreateGameSession(ctx context.Context, in model.NewGameSession) (*model.GameSession, error) {
	return withFallback(h, "create game session", func(s Store) (*model.GameSession, error) {
		return s.CreateGameSession(ctx, in)
	})
}

func (h *Hybrid) GetGameSessionByCode(ctx context.Context, code string) (*model.GameSession, error) {
	return withFallback(h, "get game session by code", func(s Store) (*model.GameSession, error) {
		return s.GetGameSessionByCode(ctx, code)
	})
}

func (h *Hybrid) GetGameSessionByID(ctx context.Context, id string) (*model.GameSession, error) {
	return withFallback(h, "get game session by id", func(s Store) (*model.GameSession, error) {
		return s.GetGameSessionByID(ctx, id)
	})
}

func (h *Hybrid) GetGameSessionWithPlayers(ctx context.Context, id string) (*model.GameSessionWithPlayers, error) {
	return withFallback(h, "get game session with players", func(s Store) (*model.GameSessionWithPlayers, error) {
		return s.GetGameSessionWithPlayers(ctx, id)
	})
}

func (h *Hybrid) GetGameSessionWithPlayersByCode(ctx context.Context, code string) (*model.GameSessionWithPlayers, error) {
	return withFallback(h, "get game session with players by code", func(s Store) (*model.GameSessionWithPlayers, error) {
		return s.GetGameSessionWithPlayersByCode(ctx, code)
	})
}

func (h *Hybrid) UpdateGameSessionTurn(ctx context.Context, id, steamID string) (*model.GameSession, error) {
	return withFallback(h, "update game session turn", func(s Store) (*model.GameSession, error) {
		return s.UpdateGameSessionTurn(ctx, id, steamID)
	})
}

func (h *Hybrid) CreatePlayerStatus(ctx context.Context, in model.PlayerStatusInput) (*model.PlayerStatus, error) {
	return withFallback(h, "create player status", func(s Store) (*model.PlayerStatus, error) {
		return s.CreatePlayerStatus(ctx, in)
	})
}

func (h *Hybrid) GetPlayerStatus(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	return withFallback(h, "get player status", func(s Store) (*model.PlayerStatus, error) {
		return s.GetPlayerStatus(ctx, gameSessionID, steamID)
	})
}

func (h *Hybrid) UpdatePlayerStatus(ctx context.Context, gameSessionID, steamID string, status model.Status, msg model.MessageUpdate) (*model.PlayerStatus, error) {
	return withFallback(h, "update player status", func(s Store) (*model.PlayerStatus, error) {
		return s.UpdatePlayerStatus(ctx, gameSessionID, steamID, status, msg)
	})
}

func (h *Hybrid) UpdatePlayerLastTurn(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	return withFallback(h, "update player last turn", func(s Store) (*model.PlayerStatus, error) {
		return s.UpdatePlayerLastTurn(ctx, gameSessionID, steamID)
	})
}

func (h *Hybrid) SaveSubscription(ctx context.Context, in model.SubscriptionInput) (*model.Subscription, error) {
	return withFallback(h, "save subscription", func(s Store) (*model.Subscription, error) {
		return s.SaveSubscription(ctx, in)
	})
}

func (h *Hybrid) GetSubscriptionBySteamID(ctx context.Context, steamID string) (*model.Subscription, error) {
	return withFallback(h, "get subscription by steam id", func(s Store) (*model.Subscription, error) {
		return s.GetSubscriptionBySteamID(ctx, steamID)
	})
}
