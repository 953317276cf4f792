package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"turnping/internal/model"
	"turnping/internal/storage"
)

var (
	ErrGameNotFound = errors.New("game session not found")
	ErrNotAPlayer   = errors.New("steam id is not a player of this game")
	ErrNotYourTurn  = errors.New("it is not this player's turn")
)

const (
	codeChars    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLen      = 6
	codeAttempts = 10
)

// GameService runs the turn workflow on top of a storage.Store
type GameService struct {
	store    storage.Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewGameService creates a new game service
func NewGameService(store storage.Store, notifier Notifier, log *zap.Logger) *GameService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GameService{
		store:    store,
		notifier: notifier,
		log:      log.Named("game"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateGameInput is what the creator submits
type CreateGameInput struct {
	Name           string       `json:"name"`
	Code           string       `json:"code"` // generated when empty
	Player1SteamID string       `json:"player1SteamId"`
	Player2SteamID string       `json:"player2SteamId"`
	Status         model.Status `json:"status"` // creator's status, ready when empty
}

// CreateGame creates a session where player 1 moves first and records
// player 1's status.
func (s *GameService) CreateGame(ctx context.Context, in CreateGameInput) (*model.GameSessionWithPlayers, error) {
	code := in.Code
	if code == "" {
		generated, err := s.GenerateCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate game code: %w", err)
		}
		code = generated
	}

	session, err := s.store.CreateGameSession(ctx, model.NewGameSession{
		Name:           in.Name,
		Code:           code,
		Player1SteamID: in.Player1SteamID,
		Player2SteamID: in.Player2SteamID,
		CurrentTurn:    in.Player1SteamID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	status := in.Status
	if status == "" {
		status = model.StatusReady
	}
	if _, err := s.store.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: session.ID,
		SteamID:       session.Player1SteamID,
		Status:        status,
	}); err != nil {
		return nil, fmt.Errorf("failed to record creator status: %w", err)
	}

	s.log.Info("game created",
		zap.String("gameSessionId", session.ID), zap.String("code", session.Code))

	return s.store.GetGameSessionWithPlayers(ctx, session.ID)
}

// JoinGame looks up a session by code for one of its players.
// Joining does not record a status; the player stays "waiting".
func (s *GameService) JoinGame(ctx context.Context, code, steamID string) (*model.GameSessionWithPlayers, error) {
	game, err := s.GetGameByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !game.HasPlayer(steamID) {
		return nil, ErrNotAPlayer
	}
	return game, nil
}

// GetGameByCode returns the session for code with both players' statuses
func (s *GameService) GetGameByCode(ctx context.Context, code string) (*model.GameSessionWithPlayers, error) {
	game, err := s.store.GetGameSessionWithPlayersByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// UpdateStatus records a player's availability
func (s *GameService) UpdateStatus(ctx context.Context, gameSessionID, steamID string, status model.Status, msg model.MessageUpdate) (*model.PlayerStatus, error) {
	if _, err := s.playerSession(ctx, gameSessionID, steamID); err != nil {
		return nil, err
	}
	ps, err := s.store.UpdatePlayerStatus(ctx, gameSessionID, steamID, status, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to update player status: %w", err)
	}
	return ps, nil
}

// CompleteTurn ends steamID's turn and hands it to the opponent
func (s *GameService) CompleteTurn(ctx context.Context, gameSessionID, steamID string) (*model.GameSessionWithPlayers, error) {
	session, err := s.playerSession(ctx, gameSessionID, steamID)
	if err != nil {
		return nil, err
	}
	if session.CurrentTurn != steamID {
		return nil, ErrNotYourTurn
	}

	// a player who never reported a status has no record to stamp
	if _, err := s.store.UpdatePlayerLastTurn(ctx, gameSessionID, steamID); err != nil {
		return nil, fmt.Errorf("failed to record completed turn: %w", err)
	}

	next := session.Opponent(steamID)
	updated, err := s.store.UpdateGameSessionTurn(ctx, gameSessionID, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update turn: %w", err)
	}
	if updated == nil {
		return nil, ErrGameNotFound
	}

	event := &model.TurnEvent{
		ID:            uuid.NewString(),
		GameSessionID: updated.ID,
		Code:          updated.Code,
		PreviousTurn:  steamID,
		CurrentTurn:   updated.CurrentTurn,
		CompletedAt:   s.now(),
	}
	if err := s.notifier.NotifyTurn(ctx, event); err != nil {
		s.log.Warn("failed to publish turn event",
			zap.String("gameSessionId", updated.ID), zap.String("eventId", event.ID), zap.Error(err))
	}

	return s.store.GetGameSessionWithPlayers(ctx, gameSessionID)
}

// Subscribe stores a player's push credentials
func (s *GameService) Subscribe(ctx context.Context, in model.SubscriptionInput) (*model.Subscription, error) {
	sub, err := s.store.SaveSubscription(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}
	return sub, nil
}

// SubscriptionFor returns a player's push credentials, or nil
func (s *GameService) SubscriptionFor(ctx context.Context, steamID string) (*model.Subscription, error) {
	return s.store.GetSubscriptionBySteamID(ctx, steamID)
}

// GenerateCode returns a join code no existing session uses
func (s *GameService) GenerateCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < codeAttempts; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = codeChars[int(b[i])%len(codeChars)]
		}

		existing, err := s.store.GetGameSessionByCode(ctx, string(code))
		if err != nil {
			return "", err
		}
		if existing == nil {
			return string(code), nil
		}
	}
	return "", fmt.Errorf("no free code after %d attempts", codeAttempts)
}

func (s *GameService) playerSession(ctx context.Context, gameSessionID, steamID string) (*model.GameSession, error) {
	session, err := s.store.GetGameSessionByID(ctx, gameSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	if session == nil {
		return nil, ErrGameNotFound
	}
	if !session.HasPlayer(steamID) {
		return nil, ErrNotAPlayer
	}
	return session, nil
}
