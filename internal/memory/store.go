// Package memory implements storage.Store on process-local slices.
// Nothing survives a restart.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"turnping/internal/model"
	"turnping/internal/storage"
)

// Store keeps records in insertion order and scans them linearly.
// Callers only ever see copies of stored records.
type Store struct {
	mu            sync.Mutex
	gameSessions  []*model.GameSession
	statuses      []*model.PlayerStatus
	subscriptions []*model.Subscription
	lastID        int64
	now           func() time.Time
}

var _ storage.Store = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// nextID must be called with mu held. Ids are shared by all collections.
func (s *Store) nextID() string {
	s.lastID++
	return strconv.FormatInt(s.lastID, 10)
}

// Game sessions

func (s *Store) CreateGameSession(ctx context.Context, in model.NewGameSession) (*model.GameSession, error) {
	in, err := storage.NormalizeNewGameSession(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := &model.GameSession{
		ID:             s.nextID(),
		Name:           in.Name,
		Code:           in.Code,
		Player1SteamID: in.Player1SteamID,
		Player2SteamID: in.Player2SteamID,
		CurrentTurn:    in.CurrentTurn,
		CreatedAt:      s.now(),
	}
	s.gameSessions = append(s.gameSessions, session)
	return copySession(session), nil
}

func (s *Store) GetGameSessionByCode(ctx context.Context, code string) (*model.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.sessionByCode(storage.NormalizeCode(code))), nil
}

func (s *Store) GetGameSessionByID(ctx context.Context, id string) (*model.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.sessionByID(id)), nil
}

func (s *Store) GetGameSessionWithPlayers(ctx context.Context, id string) (*model.GameSessionWithPlayers, error) {
	session, err := s.GetGameSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return storage.WithPlayers(ctx, s, session)
}

func (s *Store) GetGameSessionWithPlayersByCode(ctx context.Context, code string) (*model.GameSessionWithPlayers, error) {
	session, err := s.GetGameSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return storage.WithPlayers(ctx, s, session)
}

func (s *Store) UpdateGameSessionTurn(ctx context.Context, id, steamID string) (*model.GameSession, error) {
	if err := storage.ValidateTurn(steamID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessionByID(id)
	if session == nil {
		return nil, nil
	}
	if !session.HasPlayer(steamID) {
		return nil, storage.InvalidTurn(id, steamID)
	}
	session.CurrentTurn = steamID
	return copySession(session), nil
}

func (s *Store) sessionByCode(code string) *model.GameSession {
	for _, session := range s.gameSessions {
		if session.Code == code {
			return session
		}
	}
	return nil
}

func (s *Store) sessionByID(id string) *model.GameSession {
	for _, session := range s.gameSessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

func copySession(session *model.GameSession) *model.GameSession {
	if session == nil {
		return nil
	}
	c := *session
	return &c
}
