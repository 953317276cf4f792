package memory

import (
	"context"

	"turnping/internal/model"
	"turnping/internal/storage"
)

func (s *Store) CreatePlayerStatus(ctx context.Context, in model.PlayerStatusInput) (*model.PlayerStatus, error) {
	if err := storage.ValidatePlayerStatus(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing := s.statusFor(in.GameSessionID, in.SteamID); existing != nil {
		existing.Status = in.Status
		if in.Message.IsSet() {
			existing.Message = in.Message.Value()
		}
		if in.LastTurnCompleted != nil {
			t := *in.LastTurnCompleted
			existing.LastTurnCompleted = &t
		}
		existing.UpdatedAt = now
		return copyStatus(existing), nil
	}

	status := &model.PlayerStatus{
		ID:            s.nextID(),
		GameSessionID: in.GameSessionID,
		SteamID:       in.SteamID,
		Status:        in.Status,
		Message:       in.Message.Value(),
		UpdatedAt:     now,
	}
	if in.LastTurnCompleted != nil {
		t := *in.LastTurnCompleted
		status.LastTurnCompleted = &t
	}
	s.statuses = append(s.statuses, status)
	return copyStatus(status), nil
}

func (s *Store) GetPlayerStatus(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyStatus(s.statusFor(gameSessionID, steamID)), nil
}

// UpdatePlayerStatus is an upsert: a missing record is created.
func (s *Store) UpdatePlayerStatus(ctx context.Context, gameSessionID, steamID string, status model.Status, msg model.MessageUpdate) (*model.PlayerStatus, error) {
	return s.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: gameSessionID,
		SteamID:       steamID,
		Status:        status,
		Message:       msg,
	})
}

func (s *Store) UpdatePlayerLastTurn(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.statusFor(gameSessionID, steamID)
	if status == nil {
		return nil, nil
	}
	now := s.now()
	status.LastTurnCompleted = &now
	status.UpdatedAt = now
	return copyStatus(status), nil
}

func (s *Store) statusFor(gameSessionID, steamID string) *model.PlayerStatus {
	for _, status := range s.statuses {
		if status.GameSessionID == gameSessionID && status.SteamID == steamID {
			return status
		}
	}
	return nil
}

func copyStatus(status *model.PlayerStatus) *model.PlayerStatus {
	if status == nil {
		return nil
	}
	c := *status
	if status.Message != nil {
		m := *status.Message
		c.Message = &m
	}
	if status.LastTurnCompleted != nil {
		t := *status.LastTurnCompleted
		c.LastTurnCompleted = &t
	}
	return &c
}
