package memory

import (
	"context"

	"turnping/internal/model"
	"turnping/internal/storage"
)

func (s *Store) SaveSubscription(ctx context.Context, in model.SubscriptionInput) (*model.Subscription, error) {
	if err := storage.ValidateSubscription(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing := s.subscriptionFor(in.SteamID); existing != nil {
		existing.Endpoint = in.Endpoint
		existing.P256dh = in.P256dh
		existing.Auth = in.Auth
		existing.UpdatedAt = now
		c := *existing
		return &c, nil
	}

	sub := &model.Subscription{
		ID:        s.nextID(),
		SteamID:   in.SteamID,
		Endpoint:  in.Endpoint,
		P256dh:    in.P256dh,
		Auth:      in.Auth,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.subscriptions = append(s.subscriptions, sub)
	c := *sub
	return &c, nil
}

func (s *Store) GetSubscriptionBySteamID(ctx context.Context, steamID string) (*model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.subscriptionFor(steamID)
	if sub == nil {
		return nil, nil
	}
	c := *sub
	return &c, nil
}

func (s *Store) subscriptionFor(steamID string) *model.Subscription {
	for _, sub := range s.subscriptions {
		if sub.SteamID == steamID {
			return sub
		}
	}
	return nil
}
