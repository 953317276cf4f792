package service

import (
	"context"

	"turnping/internal/model"
)

// Notifier receives turn changes (avoids importing the Redis cache here)
type Notifier interface {
	NotifyTurn(ctx context.Context, event *model.TurnEvent) error
}

// NopNotifier drops every event. Used when no event channel is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyTurn(context.Context, *model.TurnEvent) error { return nil }
