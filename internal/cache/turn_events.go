package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"turnping/internal/model"
)

const turnChannelPrefix = "turns:"

// TurnEvents publishes and consumes turn changes over Redis pub/sub
type TurnEvents interface {
	NotifyTurn(ctx context.Context, event *model.TurnEvent) error
	// Subscribe blocks, calling handle for every event, until ctx ends.
	Subscribe(ctx context.Context, handle func(*model.TurnEvent)) error
}

type turnEvents struct {
	client *redis.Client
	log    *zap.Logger
}

// NewTurnEvents creates a turn event channel on client
func NewTurnEvents(client *redis.Client, log *zap.Logger) TurnEvents {
	if log == nil {
		log = zap.NewNop()
	}
	return &turnEvents{
		client: client,
		log:    log.Named("turn-events"),
	}
}

func (c *turnEvents) channel(gameSessionID string) string {
	return fmt.Sprintf("%s%s", turnChannelPrefix, gameSessionID)
}

func (c *turnEvents) NotifyTurn(ctx context.Context, event *model.TurnEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, c.channel(event.GameSessionID), data).Err()
}

func (c *turnEvents) Subscribe(ctx context.Context, handle func(*model.TurnEvent)) error {
	pubsub := c.client.PSubscribe(ctx, turnChannelPrefix+"*")
	defer pubsub.Close()

	// wait for the subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to turn events: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event model.TurnEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				c.log.Warn("skipping malformed turn event",
					zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if event.GameSessionID == "" {
				event.GameSessionID = strings.TrimPrefix(msg.Channel, turnChannelPrefix)
			}
			handle(&event)
		}
	}
}

// KeepSubscribed runs events.Subscribe until ctx ends, subscribing again
// after each failure with delays taken from b.
func KeepSubscribed(ctx context.Context, events TurnEvents, b backoff.BackOff, log *zap.Logger, handle func(*model.TurnEvent)) {
	if log == nil {
		log = zap.NewNop()
	}
	b.Reset()
	for {
		started := time.Now()
		err := events.Subscribe(ctx, handle)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("subscription closed")
		}
		// a subscription that held for a while starts over from a short delay
		if time.Since(started) > time.Minute {
			b.Reset()
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			log.Error("giving up on turn events", zap.Error(err))
			return
		}
		log.Warn("turn event subscription failed, retrying",
			zap.Duration("in", wait), zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// NewResubscribeBackOff is the delay schedule the server resubscribes with
func NewResubscribeBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	return b
}
