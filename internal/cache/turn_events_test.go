package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"turnping/internal/model"
)

func newTestEvents(t *testing.T) (*turnEvents, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTurnEvents(client, nil).(*turnEvents), client
}

// subscribe runs Subscribe in the background and returns the received events
func subscribe(t *testing.T, events TurnEvents) <-chan *model.TurnEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan *model.TurnEvent, 16)
	done := make(chan error, 1)
	go func() {
		done <- events.Subscribe(ctx, func(e *model.TurnEvent) {
			select {
			case received <- e:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("subscriber did not stop")
		}
	})
	return received
}

func TestTurnEvents_PublishAndReceive(t *testing.T) {
	events, _ := newTestEvents(t)
	received := subscribe(t, events)
	ctx := context.Background()

	sent := &model.TurnEvent{
		ID:            "evt-1",
		GameSessionID: "g1",
		Code:          "ABC123",
		PreviousTurn:  "P1",
		CurrentTurn:   "P2",
		CompletedAt:   time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC),
	}

	// the subscription may not be live yet, so keep publishing
	var got *model.TurnEvent
	require.Eventually(t, func() bool {
		assert.NoError(t, events.NotifyTurn(ctx, sent))
		select {
		case got = <-received:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, "g1", got.GameSessionID)
	assert.Equal(t, "P2", got.CurrentTurn)
	assert.True(t, sent.CompletedAt.Equal(got.CompletedAt))
}

func TestTurnEvents_SkipsMalformedPayloads(t *testing.T) {
	events, client := newTestEvents(t)
	received := subscribe(t, events)
	ctx := context.Background()

	require.Eventually(t, func() bool {
		assert.NoError(t, client.Publish(ctx, "turns:g7", "not json").Err())
		// the channel name fills in a missing session id
		assert.NoError(t, client.Publish(ctx, "turns:g7", `{"id":"evt-2","currentTurn":"P1"}`).Err())
		select {
		case got := <-received:
			assert.Equal(t, "evt-2", got.ID)
			assert.Equal(t, "g7", got.GameSessionID)
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTurnEvents_Channel(t *testing.T) {
	events, _ := newTestEvents(t)
	assert.Equal(t, "turns:g1", events.channel("g1"))
}

func TestTurnEvents_SubscribeFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := NewTurnEvents(client, nil).Subscribe(ctx, func(*model.TurnEvent) {})
	assert.Error(t, err)
}

type failingEvents struct {
	TurnEvents
	failures atomic.Int32
	calls    atomic.Int32
}

func (f *failingEvents) Subscribe(ctx context.Context, _ func(*model.TurnEvent)) error {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return errors.New("dial tcp: connection refused")
	}
	<-ctx.Done()
	return nil
}

func TestKeepSubscribed_RetriesUntilSubscribed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	events := &failingEvents{}
	events.failures.Store(3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		KeepSubscribed(ctx, events, &backoff.ConstantBackOff{Interval: time.Millisecond}, zap.New(core), func(*model.TurnEvent) {})
		close(done)
	}()

	require.Eventually(t, func() bool { return events.calls.Load() == 4 }, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("KeepSubscribed did not return after cancel")
	}
	assert.Equal(t, int32(4), events.calls.Load())
	assert.Equal(t, 3, logs.FilterMessage("turn event subscription failed, retrying").Len())
}

func TestKeepSubscribed_StopsWhenBackOffGivesUp(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	events := &failingEvents{}
	events.failures.Store(100)

	b := backoff.WithMaxRetries(&backoff.ConstantBackOff{Interval: time.Millisecond}, 2)
	KeepSubscribed(context.Background(), events, b, zap.New(core), func(*model.TurnEvent) {})

	assert.Equal(t, int32(3), events.calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("giving up on turn events").Len())
}

func TestKeepSubscribed_RecoversWhenRedisReturns(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	events := NewTurnEvents(client, nil)
	mr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan *model.TurnEvent, 16)
	done := make(chan struct{})
	go func() {
		KeepSubscribed(ctx, events, &backoff.ConstantBackOff{Interval: 10 * time.Millisecond}, nil, func(e *model.TurnEvent) {
			select {
			case received <- e:
			default:
			}
		})
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, mr.Restart())

	sent := &model.TurnEvent{ID: "evt-3", GameSessionID: "g1", CurrentTurn: "P2"}
	require.Eventually(t, func() bool {
		_ = events.NotifyTurn(context.Background(), sent)
		select {
		case got := <-received:
			return got.ID == "evt-3"
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
