// =================================
// File: internal/events/bus_test.go
// =================================
package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(zap.NewNop(), 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})
	return bus
}

func TestPublishSyncDeliversToSubscribers(t *testing.T) {
	bus := newTestBus(t)

	var got []Event
	bus.SubscribeFunc(TradeExecuted, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	mint := solana.NewWallet().PublicKey()
	err := bus.PublishSync(context.Background(), TradeExecutedEvent{
		BaseEvent: BaseEvent{EventType: TradeExecuted, EventTime: time.Now()},
		Mint:      mint,
		IsBuy:     true,
		SolAmount: 1_000_000_000,
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	trade, ok := got[0].(TradeExecutedEvent)
	require.True(t, ok)
	assert.Equal(t, mint, trade.Mint)
	assert.True(t, trade.IsBuy)
}

func TestPublishSyncSkipsOtherTypes(t *testing.T) {
	bus := newTestBus(t)

	called := false
	bus.SubscribeFunc(TokenCreated, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	err := bus.PublishSync(context.Background(), CurveCompletedEvent{
		BaseEvent: BaseEvent{EventType: CurveCompleted, EventTime: time.Now()},
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := newTestBus(t)

	calls := 0
	sub := bus.SubscribeFunc(BundleLanded, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})

	event := BundleLandedEvent{
		BaseEvent: BaseEvent{EventType: BundleLanded, EventTime: time.Now()},
		BundleID:  "abc",
	}
	require.NoError(t, bus.PublishSync(context.Background(), event))
	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), event))

	assert.Equal(t, 1, calls)
}

func TestPublishSyncCollectsHandlerErrors(t *testing.T) {
	bus := newTestBus(t)

	bus.SubscribeFunc(BundleFailed, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})

	err := bus.PublishSync(context.Background(), BundleFailedEvent{
		BaseEvent: BaseEvent{EventType: BundleFailed, EventTime: time.Now()},
	})
	require.Error(t, err)
}

func TestAsyncPublishDelivers(t *testing.T) {
	bus := newTestBus(t)

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	bus.SubscribeFunc(TokenCreated, func(_ context.Context, _ Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		close(done)
		return nil
	})

	require.NoError(t, bus.Publish(TokenCreatedEvent{
		BaseEvent: BaseEvent{EventType: TokenCreated, EventTime: time.Now()},
		Name:      "Test Token",
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestPublishAfterShutdownFails(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	err := bus.Publish(TokenCreatedEvent{
		BaseEvent: BaseEvent{EventType: TokenCreated, EventTime: time.Now()},
	})
	require.Error(t, err)
}
