package events

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/leandrodaf/autobard/internal/logger"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOut(t *testing.T) {
	b := NewBus(logger.NewNopLogger())
	a, cancelA := b.Subscribe(4)
	c, cancelC := b.Subscribe(4)
	defer cancelA()
	defer cancelC()

	b.Publish(contracts.Event{Kind: contracts.EventProgress, Current: 1, Total: 3})

	assert.Equal(t, 1, (<-a).Current)
	assert.Equal(t, 1, (<-c).Current)
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBus(logger.NewNopLogger())
	_, cancel := b.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(contracts.Event{Kind: contracts.EventTime})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := NewBus(logger.NewNopLogger())
	ch, cancel := b.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	b.Publish(contracts.Event{})
}

func TestHandleRecoversPanics(t *testing.T) {
	b := NewBus(logger.NewNopLogger())
	var seen atomic.Int32
	stop := b.Handle(func(ev contracts.Event) {
		seen.Add(1)
		if ev.Current == 0 {
			panic("observer bug")
		}
	})
	defer stop()

	b.Publish(contracts.Event{Current: 0})
	b.Publish(contracts.Event{Current: 1})

	require.Eventually(t, func() bool { return seen.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := NewBus(logger.NewNopLogger())
	ch, cancel := b.Subscribe(1)
	b.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := b.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}
