package cmd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayback struct {
	state atomic.Int32
	stops atomic.Int32
}

func (f *fakePlayback) State() contracts.State { return contracts.State(f.state.Load()) }
func (f *fakePlayback) Stop() error {
	f.stops.Add(1)
	f.state.Store(int32(contracts.StateReady))
	return nil
}

func waitAsync(ctx context.Context, p playback, events <-chan contracts.Event) <-chan error {
	done := make(chan error, 1)
	go func() { done <- waitForEnd(ctx, p, events) }()
	return done
}

func TestWaitForEndNoticesReadyWithoutEvent(t *testing.T) {
	statePoll = 10 * time.Millisecond
	t.Cleanup(func() { statePoll = 250 * time.Millisecond })

	p := &fakePlayback{}
	p.state.Store(int32(contracts.StatePlaying))
	events := make(chan contracts.Event)
	done := waitAsync(context.Background(), p, events)

	events <- contracts.Event{Kind: contracts.EventProgress, Current: 1, Total: 2}
	p.state.Store(int32(contracts.StateReady))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waitForEnd kept waiting after playback finished")
	}
	assert.Zero(t, p.stops.Load())
}

func TestWaitForEndStopsOnCancel(t *testing.T) {
	p := &fakePlayback{}
	p.state.Store(int32(contracts.StatePlaying))
	ctx, cancel := context.WithCancel(context.Background())
	done := waitAsync(ctx, p, make(chan contracts.Event))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waitForEnd ignored cancellation")
	}
	assert.EqualValues(t, 1, p.stops.Load())
}

func TestWaitForEndReadyEvent(t *testing.T) {
	p := &fakePlayback{}
	p.state.Store(int32(contracts.StatePlaying))
	events := make(chan contracts.Event, 1)
	events <- contracts.Event{Kind: contracts.EventState, State: contracts.StateReady}

	select {
	case err := <-waitAsync(context.Background(), p, events):
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waitForEnd missed the READY event")
	}
}
