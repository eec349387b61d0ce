package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/dividend-dashboard/internal/portfolio"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []*portfolio.Snapshot
	err       error
	done      chan struct{}
}

func (r *recordingPublisher) PublishPortfolioUpdated(ctx context.Context, snap *portfolio.Snapshot) error {
	r.mu.Lock()
	r.published = append(r.published, snap)
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
	return r.err
}

func (r *recordingPublisher) Published() []*portfolio.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*portfolio.Snapshot(nil), r.published...)
}

func TestPublisher_Notify_keepsOnlyLatestPending(t *testing.T) {
	rec := &recordingPublisher{done: make(chan struct{}, 1)}
	pub := NewPublisher(rec, zerolog.Nop())

	first := &portfolio.Snapshot{Rate: 1.35}
	second := &portfolio.Snapshot{Rate: 1.36}
	latest := &portfolio.Snapshot{Rate: 1.37}
	pub.Notify(first)
	pub.Notify(second)
	pub.Notify(latest)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
	}

	published := rec.Published()
	require.Len(t, published, 1)
	assert.Same(t, latest, published[0])
}

func TestPublisher_Run_continuesAfterErrors(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("broker down"), done: make(chan struct{}, 1)}
	pub := NewPublisher(rec, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		pub.Run(ctx)
		close(stopped)
	}()

	for i := 0; i < 2; i++ {
		pub.Notify(&portfolio.Snapshot{})
		select {
		case <-rec.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for publish")
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop")
	}
	assert.Len(t, rec.Published(), 2)
}
