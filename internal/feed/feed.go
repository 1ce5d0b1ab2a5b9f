// Package feed turns a session collection into a cancellable stream of full snapshots.
package feed

import (
	"context"
	"log/slog"
	"time"

	"hornethelper/internal/model"
)

// Snapshot is the whole collection of one kind at a point in time
type Snapshot struct {
	Kind     model.SessionKind
	Sessions []*model.Session
	Seq      uint64
}

// Source is the store the feed reads from
type Source interface {
	List(ctx context.Context, kind model.SessionKind) ([]*model.Session, error)
	Watch(ctx context.Context, kind model.SessionKind) (<-chan struct{}, error)
}

// Options tunes a subscription
type Options struct {
	// PollInterval is used when the source cannot watch, and as a resync period while watching
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Subscription delivers snapshots on C until cancelled. A slow reader only ever sees the latest snapshot.
type Subscription struct {
	C      <-chan Snapshot
	cancel context.CancelFunc
	done   chan struct{}
}

// Subscribe starts streaming snapshots of kind. Subscribing again after Cancel starts a fresh stream.
func Subscribe(ctx context.Context, src Source, kind model.SessionKind, opts Options) *Subscription {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot, 1)
	sub := &Subscription{C: out, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer close(out)
		run(ctx, src, kind, opts, out)
	}()
	return sub
}

// Cancel stops the subscription and waits for its goroutine to exit
func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

func run(ctx context.Context, src Source, kind model.SessionKind, opts Options, out chan Snapshot) {
	logger := opts.Logger.With("kind", string(kind))
	var seq uint64

	emit := func() {
		sessions, err := src.List(ctx, kind)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("Feed list failed", "error", err)
			}
			return
		}
		seq++
		publish(out, Snapshot{Kind: kind, Sessions: sessions, Seq: seq})
	}

	changes, err := src.Watch(ctx, kind)
	if err != nil {
		logger.Info("Change stream unavailable, polling", "interval", opts.PollInterval, "error", err)
		changes = nil
	}

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	emit()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Change stream closed, polling")
				changes = nil
				continue
			}
			emit()
		case <-ticker.C:
			emit()
		}
	}
}

func publish(out chan Snapshot, snap Snapshot) {
	select {
	case out <- snap:
		return
	default:
	}
	// replace the unread snapshot with the newer one
	select {
	case <-out:
	default:
	}
	out <- snap
}
