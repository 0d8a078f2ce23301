// Package feed maintains the live feed snapshot stream. A single watcher
// re-reads the full ordered feed whenever a mutation event arrives and
// delivers the snapshot to every subscriber; there is no delta protocol.
package feed

import (
	"context"
	"sync"
	"time"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/observability"
)

const (
	minBackoff  = time.Second
	maxBackoff  = 30 * time.Second
	loadTimeout = 10 * time.Second
)

// Loader reads the full ordered feed snapshot.
type Loader func(ctx context.Context) ([]*models.Post, error)

// Snapshot is one delivery to a subscriber: either a full post list or a
// single error for a failed refresh. After an error the watcher keeps
// retrying and a later successful snapshot supersedes it.
type Snapshot struct {
	Posts []*models.Post
	Err   error
}

// Watcher runs one long-lived refresh loop shared by all subscribers.
type Watcher struct {
	loader Loader
	resync time.Duration
	log    *observability.FeedLogger

	mu     sync.Mutex
	subs   map[uint64]chan Snapshot
	nextID uint64

	events chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher that refreshes on demand and at least every
// resync interval.
func NewWatcher(loader Loader, resync time.Duration) *Watcher {
	if resync <= 0 {
		resync = 30 * time.Second
	}
	return &Watcher{
		loader: loader,
		resync: resync,
		log:    observability.NewFeedLogger("watcher"),
		subs:   make(map[uint64]chan Snapshot),
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Start launches the refresh loop. It returns immediately.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
}

// Stop terminates the refresh loop and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
}

// Notify requests a refresh. Multiple calls between refreshes coalesce into
// one; the call never blocks.
func (w *Watcher) Notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// Subscribe registers a snapshot consumer. The returned cancel func must be
// called when the consumer goes away; after cancel nothing more is delivered.
// The subscription triggers a refresh so the consumer receives a current
// snapshot shortly after subscribing.
func (w *Watcher) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = ch
	w.mu.Unlock()

	w.Notify()

	cancel := func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports the number of active subscriptions.
func (w *Watcher) SubscriberCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	w.log.LogLifecycle(ctx, "started", map[string]interface{}{"resync": w.resync.String()})

	ticker := time.NewTicker(w.resync)
	defer ticker.Stop()

	backoff := minBackoff
	for {
		select {
		case <-ctx.Done():
			w.log.LogLifecycle(ctx, "stopped", nil)
			return
		case <-w.events:
		case <-ticker.C:
		}

		if err := w.refresh(ctx); err != nil {
			w.log.LogError(ctx, err, "refresh")
			w.deliver(Snapshot{Err: err})

			select {
			case <-ctx.Done():
				w.log.LogLifecycle(ctx, "stopped", nil)
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			// Retry without waiting for the next event.
			w.Notify()
			continue
		}
		backoff = minBackoff
	}
}

func (w *Watcher) refresh(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	posts, err := w.loader(loadCtx)
	if err != nil {
		return err
	}
	w.deliver(Snapshot{Posts: posts})
	return nil
}

// deliver pushes the snapshot to every subscriber without blocking. A full
// buffer means the subscriber still holds an older snapshot; it is replaced
// by the newer one.
func (w *Watcher) deliver(snap Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ch := range w.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
		middleware.FeedSnapshotsDelivered.Inc()
	}
}
