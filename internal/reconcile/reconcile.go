// Package reconcile decides an item's displayed vote and favorite state
// from three sources: the host markup just parsed, the persisted action
// store, and the outcome of the user's own action requests.
//
// Host observations are asymmetric: a positive observation (voted,
// favorited) overwrites the store, a negative or missing one never
// clears it. The store only fills gaps.
package reconcile

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"hnterm/internal/actions"
	"hnterm/internal/hn"
)

// Store is the part of the action store reconciliation reads and writes.
type Store interface {
	Get(kind actions.Kind, id string) (actions.Record, bool)
	Update(kind actions.Kind, id string, p actions.Patch) actions.Record
}

// Requester performs the host requests behind user actions.
type Requester interface {
	Follow(ctx context.Context, href string) (*url.URL, error)
	Page(ctx context.Context, path string) (*hn.Page, error)
	Reply(ctx context.Context, href, text string) error
}

// Reconciler applies user actions optimistically and issues their
// requests.
type Reconciler struct {
	store   Store
	req     Requester
	logger  *slog.Logger
	timeout time.Duration

	// spawn runs detached requests; tests replace it to run inline.
	spawn    func(func())
	inflight sync.WaitGroup
}

type Options struct {
	Store     Store
	Requester Requester
	Logger    *slog.Logger
	// Timeout bounds each detached request.
	Timeout time.Duration
}

func New(opts Options) *Reconciler {
	r := &Reconciler{
		store:   opts.Store,
		req:     opts.Requester,
		logger:  opts.Logger,
		timeout: opts.Timeout,
	}
	r.spawn = func(f func()) {
		r.inflight.Add(1)
		go func() {
			defer r.inflight.Done()
			f()
		}()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.timeout <= 0 {
		r.timeout = 15 * time.Second
	}
	return r
}

// Wait blocks until detached requests finish or ctx is done.
func (r *Reconciler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
