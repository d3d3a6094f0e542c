// Package query keeps server-fetched data in a cache.Store and applies
// mutations optimistically: the cache is updated before the server answers,
// and every registered query is refetched once no mutation is in flight.
package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/cache"
)

var (
	// ErrCanceled is returned by Fetch when the read was cancelled or
	// superseded before its result could be stored.
	ErrCanceled = errors.New("query: fetch canceled")

	// ErrUnknownQuery is returned for keys that were never registered.
	ErrUnknownQuery = errors.New("query: unknown key")
)

// Fetcher loads the current server value of a query.
type Fetcher[V any] func(ctx context.Context) (V, error)

// Mutation describes one optimistic write.
type Mutation[V any] struct {
	// Key is the query the optimistic write targets.
	Key string

	// Apply projects the expected result onto the cached value. It runs
	// synchronously inside Mutate and must not mutate its argument.
	Apply func(current V) V

	// Run performs the server call.
	Run func(ctx context.Context) error

	// OnSuccess and OnError are called after Run returns, before
	// reconciliation.
	OnSuccess func()
	OnError   func(err error)
}

type entry[V any] struct {
	fetch     Fetcher[V]
	gen       uint64
	cancel    context.CancelFunc
	done      chan struct{}
	fetchedAt time.Time
}

// Client owns the registered queries over one store.
type Client[V any] struct {
	store    cache.Store[V]
	logger   *zap.Logger
	rollback bool

	mu       sync.Mutex
	entries  map[string]*entry[V]
	order    []string
	mutating int

	changed chan struct{}
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	rollback bool
}

// WithLogger sets the logger used for reconciliation failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRollback restores the pre-mutation value when a mutation fails.
// It is off by default: a failed optimistic write stays visible until the
// next reconciliation replaces it.
func WithRollback(enabled bool) Option {
	return func(o *options) { o.rollback = enabled }
}

// New creates a Client over store.
func New[V any](store cache.Store[V], opts ...Option) *Client[V] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client[V]{
		store:    store,
		logger:   o.logger,
		rollback: o.rollback,
		entries:  make(map[string]*entry[V]),
		changed:  make(chan struct{}, 1),
	}
}

// Register adds a query. Registering a key twice replaces its fetcher.
func (c *Client[V]) Register(key string, fetch Fetcher[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.fetch = fetch
		return
	}
	c.entries[key] = &entry[V]{fetch: fetch}
	c.order = append(c.order, key)
}

// Fetch loads key from the server and stores the result. A newer Fetch or a
// Cancel on the same key supersedes this one, in which case nothing is
// written and ErrCanceled is returned.
func (c *Client[V]) Fetch(ctx context.Context, key string) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownQuery, key)
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	gen := e.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	fetch := e.fetch
	c.mu.Unlock()

	defer close(done)
	defer cancel()

	value, err := fetch(fetchCtx)

	c.mu.Lock()
	current := e.gen == gen
	if e.done == done {
		e.cancel, e.done = nil, nil
	}
	if current && err == nil {
		// written under c.mu so a concurrent Cancel either sees this write
		// finished or prevents it
		c.store.Set(key, value)
		e.fetchedAt = time.Now()
	}
	c.mu.Unlock()

	if !current {
		return ErrCanceled
	}
	if err != nil {
		return err
	}
	c.notify()
	return nil
}

// Cancel invalidates any in-flight Fetch of key and waits for it to return.
// Once Cancel returns, no read started before it can write to the store.
func (c *Client[V]) Cancel(ctx context.Context, key string) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	e.gen++
	if e.cancel != nil {
		e.cancel()
	}
	done := e.done
	e.cancel, e.done = nil, nil
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Data returns the cached value of key.
func (c *Client[V]) Data(key string) (V, bool) {
	return c.store.Get(key)
}

// SetData overwrites the cached value of key and notifies listeners.
func (c *Client[V]) SetData(key string, value V) {
	c.store.Set(key, value)
	c.notify()
}

// FetchedAt reports when key was last successfully fetched.
func (c *Client[V]) FetchedAt(key string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.fetchedAt
	}
	return time.Time{}
}

// IsMutating returns the number of mutations in flight.
func (c *Client[V]) IsMutating() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutating
}

// Changed signals after the store was written. Signals coalesce: a reader
// that falls behind sees one pending signal, not one per write.
func (c *Client[V]) Changed() <-chan struct{} {
	return c.changed
}

// Mutate applies m optimistically and runs it in the background.
//
// On return the in-flight reads of m.Key are cancelled and m.Apply has been
// applied to the cache. When the last in-flight mutation settles, every
// registered query is refetched; the returned Pending completes after that.
func (c *Client[V]) Mutate(ctx context.Context, m Mutation[V]) *Pending {
	c.mu.Lock()
	c.mutating++
	c.mu.Unlock()

	if err := c.Cancel(ctx, m.Key); err != nil {
		// the read is already invalidated; only the wait was cut short
		c.logger.Debug("query_cancel_wait_interrupted", zap.String("key", m.Key), zap.Error(err))
	}

	snapshot, hadSnapshot := c.store.Get(m.Key)
	if m.Apply != nil {
		c.store.Patch(m.Key, func(current V, _ bool) V {
			return m.Apply(current)
		})
		c.notify()
	}

	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)

		var err error
		if m.Run != nil {
			err = m.Run(ctx)
		}
		p.err = err

		if err != nil {
			if c.rollback {
				if hadSnapshot {
					c.store.Set(m.Key, snapshot)
				} else {
					c.store.Delete(m.Key)
				}
				c.notify()
			}
			if m.OnError != nil {
				m.OnError(err)
			}
		} else if m.OnSuccess != nil {
			m.OnSuccess()
		}

		c.mu.Lock()
		c.mutating--
		settled := c.mutating == 0
		c.mu.Unlock()

		if settled {
			c.Reconcile(context.WithoutCancel(ctx))
		}
	}()
	return p
}

// Reconcile refetches every registered query, in registration order.
// Failures are logged and leave the cached value unchanged.
func (c *Client[V]) Reconcile(ctx context.Context) {
	c.mu.Lock()
	keys := append([]string(nil), c.order...)
	c.mu.Unlock()

	for _, key := range keys {
		if err := c.Fetch(ctx, key); err != nil {
			if errors.Is(err, ErrCanceled) {
				continue
			}
			c.logger.Warn("query_reconcile_failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (c *Client[V]) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// Pending tracks a mutation started by Mutate.
type Pending struct {
	done chan struct{}
	err  error
}

// Done is closed once the mutation and any reconciliation it triggered have
// finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until Done and returns the server call's error.
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

// Failed returns an already-settled Pending carrying err. It is used when a
// mutation is rejected before reaching the cache.
func Failed(err error) *Pending {
	p := &Pending{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}
