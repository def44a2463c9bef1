package service

import (
	"context"
	"sync"

	"leadbridge/internal/models"

	"github.com/sirupsen/logrus"
)

// LeadSnapshot is one delivery of the live lead query. Every notification
// carries the full current result set; subscribers must replace any cached
// state rather than patch it. Err, once set, is terminal for the watcher.
type LeadSnapshot struct {
	Leads []models.Lead `json:"leads"`
	Err   string        `json:"error,omitempty"`
}

// LeadQueryService defines the read the watcher re-runs on every change
type LeadQueryService interface {
	GetVisibleLeads(ctx context.Context) ([]models.Lead, error)
}

// LeadWatcher maintains a live query over the non-hidden leads, ordered by
// lastSync descending. Writers call NotifyChanged after each mutation; the
// watcher re-runs the query and pushes the full snapshot to every subscriber.
// A failed refresh is terminal: the error is published and the watcher stops
// without resubscribing.
type LeadWatcher struct {
	store  LeadQueryService
	logger *logrus.Logger

	mu          sync.Mutex
	current     LeadSnapshot
	subscribers map[int]chan LeadSnapshot
	nextID      int
	terminal    bool

	changeCh chan struct{}
}

// NewLeadWatcher creates a new lead watcher instance
func NewLeadWatcher(store LeadQueryService, logger *logrus.Logger) *LeadWatcher {
	return &LeadWatcher{
		store:       store,
		logger:      logger,
		subscribers: make(map[int]chan LeadSnapshot),
		changeCh:    make(chan struct{}, 1),
	}
}

// Start loads the initial snapshot and serves change notifications until the
// context is cancelled or a refresh fails
func (w *LeadWatcher) Start(ctx context.Context) {
	w.logger.Info("Starting lead watcher")

	if !w.refresh(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Lead watcher context cancelled, stopping")
			return
		case <-w.changeCh:
			if !w.refresh(ctx) {
				return
			}
		}
	}
}

// NotifyChanged signals that the lead collection changed. Signals are
// coalesced; the watcher always queries the latest state.
func (w *LeadWatcher) NotifyChanged() {
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

// Subscribe registers a snapshot channel and delivers the current snapshot
// immediately. The returned function unsubscribes; that is the only way to
// stop an individual subscription.
func (w *LeadWatcher) Subscribe() (<-chan LeadSnapshot, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++

	ch := make(chan LeadSnapshot, 1)
	ch <- w.current
	w.subscribers[id] = ch

	return ch, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if sub, ok := w.subscribers[id]; ok {
			delete(w.subscribers, id)
			close(sub)
		}
	}
}

// Err returns the terminal error message, if the watcher has failed
func (w *LeadWatcher) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current.Err
}

func (w *LeadWatcher) refresh(ctx context.Context) bool {
	leads, err := w.store.GetVisibleLeads(ctx)
	if err != nil {
		w.logger.WithError(err).Error("Lead watcher query failed, subscription is terminal")
		w.publish(LeadSnapshot{Err: err.Error()})
		return false
	}

	w.publish(LeadSnapshot{Leads: leads})
	return true
}

func (w *LeadWatcher) publish(snapshot LeadSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.terminal {
		return
	}
	if snapshot.Err != "" {
		w.terminal = true
	}

	w.current = snapshot

	for _, sub := range w.subscribers {
		// Latest snapshot wins; a slow subscriber drops stale ones
		select {
		case <-sub:
		default:
		}
		sub <- snapshot
	}
}
