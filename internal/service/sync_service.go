package service

import (
	"context"
	"sync"
	"time"

	"leadbridge/internal/constants"
	"leadbridge/internal/errors"
	"leadbridge/internal/metrics"
	"leadbridge/internal/models"
	"leadbridge/pkg/manychat/types"

	"github.com/sirupsen/logrus"
)

// syncStateKey is where the job persists its rate-limit timestamp
const syncStateKey = "manychat_last_sync"

// SyncDatabaseService defines the database operations needed by SyncService
type SyncDatabaseService interface {
	SaveLead(ctx context.Context, lead *models.Lead) error
	GetAllLeads(ctx context.Context) ([]models.Lead, error)
	GetSyncState(ctx context.Context, key string) (string, error)
	SetSyncState(ctx context.Context, key, value string) error
}

// SyncService reconciles the local lead collection with the ManyChat contact
// directory. Locally modified leads are authoritative and never overwritten.
type SyncService struct {
	db          SyncDatabaseService
	client      types.ContactClient
	notifier    ChangeNotifier
	logger      *logrus.Logger
	minInterval time.Duration
	now         func() time.Time
}

// NewSyncService creates a new reconciliation service instance
func NewSyncService(db SyncDatabaseService, client types.ContactClient, notifier ChangeNotifier, logger *logrus.Logger) *SyncService {
	return &SyncService{
		db:          db,
		client:      client,
		notifier:    notifier,
		logger:      logger,
		minInterval: constants.SyncMinIntervalMinutes * time.Minute,
		now:         time.Now,
	}
}

// SyncWithManyChat runs one reconciliation pass. Calls within the rate-limit
// window are a no-op. The per-lead updates are issued concurrently and
// awaited together; the batch is non-atomic, so a failure can leave earlier
// updates committed. On failure the rate-limit timestamp is left unchanged so
// the next call retries immediately.
func (ss *SyncService) SyncWithManyChat(ctx context.Context) error {
	now := ss.now()

	lastSync, err := ss.db.GetSyncState(ctx, syncStateKey)
	if err != nil {
		return errors.NewDatabaseError("read sync state", err)
	}
	if lastSync != "" {
		if t, parseErr := time.Parse(time.RFC3339, lastSync); parseErr == nil && now.Sub(t) < ss.minInterval {
			ss.logger.WithField("last_sync", lastSync).Debug("Skipping sync, rate limit window not elapsed")
			return nil
		}
	}

	// Single unpaged fetch; the client supports paging but the job does not
	// drive it yet
	contacts, err := ss.client.GetContacts(ctx, 1, "")
	if err != nil {
		metrics.IncrementCounter("sync_runs_total", map[string]string{"outcome": "fetch_failed"}, "Reconciliation runs")
		return errors.Wrap(err, errors.ErrCodeManyChatAPI, "failed to fetch contacts")
	}

	contactsByID := make(map[string]types.Contact, len(contacts))
	for _, c := range contacts {
		contactsByID[c.ID] = c
	}

	leads, err := ss.db.GetAllLeads(ctx)
	if err != nil {
		return errors.NewDatabaseError("load leads", err)
	}

	linked := make(map[string]bool, len(leads))

	var wg sync.WaitGroup
	errCh := make(chan error, len(leads)+len(contacts))

	for i := range leads {
		lead := leads[i]
		if lead.ManyChatID == "" {
			continue
		}
		linked[lead.ManyChatID] = true

		if lead.LocallyModified {
			continue
		}
		contact, ok := contactsByID[lead.ManyChatID]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(lead models.Lead, contact types.Contact) {
			defer wg.Done()
			lead.ApplyContact(&contact)
			lead.LastSync = now
			if err := ss.db.SaveLead(ctx, &lead); err != nil {
				errCh <- err
			}
		}(lead, contact)
	}

	// Contacts with no linked lead are imported as fresh leads
	for _, c := range contacts {
		if linked[c.ID] {
			continue
		}

		wg.Add(1)
		go func(contact types.Contact) {
			defer wg.Done()
			lead := models.NewLeadFromContact(&contact, now)
			if err := ss.db.SaveLead(ctx, lead); err != nil {
				errCh <- err
			}
		}(c)
	}

	wg.Wait()
	close(errCh)

	var failed int
	var firstErr error
	for err := range errCh {
		if firstErr == nil {
			firstErr = err
		}
		failed++
	}

	if firstErr != nil {
		ss.logger.WithError(firstErr).WithField(LogFieldCount, failed).Error("Lead reconciliation failed")
		metrics.IncrementCounter("sync_runs_total", map[string]string{"outcome": "failed"}, "Reconciliation runs")
		ss.notifyChanged()
		return errors.NewSyncError(failed, firstErr)
	}

	if err := ss.db.SetSyncState(ctx, syncStateKey, now.Format(time.RFC3339)); err != nil {
		return errors.NewDatabaseError("store sync state", err)
	}

	ss.logger.WithFields(logrus.Fields{
		LogFieldCount: len(contacts),
	}).Info("Lead reconciliation completed")
	metrics.IncrementCounter("sync_runs_total", map[string]string{"outcome": "ok"}, "Reconciliation runs")

	ss.notifyChanged()
	return nil
}

func (ss *SyncService) notifyChanged() {
	if ss.notifier != nil {
		ss.notifier.NotifyChanged()
	}
}
