// Package syncer orchestrates envelope synchronization: it selects the
// fetch window, pulls changed envelopes from DocuSign, drives the upsert
// engine per item, and records one SyncLog row per attempt.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"docusign-envelope-sync/internal/mapper"
	"docusign-envelope-sync/internal/metrics"
	"docusign-envelope-sync/internal/models"
	"docusign-envelope-sync/internal/repository"
)

// maxErrorMessageLen bounds the diagnostic stored in a SyncLog row.
const maxErrorMessageLen = 500

// FallbackDaysBack is the window used when no prior successful sync
// exists and the caller supplied no explicit day count.
const FallbackDaysBack = 30

// Provider fetches envelopes changed on or after a date. The DocuSign
// client implements it; tests substitute fakes.
type Provider interface {
	FetchChangedSince(ctx context.Context, since time.Time) ([]mapper.RawEnvelope, error)
}

// Options controls one sync run. A nil DaysBack without ForceFull means
// incremental: resume from the last successful sync.
type Options struct {
	DaysBack  *int
	ForceFull bool
}

// Result summarizes a successful sync run
type Result struct {
	SyncedCount int
	Window      string
}

// Syncer coordinates fetch, upsert, and sync logging.
//
// Concurrent Run calls are not mutually exclusive: two overlapping runs
// may fetch the same window and both upsert the same envelopes. That is
// safe because the upsert is idempotent and convergent, but each run
// logs its own envelopes_synced count.
type Syncer struct {
	repo            *repository.Repository
	provider        Provider
	metrics         *metrics.Metrics
	defaultDaysBack int
}

// New creates a Syncer
func New(repo *repository.Repository, provider Provider, m *metrics.Metrics, defaultDaysBack int) *Syncer {
	if defaultDaysBack <= 0 {
		defaultDaysBack = FallbackDaysBack
	}
	return &Syncer{
		repo:            repo,
		provider:        provider,
		metrics:         m,
		defaultDaysBack: defaultDaysBack,
	}
}

// Run executes one sync attempt. On success it appends a SyncLog row
// whose last_sync_date is the wall-clock time of this attempt, which
// becomes the start of the next incremental window. On any failure it
// best-effort appends an error row and returns the original error; a
// failure to write the log row never masks that error.
func (s *Syncer) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.SyncRuns.Inc()
	}

	since, window, err := s.resolveWindow(opts)
	if err != nil {
		s.logFailure(err)
		return nil, err
	}

	logrus.Infof("Starting envelope sync for %s", window)

	envelopes, err := s.provider.FetchChangedSince(ctx, since)
	if err != nil {
		s.logFailure(err)
		return nil, err
	}

	synced := 0
	for _, raw := range envelopes {
		norm, err := mapper.Map(raw)
		if err != nil {
			s.logFailure(err)
			return nil, err
		}
		if err := s.repo.Upsert(norm); err != nil {
			s.logFailure(err)
			return nil, err
		}
		synced++
	}

	entry := &models.SyncLog{
		SyncType:        models.SyncTypeEnvelope,
		LastSyncDate:    time.Now().UTC(),
		EnvelopesSynced: synced,
		SyncStatus:      models.SyncStatusSuccess,
	}
	if err := s.repo.CreateSyncLog(entry); err != nil {
		s.logFailure(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.EnvelopesUpserted.Add(float64(synced))
		s.metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}

	logrus.Infof("Envelope sync completed: %d envelopes in %v", synced, time.Since(start))
	return &Result{SyncedCount: synced, Window: window}, nil
}

// resolveWindow picks the fetch window start. Forced full syncs and
// explicit day counts ignore sync history; the default incremental path
// resumes from the last successful sync's as-of date.
func (s *Syncer) resolveWindow(opts Options) (time.Time, string, error) {
	now := time.Now().UTC()

	if opts.ForceFull || opts.DaysBack != nil {
		days := s.defaultDaysBack
		if opts.DaysBack != nil && *opts.DaysBack > 0 {
			days = *opts.DaysBack
		}
		return now.AddDate(0, 0, -days), fmt.Sprintf("the last %d days", days), nil
	}

	last, err := s.repo.LastSuccessfulSync(models.SyncTypeEnvelope)
	if err != nil {
		return time.Time{}, "", err
	}
	if last != nil {
		since := last.LastSyncDate.UTC()
		return since, fmt.Sprintf("changes since %s", since.Format("2006-01-02 15:04 MST")), nil
	}

	return now.AddDate(0, 0, -FallbackDaysBack), fmt.Sprintf("the last %d days (first sync)", FallbackDaysBack), nil
}

// logFailure appends an error SyncLog row. Log-write failures are
// swallowed so the original sync error is what surfaces to the caller.
func (s *Syncer) logFailure(cause error) {
	if s.metrics != nil {
		s.metrics.SyncFailures.Inc()
	}

	entry := &models.SyncLog{
		SyncType:     models.SyncTypeEnvelope,
		LastSyncDate: time.Now().UTC(),
		SyncStatus:   models.SyncStatusError,
		ErrorMessage: truncate(cause.Error(), maxErrorMessageLen),
	}
	if err := s.repo.CreateSyncLog(entry); err != nil {
		logrus.Errorf("Failed to record sync failure: %v (original error: %v)", err, cause)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
