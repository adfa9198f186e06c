// Package repository implements the upsert engine and query layer over
// GORM. The upsert is idempotent and convergent: DocuSign is the source
// of truth, every scalar is overwritten last-write-wins, and the
// recipient set is replaced wholesale inside one transaction.
package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"docusign-envelope-sync/internal/apperr"
	"docusign-envelope-sync/internal/dealname"
	"docusign-envelope-sync/internal/mapper"
	"docusign-envelope-sync/internal/models"
	"docusign-envelope-sync/internal/status"
)

// ErrNotFound is returned when a requested envelope does not exist.
var ErrNotFound = errors.New("envelope not found")

// allowedDateFields enumerates the timestamp columns a date-range filter
// may target. Unknown names are rejected, never silently ignored.
var allowedDateFields = map[string]struct{}{
	"created_at":   {},
	"sent_at":      {},
	"delivered_at": {},
	"completed_at": {},
}

// Repository provides envelope and sync log storage operations
type Repository struct {
	db        *gorm.DB
	extractor *dealname.Extractor
}

// New creates a Repository with the default deal-name rules
func New(db *gorm.DB) *Repository {
	return NewWithExtractor(db, dealname.NewExtractor())
}

// NewWithExtractor creates a Repository with caller-supplied naming rules
func NewWithExtractor(db *gorm.DB, extractor *dealname.Extractor) *Repository {
	return &Repository{db: db, extractor: extractor}
}

// DB exposes the underlying handle for health checks
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Upsert merges a normalized envelope into storage keyed by envelope id.
// Deal name and application status are recomputed on every call, and the
// recipient set is deleted and reinserted so an observer never sees a
// half-merged list. Calling it twice with the same input converges on the
// same row, with only updated_at advancing.
func (r *Repository) Upsert(norm *mapper.NormalizedEnvelope) error {
	if norm == nil || norm.EnvelopeID == "" {
		return apperr.Validation("envelope id is required for upsert")
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var env models.Envelope
		found := true
		if err := tx.Where("id = ?", norm.EnvelopeID).First(&env).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
			env = models.Envelope{ID: norm.EnvelopeID}
		}

		env.Subject = optional(norm.Subject)
		env.SenderEmail = optional(norm.SenderEmail)
		env.Status = norm.Status
		env.CreatedAt = norm.CreatedAt
		env.SentAt = norm.SentAt
		env.DeliveredAt = norm.DeliveredAt
		env.CompletedAt = norm.CompletedAt
		env.DealName = optional(r.extractor.Extract(norm.CustomFields, norm.Subject))

		recipientStatuses := make([]string, 0, len(norm.Recipients))
		for _, rec := range norm.Recipients {
			recipientStatuses = append(recipientStatuses, rec.Status)
		}
		env.AppStatus = status.Derive(norm.Status, recipientStatuses)
		env.UpdatedAt = time.Now().UTC()

		if found {
			if err := tx.Save(&env).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&env).Error; err != nil {
				return err
			}
		}

		// Replace the recipient collection wholesale; DocuSign always
		// returns the complete current list.
		if err := tx.Where("envelope_id = ?", env.ID).Delete(&models.Recipient{}).Error; err != nil {
			return err
		}

		if len(norm.Recipients) > 0 {
			recipients := make([]models.Recipient, 0, len(norm.Recipients))
			for _, rec := range norm.Recipients {
				recipients = append(recipients, models.Recipient{
					EnvelopeID:      env.ID,
					Name:            optional(rec.Name),
					Email:           optional(rec.Email),
					Role:            optional(rec.Role),
					RoutingOrder:    rec.RoutingOrder,
					RecipientStatus: rec.Status,
					Raw:             rec.Raw,
				})
			}
			if err := tx.Create(&recipients).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return &apperr.StorageError{Op: "upsert envelope", Err: err}
	}
	return nil
}

// EnvelopeFilter describes the optional list filters. From is an
// inclusive lower bound and To an exclusive upper bound on the chosen
// date field; the handler widens a day-granularity "to" date by one day
// so both endpoints are inclusive.
type EnvelopeFilter struct {
	Status    string
	AppStatus string
	Deal      string
	Search    string
	DateField string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// List returns envelopes matching the filter, most recently updated first
func (r *Repository) List(filter EnvelopeFilter) ([]models.Envelope, error) {
	q := r.db.Model(&models.Envelope{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AppStatus != "" {
		q = q.Where("app_status = ?", filter.AppStatus)
	}
	if filter.Deal != "" {
		q = q.Where("deal_name = ?", filter.Deal)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("subject LIKE ? OR deal_name LIKE ? OR sender_email LIKE ?", like, like, like)
	}
	if filter.DateField != "" {
		if _, ok := allowedDateFields[filter.DateField]; !ok {
			return nil, apperr.Validation("unknown date field %q", filter.DateField)
		}
		if filter.From != nil {
			q = q.Where(filter.DateField+" >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where(filter.DateField+" < ?", *filter.To)
		}
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	var envelopes []models.Envelope
	if err := q.Order("updated_at DESC").Limit(limit).Find(&envelopes).Error; err != nil {
		return nil, &apperr.StorageError{Op: "list envelopes", Err: err}
	}
	return envelopes, nil
}

// Get returns one envelope with its recipients in routing order.
// Returns ErrNotFound when the envelope does not exist.
func (r *Repository) Get(envelopeID string) (*models.Envelope, error) {
	var env models.Envelope
	err := r.db.
		Preload("Recipients", func(db *gorm.DB) *gorm.DB {
			return db.Order("routing_order ASC, id ASC")
		}).
		Where("id = ?", envelopeID).
		First(&env).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &apperr.StorageError{Op: "get envelope", Err: err}
	}
	return &env, nil
}

// statusCount is a scan target for grouped counts
type statusCount struct {
	Status string
	Count  int64
}

// Stats returns envelope totals grouped by raw and application status
func (r *Repository) Stats() (*models.StatsResponse, error) {
	stats := &models.StatsResponse{
		ByStatus:    make(map[string]int64),
		ByAppStatus: make(map[string]int64),
	}

	if err := r.db.Model(&models.Envelope{}).Count(&stats.TotalEnvelopes).Error; err != nil {
		return nil, &apperr.StorageError{Op: "count envelopes", Err: err}
	}

	var byStatus []statusCount
	if err := r.db.Model(&models.Envelope{}).
		Select("status AS status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, &apperr.StorageError{Op: "count by status", Err: err}
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] = row.Count
	}

	var byAppStatus []statusCount
	if err := r.db.Model(&models.Envelope{}).
		Select("app_status AS status, COUNT(*) AS count").
		Group("app_status").
		Scan(&byAppStatus).Error; err != nil {
		return nil, &apperr.StorageError{Op: "count by app status", Err: err}
	}
	for _, row := range byAppStatus {
		stats.ByAppStatus[row.Status] = row.Count
	}

	return stats, nil
}

// CreateSyncLog appends one sync attempt row
func (r *Repository) CreateSyncLog(log *models.SyncLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return &apperr.StorageError{Op: "create sync log", Err: err}
	}
	return nil
}

// LastSuccessfulSync returns the most recent successful sync attempt, or
// nil when no sync has succeeded yet.
func (r *Repository) LastSuccessfulSync(syncType string) (*models.SyncLog, error) {
	var log models.SyncLog
	err := r.db.
		Where("sync_type = ? AND sync_status = ?", syncType, models.SyncStatusSuccess).
		Order("id DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &apperr.StorageError{Op: "query last successful sync", Err: err}
	}
	return &log, nil
}

// LatestSync returns the most recent sync attempt regardless of outcome,
// or nil when none exists.
func (r *Repository) LatestSync(syncType string) (*models.SyncLog, error) {
	var log models.SyncLog
	err := r.db.
		Where("sync_type = ?", syncType).
		Order("id DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &apperr.StorageError{Op: "query latest sync", Err: err}
	}
	return &log, nil
}

// RecentSyncs returns the most recent sync attempts, newest first
func (r *Repository) RecentSyncs(syncType string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []models.SyncLog
	err := r.db.
		Where("sync_type = ?", syncType).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, &apperr.StorageError{Op: "query sync history", Err: err}
	}
	return logs, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
