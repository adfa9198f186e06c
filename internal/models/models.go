package models

import (
	"time"
)

// Envelope represents a tracked DocuSign envelope in the database.
// The primary key is the DocuSign envelope GUID; every scalar field is
// overwritten on each sync, so DocuSign remains the source of truth.
type Envelope struct {
	ID          string  `json:"envelopeId" gorm:"type:varchar(64);primaryKey"`
	Subject     *string `json:"subject" gorm:"type:varchar(255)"`
	SenderEmail *string `json:"sender_email" gorm:"type:varchar(255)"`
	DealName    *string `json:"deal_name" gorm:"type:varchar(255);index:idx_envelopes_deal_status"`
	Status      string  `json:"status" gorm:"type:varchar(32);index"`
	AppStatus   string  `json:"app_status" gorm:"type:varchar(64);index;index:idx_envelopes_deal_status"`

	// Lifecycle timestamps come from DocuSign, never from GORM.
	CreatedAt   *time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	SentAt      *time.Time `json:"sent_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime:false"`

	Recipients []Recipient `json:"recipients,omitempty" gorm:"foreignKey:EnvelopeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName specifies the table name for Envelope
func (Envelope) TableName() string {
	return "envelopes"
}

// Recipient represents a signer on an envelope. The set is replaced
// wholesale on every upsert because DocuSign always returns the complete
// current recipient list.
type Recipient struct {
	ID              uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	EnvelopeID      string  `json:"envelope_id" gorm:"type:varchar(64);index"`
	Name            *string `json:"name" gorm:"type:varchar(255)"`
	Email           *string `json:"email" gorm:"type:varchar(255);index"`
	Role            *string `json:"role" gorm:"type:varchar(64)"`
	RoutingOrder    int     `json:"routing_order"`
	RecipientStatus string  `json:"status" gorm:"type:varchar(64)"`
	Raw             string  `json:"-" gorm:"type:json"`
}

// TableName specifies the table name for Recipient
func (Recipient) TableName() string {
	return "recipients"
}

// SyncTypeEnvelope is the discriminator for envelope sync attempts.
const SyncTypeEnvelope = "envelope_sync"

// Sync attempt outcomes recorded in SyncLog.SyncStatus.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
	SyncStatusPartial = "partial"
)

// SyncLog records one sync attempt. Rows are append-only; the
// last_sync_date of the most recent successful row drives the next
// incremental fetch window.
type SyncLog struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SyncType        string    `json:"sync_type" gorm:"type:varchar(50);default:envelope_sync;index"`
	LastSyncDate    time.Time `json:"last_sync_date"`
	EnvelopesSynced int       `json:"envelopes_synced"`
	SyncStatus      string    `json:"sync_status" gorm:"type:varchar(20)"`
	ErrorMessage    string    `json:"error_message" gorm:"type:varchar(500)"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for SyncLog
func (SyncLog) TableName() string {
	return "sync_logs"
}
