package models

import "time"

// SyncRequest represents the request body for triggering an envelope sync
type SyncRequest struct {
	DaysBack  *int `json:"days_back"`
	ForceFull bool `json:"force_full"`
}

// SyncResponse represents the result of a sync run
type SyncResponse struct {
	Status      string `json:"status"`
	SyncedCount int    `json:"synced_count"`
	Message     string `json:"message"`
}

// EnvelopeResponse represents an envelope in list/detail responses
type EnvelopeResponse struct {
	EnvelopeID  string              `json:"envelopeId"`
	Subject     *string             `json:"subject"`
	DealName    *string             `json:"deal_name"`
	Status      string              `json:"status"`
	AppStatus   string              `json:"app_status"`
	SenderEmail *string             `json:"sender_email"`
	CreatedAt   *time.Time          `json:"created_at"`
	SentAt      *time.Time          `json:"sent_at"`
	DeliveredAt *time.Time          `json:"delivered_at"`
	CompletedAt *time.Time          `json:"completed_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Recipients  []RecipientResponse `json:"recipients,omitempty"`
}

// RecipientResponse represents a signer in envelope detail responses
type RecipientResponse struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Role         *string `json:"role"`
	RoutingOrder int     `json:"routing_order"`
	Status       string  `json:"status"`
}

// StatsResponse represents aggregate envelope counts
type StatsResponse struct {
	TotalEnvelopes int64            `json:"total_envelopes"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByAppStatus    map[string]int64 `json:"by_app_status"`
}

// SyncLogResponse represents one sync attempt in sync status/history responses
type SyncLogResponse struct {
	ID              uint      `json:"id"`
	SyncType        string    `json:"sync_type"`
	Date            time.Time `json:"date"`
	EnvelopesSynced int       `json:"envelopes_synced"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
