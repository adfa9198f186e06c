// Package mapper converts raw DocuSign envelope payloads into the
// normalized shape stored by the repository. The same shape is produced
// from polling responses and from Connect webhook documents, so both
// paths converge on identical rows.
package mapper

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"docusign-envelope-sync/internal/apperr"
)

// DefaultRoutingOrder is used when DocuSign omits a signer's routing
// order. It sorts unordered signers last.
const DefaultRoutingOrder = 9999

// RawEnvelope mirrors the DocuSign envelope payload. Any field may be
// absent; only the envelope id is required downstream.
type RawEnvelope struct {
	EnvelopeID        string           `json:"envelopeId"`
	EmailSubject      string           `json:"emailSubject"`
	Status            string           `json:"status"`
	CreatedDateTime   string           `json:"createdDateTime"`
	SentDateTime      string           `json:"sentDateTime"`
	DeliveredDateTime string           `json:"deliveredDateTime"`
	CompletedDateTime string           `json:"completedDateTime"`
	Sender            *RawSender       `json:"sender"`
	CustomFields      *RawCustomFields `json:"customFields"`
	Recipients        *RawRecipients   `json:"recipients"`
}

// RawSender holds the envelope sender substructure
type RawSender struct {
	Email string `json:"email"`
}

// RawCustomFields holds the custom fields substructure
type RawCustomFields struct {
	TextCustomFields []RawCustomField `json:"textCustomFields"`
}

// RawCustomField is a single text custom field
type RawCustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RawRecipients holds the recipients substructure
type RawRecipients struct {
	Signers []RawSigner `json:"signers"`
}

// RawSigner is a single signer as returned by DocuSign
type RawSigner struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Status       string `json:"status"`
	RoutingOrder string `json:"routingOrder"`
	RoleName     string `json:"roleName"`
}

// CustomField is a normalized name/value custom field
type CustomField struct {
	Name  string
	Value string
}

// Recipient is a normalized signer
type Recipient struct {
	Name         string
	Email        string
	Role         string
	RoutingOrder int
	Status       string // lowercased raw status
	Raw          string // JSON snapshot of the provider payload
}

// NormalizedEnvelope is the storage-ready form of a DocuSign envelope.
// CustomFields and Recipients are carried through so the upsert engine
// can run deal-name extraction and status derivation on them.
type NormalizedEnvelope struct {
	EnvelopeID   string
	Subject      string
	SenderEmail  string
	Status       string // lowercased raw status
	CreatedAt    *time.Time
	SentAt       *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	CustomFields []CustomField
	Recipients   []Recipient
}

// Map converts a raw DocuSign payload into a NormalizedEnvelope. It is a
// pure transform: the only failure mode is a missing envelope id, which
// is the merge key and therefore mandatory.
func Map(raw RawEnvelope) (*NormalizedEnvelope, error) {
	if strings.TrimSpace(raw.EnvelopeID) == "" {
		return nil, apperr.Validation("payload is missing envelopeId")
	}

	norm := &NormalizedEnvelope{
		EnvelopeID:  raw.EnvelopeID,
		Subject:     raw.EmailSubject,
		Status:      strings.ToLower(raw.Status),
		CreatedAt:   ParseTime(raw.CreatedDateTime),
		SentAt:      ParseTime(raw.SentDateTime),
		DeliveredAt: ParseTime(raw.DeliveredDateTime),
		CompletedAt: ParseTime(raw.CompletedDateTime),
	}

	if raw.Sender != nil {
		norm.SenderEmail = raw.Sender.Email
	}

	if raw.CustomFields != nil {
		for _, cf := range raw.CustomFields.TextCustomFields {
			norm.CustomFields = append(norm.CustomFields, CustomField{
				Name:  cf.Name,
				Value: cf.Value,
			})
		}
	}

	if raw.Recipients != nil {
		for _, s := range raw.Recipients.Signers {
			snapshot, _ := json.Marshal(s)
			norm.Recipients = append(norm.Recipients, Recipient{
				Name:         s.Name,
				Email:        s.Email,
				Role:         s.RoleName,
				RoutingOrder: parseRoutingOrder(s.RoutingOrder),
				Status:       strings.ToLower(s.Status),
				Raw:          string(snapshot),
			})
		}
	}

	return norm, nil
}

// timeLayouts covers DocuSign REST timestamps (RFC 3339 with or without
// fractional seconds) and Connect XML timestamps, which carry no zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses a DocuSign timestamp string. Absent or unparseable
// values yield nil, never an error.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseRoutingOrder(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultRoutingOrder
	}
	return n
}
