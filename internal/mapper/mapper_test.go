package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docusign-envelope-sync/internal/apperr"
)

func TestMapRequiresEnvelopeID(t *testing.T) {
	_, err := Map(RawEnvelope{Status: "sent"})
	require.Error(t, err)

	var verr *apperr.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = Map(RawEnvelope{EnvelopeID: "   "})
	assert.ErrorAs(t, err, &verr)
}

func TestMapFullPayload(t *testing.T) {
	raw := RawEnvelope{
		EnvelopeID:        "11111111-2222-3333-4444-555555555555",
		EmailSubject:      "Acme Corp Subscription",
		Status:            "Sent",
		CreatedDateTime:   "2024-03-01T09:00:00Z",
		SentDateTime:      "2024-03-01T09:05:00.1234567Z",
		DeliveredDateTime: "",
		CompletedDateTime: "not a timestamp",
		Sender:            &RawSender{Email: "ops@paulson.example"},
		CustomFields: &RawCustomFields{TextCustomFields: []RawCustomField{
			{Name: "deal", Value: "Project X"},
		}},
		Recipients: &RawRecipients{Signers: []RawSigner{
			{Name: "Ann Smith", Email: "ann@example.com", Status: "Sent", RoutingOrder: "1", RoleName: "Signer"},
			{Name: "Bob Jones", Email: "bob@example.com", Status: "Completed", RoutingOrder: ""},
		}},
	}

	norm, err := Map(raw)
	require.NoError(t, err)

	assert.Equal(t, "11111111-2222-3333-4444-555555555555", norm.EnvelopeID)
	assert.Equal(t, "Acme Corp Subscription", norm.Subject)
	assert.Equal(t, "ops@paulson.example", norm.SenderEmail)

	// Raw status is lowercased for storage uniformity
	assert.Equal(t, "sent", norm.Status)

	require.NotNil(t, norm.CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), *norm.CreatedAt)
	require.NotNil(t, norm.SentAt)

	// Absent and unparseable timestamps become nil, never errors
	assert.Nil(t, norm.DeliveredAt)
	assert.Nil(t, norm.CompletedAt)

	require.Len(t, norm.CustomFields, 1)
	assert.Equal(t, "deal", norm.CustomFields[0].Name)

	require.Len(t, norm.Recipients, 2)
	assert.Equal(t, "sent", norm.Recipients[0].Status)
	assert.Equal(t, 1, norm.Recipients[0].RoutingOrder)
	assert.Equal(t, "Signer", norm.Recipients[0].Role)
	assert.NotEmpty(t, norm.Recipients[0].Raw)

	// Missing routing order falls back to the unordered sentinel
	assert.Equal(t, DefaultRoutingOrder, norm.Recipients[1].RoutingOrder)
}

func TestMapMinimalPayload(t *testing.T) {
	norm, err := Map(RawEnvelope{EnvelopeID: "E1"})
	require.NoError(t, err)

	assert.Equal(t, "E1", norm.EnvelopeID)
	assert.Empty(t, norm.Status)
	assert.Empty(t, norm.Subject)
	assert.Empty(t, norm.SenderEmail)
	assert.Nil(t, norm.CreatedAt)
	assert.Empty(t, norm.Recipients)
	assert.Empty(t, norm.CustomFields)
}

func TestParseTime(t *testing.T) {
	// RFC 3339 with zone
	got := ParseTime("2024-01-02T03:04:05Z")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), *got)

	// Offset zones are normalized to UTC
	got = ParseTime("2024-01-02T05:04:05+02:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), *got)

	// Connect XML carries no zone
	got = ParseTime("2024-01-02T03:04:05.527")
	require.NotNil(t, got)
	assert.Equal(t, 2024, got.Year())

	assert.Nil(t, ParseTime(""))
	assert.Nil(t, ParseTime("  "))
	assert.Nil(t, ParseTime("2024-13-99"))
	assert.Nil(t, ParseTime("yesterday"))
}

func TestParseRoutingOrder(t *testing.T) {
	assert.Equal(t, 2, parseRoutingOrder("2"))
	assert.Equal(t, 2, parseRoutingOrder(" 2 "))
	assert.Equal(t, DefaultRoutingOrder, parseRoutingOrder(""))
	assert.Equal(t, DefaultRoutingOrder, parseRoutingOrder("first"))
}
