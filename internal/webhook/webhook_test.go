package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docusign-envelope-sync/internal/apperr"
	"docusign-envelope-sync/internal/mapper"
)

const connectPayload = `<?xml version="1.0" encoding="utf-8"?>
<DocuSignEnvelopeInformation xmlns="http://www.docusign.net/API/3.0">
  <EnvelopeStatus>
    <EnvelopeID>E1</EnvelopeID>
    <Subject>Complete with Docusign: Acme Corp Subscription</Subject>
    <Status>Sent</Status>
    <Created>2024-03-01T09:00:00.527</Created>
    <Sent>2024-03-01T09:05:00.527</Sent>
    <Sender>
      <Email>ops@paulson.example</Email>
    </Sender>
    <CustomFields>
      <CustomField>
        <Name>deal</Name>
        <Value>Project X</Value>
      </CustomField>
    </CustomFields>
    <Recipients>
      <Recipient>
        <Email>ann@example.com</Email>
        <UserName>Ann Smith</UserName>
        <Status>Sent</Status>
        <RoutingOrder>1</RoutingOrder>
        <RoleName>Signer</RoleName>
      </Recipient>
    </Recipients>
  </EnvelopeStatus>
</DocuSignEnvelopeInformation>`

func TestNormalizeWithoutSecretSkipsVerification(t *testing.T) {
	n := New("")

	raw, err := n.Normalize("", []byte(connectPayload))
	require.NoError(t, err)
	assert.Equal(t, "E1", raw.EnvelopeID)
}

func TestNormalizeValidSignature(t *testing.T) {
	body := []byte(connectPayload)
	n := New("shared-secret")

	raw, err := n.Normalize(ComputeSignature(body, "shared-secret"), body)
	require.NoError(t, err)
	assert.Equal(t, "E1", raw.EnvelopeID)
	assert.Equal(t, "Sent", raw.Status)
}

func TestNormalizeInvalidSignature(t *testing.T) {
	body := []byte(connectPayload)
	n := New("shared-secret")

	var authErr *apperr.AuthenticationError

	_, err := n.Normalize(ComputeSignature(body, "wrong-secret"), body)
	assert.ErrorAs(t, err, &authErr)

	// Missing signature is rejected the same way when a key is configured
	_, err = n.Normalize("", body)
	assert.ErrorAs(t, err, &authErr)
}

func TestNormalizeMissingEnvelopeStatus(t *testing.T) {
	n := New("")

	var parseErr *apperr.ParseError

	_, err := n.Normalize("", []byte(`<SomethingElse><Foo/></SomethingElse>`))
	assert.ErrorAs(t, err, &parseErr)

	_, err = n.Normalize("", []byte(`this is not xml at all <<<`))
	assert.ErrorAs(t, err, &parseErr)
}

func TestNormalizeParsesAllFields(t *testing.T) {
	n := New("")

	raw, err := n.Normalize("", []byte(connectPayload))
	require.NoError(t, err)

	assert.Equal(t, "Complete with Docusign: Acme Corp Subscription", raw.EmailSubject)
	assert.Equal(t, "2024-03-01T09:00:00.527", raw.CreatedDateTime)
	require.NotNil(t, raw.Sender)
	assert.Equal(t, "ops@paulson.example", raw.Sender.Email)

	require.NotNil(t, raw.CustomFields)
	require.Len(t, raw.CustomFields.TextCustomFields, 1)
	assert.Equal(t, "deal", raw.CustomFields.TextCustomFields[0].Name)
	assert.Equal(t, "Project X", raw.CustomFields.TextCustomFields[0].Value)

	require.NotNil(t, raw.Recipients)
	require.Len(t, raw.Recipients.Signers, 1)
	assert.Equal(t, "Ann Smith", raw.Recipients.Signers[0].Name)
	assert.Equal(t, "1", raw.Recipients.Signers[0].RoutingOrder)
}

// A Connect notification and a polling payload describing the same
// underlying envelope must normalize to identical stored rows.
func TestWebhookAndPollingPayloadsConverge(t *testing.T) {
	n := New("")

	fromWebhook, err := n.Normalize("", []byte(connectPayload))
	require.NoError(t, err)

	fromPolling := mapper.RawEnvelope{
		EnvelopeID:      "E1",
		EmailSubject:    "Complete with Docusign: Acme Corp Subscription",
		Status:          "Sent",
		CreatedDateTime: "2024-03-01T09:00:00.527",
		SentDateTime:    "2024-03-01T09:05:00.527",
		Sender:          &mapper.RawSender{Email: "ops@paulson.example"},
		CustomFields: &mapper.RawCustomFields{TextCustomFields: []mapper.RawCustomField{
			{Name: "deal", Value: "Project X"},
		}},
		Recipients: &mapper.RawRecipients{Signers: []mapper.RawSigner{
			{Name: "Ann Smith", Email: "ann@example.com", Status: "Sent", RoutingOrder: "1", RoleName: "Signer"},
		}},
	}

	normWebhook, err := mapper.Map(*fromWebhook)
	require.NoError(t, err)
	normPolling, err := mapper.Map(fromPolling)
	require.NoError(t, err)

	assert.Equal(t, normPolling, normWebhook)
}
