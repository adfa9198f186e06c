// Package webhook verifies and parses DocuSign Connect notifications.
// Connect pushes envelope status as XML; after HMAC verification the
// document is normalized into the same raw shape the polling client
// produces, so both paths share one upsert.
package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"io"

	"docusign-envelope-sync/internal/apperr"
	"docusign-envelope-sync/internal/mapper"
)

// Normalizer converts Connect notifications into raw envelope payloads.
// An empty hmacKey disables signature verification, a deliberate
// permissive default for development setups without Connect HMAC.
type Normalizer struct {
	hmacKey string
}

// New creates a Normalizer with the given shared HMAC key
func New(hmacKey string) *Normalizer {
	return &Normalizer{hmacKey: hmacKey}
}

// Normalize verifies the notification signature and parses the body.
// It returns AuthenticationError on a missing or mismatched signature
// (only when a key is configured) and ParseError when the document does
// not contain an EnvelopeStatus element.
func (n *Normalizer) Normalize(signature string, body []byte) (*mapper.RawEnvelope, error) {
	if n.hmacKey != "" {
		if signature == "" {
			return nil, apperr.Authentication("missing webhook signature")
		}
		if !verifySignature(body, signature, n.hmacKey) {
			return nil, apperr.Authentication("webhook signature mismatch")
		}
	}

	return parseConnectXML(body)
}

// ComputeSignature returns the hex HMAC-SHA256 of the payload; exported
// so webhook senders in tests can sign their payloads.
func ComputeSignature(payload []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(payload []byte, signature, key string) bool {
	expected := ComputeSignature(payload, key)
	return hmac.Equal([]byte(signature), []byte(expected))
}

type xmlSender struct {
	Email string `xml:"Email"`
}

type xmlCustomField struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

type xmlCustomFields struct {
	Fields []xmlCustomField `xml:"CustomField"`
}

type xmlRecipient struct {
	Email        string `xml:"Email"`
	UserName     string `xml:"UserName"`
	Status       string `xml:"Status"`
	RoutingOrder string `xml:"RoutingOrder"`
	RoleName     string `xml:"RoleName"`
}

type xmlRecipients struct {
	Recipients []xmlRecipient `xml:"Recipient"`
}

// envelopeStatusXML mirrors the EnvelopeStatus element of a Connect
// status notification document.
type envelopeStatusXML struct {
	EnvelopeID   string           `xml:"EnvelopeID"`
	Subject      string           `xml:"Subject"`
	Status       string           `xml:"Status"`
	Created      string           `xml:"Created"`
	Sent         string           `xml:"Sent"`
	Delivered    string           `xml:"Delivered"`
	Completed    string           `xml:"Completed"`
	Sender       *xmlSender       `xml:"Sender"`
	CustomFields *xmlCustomFields `xml:"CustomFields"`
	Recipients   *xmlRecipients   `xml:"Recipients"`
}

// parseConnectXML scans for the EnvelopeStatus element at any depth;
// Connect wraps it in a DocuSignEnvelopeInformation root.
func parseConnectXML(body []byte) (*mapper.RawEnvelope, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, &apperr.ParseError{Msg: "no EnvelopeStatus element in payload"}
		}
		if err != nil {
			return nil, &apperr.ParseError{Msg: "malformed Connect XML", Err: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "EnvelopeStatus" {
			continue
		}

		var es envelopeStatusXML
		if err := dec.DecodeElement(&es, &se); err != nil {
			return nil, &apperr.ParseError{Msg: "malformed EnvelopeStatus element", Err: err}
		}
		return toRawEnvelope(es), nil
	}
}

func toRawEnvelope(es envelopeStatusXML) *mapper.RawEnvelope {
	raw := &mapper.RawEnvelope{
		EnvelopeID:        es.EnvelopeID,
		EmailSubject:      es.Subject,
		Status:            es.Status,
		CreatedDateTime:   es.Created,
		SentDateTime:      es.Sent,
		DeliveredDateTime: es.Delivered,
		CompletedDateTime: es.Completed,
	}

	if es.Sender != nil {
		raw.Sender = &mapper.RawSender{Email: es.Sender.Email}
	}

	if es.CustomFields != nil {
		fields := make([]mapper.RawCustomField, 0, len(es.CustomFields.Fields))
		for _, f := range es.CustomFields.Fields {
			fields = append(fields, mapper.RawCustomField{Name: f.Name, Value: f.Value})
		}
		raw.CustomFields = &mapper.RawCustomFields{TextCustomFields: fields}
	}

	if es.Recipients != nil {
		signers := make([]mapper.RawSigner, 0, len(es.Recipients.Recipients))
		for _, r := range es.Recipients.Recipients {
			signers = append(signers, mapper.RawSigner{
				Name:         r.UserName,
				Email:        r.Email,
				Status:       r.Status,
				RoutingOrder: r.RoutingOrder,
				RoleName:     r.RoleName,
			})
		}
		raw.Recipients = &mapper.RawRecipients{Signers: signers}
	}

	return raw
}
