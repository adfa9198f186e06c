package dealname

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"docusign-envelope-sync/internal/mapper"
)

func field(name, value string) mapper.CustomField {
	return mapper.CustomField{Name: name, Value: value}
}

func TestExtractFromCustomField(t *testing.T) {
	e := NewExtractor()

	got := e.Extract([]mapper.CustomField{field("deal", "Project X")}, "")
	assert.Equal(t, "Project X", got)

	// Field names match case-insensitively
	got = e.Extract([]mapper.CustomField{field("Deal_Name", "Morgan Mutual")}, "")
	assert.Equal(t, "Morgan Mutual", got)

	// category_value fields contribute too
	got = e.Extract([]mapper.CustomField{field("envelopeTypes", "Distribution")}, "")
	assert.Equal(t, "Distribution", got)
}

func TestExtractCustomFieldWinsOverSubject(t *testing.T) {
	e := NewExtractor()

	fields := []mapper.CustomField{field("deal", "Project X")}
	subject := "Complete with Docusign: Acme Corp Subscription"

	// The subject would match a pattern, but the field phase short-circuits
	assert.Equal(t, "Project X", e.Extract(fields, subject))
}

func TestExtractEmptyFieldValueSkipped(t *testing.T) {
	e := NewExtractor()

	fields := []mapper.CustomField{
		field("deal", "   "),
		field("unrelated", "ignored"),
	}
	subject := "Complete with Docusign: Acme Corp Subscription"

	// Blank values are skipped, not treated as matches
	assert.Equal(t, "Acme Corp", e.Extract(fields, subject))
}

func TestExtractFromSubjectPattern(t *testing.T) {
	e := NewExtractor()

	assert.Equal(t, "Acme Corp", e.Extract(nil, "Complete with Docusign: Acme Corp Subscription"))
	assert.Equal(t, "Angiex", e.Extract(nil, "Please sign the Angiex documents"))
}

func TestExtractStoplistRejected(t *testing.T) {
	e := NewExtractor()

	// "Docusign" would be captured by the document-type pattern but is a
	// structural word, not a deal
	assert.Equal(t, "", e.Extract(nil, "Docusign Agreement"))
}

func TestExtractNoMatchIsEmpty(t *testing.T) {
	e := NewExtractor()

	assert.Equal(t, "", e.Extract(nil, ""))
	assert.Equal(t, "", e.Extract(nil, "re: hi"))
	assert.Equal(t, "", e.Extract(nil, "12345 67890"))
}

func TestExtractNeverPanics(t *testing.T) {
	e := NewExtractor()

	subjects := []string{
		"",
		strings.Repeat("A very long subject ", 500),
		"契約書に署名してください",
		"émile & cie — Consent",
		"\x00\x01 binary-ish \xff",
	}

	for _, subject := range subjects {
		got := e.Extract(nil, subject)
		if got != "" {
			assert.Greater(t, len(strings.TrimSpace(got)), 2)
			assert.Equal(t, got, strings.TrimSpace(got))
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor()
	subject := "FINAL APPROVAL: Vision Fund / Smith"

	first := e.Extract(nil, subject)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract(nil, subject))
	}
}

func TestExtractCustomRules(t *testing.T) {
	// Rule tables are injectable so naming rules can be tuned without
	// touching the cascade
	e := NewExtractorWithRules(
		[]FieldRule{{Name: "opportunity", Mode: DirectValue}},
		[]*regexp.Regexp{regexp.MustCompile(`(?i)Re:\s*(\w{3,})`)},
		[]string{"urgent"},
	)

	assert.Equal(t, "Northwind", e.Extract([]mapper.CustomField{field("Opportunity", "Northwind")}, ""))
	assert.Equal(t, "Contoso", e.Extract(nil, "Re: Contoso renewal"))
	assert.Equal(t, "", e.Extract(nil, "Re: urgent"))
}
