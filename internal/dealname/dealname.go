// Package dealname extracts a best-effort business label from envelope
// custom fields and subject lines. DocuSign rarely carries a dedicated
// deal field, so an ordered rule cascade recovers one from noisy text.
// The cascade is deterministic: re-running the same input always yields
// the same output, which lets deal names be recomputed by a re-sync.
package dealname

import (
	"regexp"
	"strings"

	"docusign-envelope-sync/internal/mapper"
)

// FieldMode describes how a matched custom field contributes a deal name.
type FieldMode string

const (
	// DirectValue uses the field's value verbatim as the deal name.
	DirectValue FieldMode = "direct_value"
	// CategoryValue also uses the value verbatim; the distinct mode
	// documents that the field is a categorization, not a deal name.
	CategoryValue FieldMode = "category_value"
)

// FieldRule maps a known custom field name (matched case-insensitively)
// to its extraction mode. Order matters: first populated match wins.
type FieldRule struct {
	Name string
	Mode FieldMode
}

// DefaultFieldRules lists the custom field names observed to carry deal
// names. Update as templates expose new fields.
func DefaultFieldRules() []FieldRule {
	return []FieldRule{
		{Name: "deal", Mode: DirectValue},
		{Name: "deal_name", Mode: DirectValue},
		{Name: "dealname", Mode: DirectValue},
		{Name: "custom field", Mode: DirectValue},
		{Name: "envelopetypes", Mode: CategoryValue},
	}
}

// DefaultSubjectPatterns lists the subject line patterns tried, in order,
// when no custom field produced a deal name. Each pattern captures the
// candidate label in group 1.
func DefaultSubjectPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Direct company matches
		regexp.MustCompile(`(?i)(Angiex|Vision|Morgan Mutual|AXOS|STRATA)`),

		// Company names with underscores (like STRATA_Trust)
		regexp.MustCompile(`(?i)([A-Z][A-Z_a-z\s]{3,25}?)(?:_(?:Trust|IRA|Distribution))`),

		// Company names followed by common document types
		regexp.MustCompile(`(?i)([A-Z][a-zA-Z\s]{2,20})(?:\s+(?:Subscription|Consent|Investment|Account|Distribution|Agreement|NAF))`),

		// Extract from "Complete with Docusign: Company Name"
		regexp.MustCompile(`(?i)Complete with Docusign:\s*([A-Z][a-zA-Z\s]{2,20}?)(?:\s*(?:Subscription|Consent|Agreement))`),

		// Extract from "Name: Company Action" format
		regexp.MustCompile(`(?i)[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*:\s*([A-Z][a-zA-Z\s]{2,20}?)(?:\s*(?:Subscription|Consent|Account|Distribution|Investment|Form|Agreement))`),

		// Extract from "FINAL APPROVAL: Company / Name" format
		regexp.MustCompile(`(?i)FINAL APPROVAL:\s*([A-Z][a-zA-Z\s]{2,20}?)(?:\s*/)`),

		// Extract from "Please DocuSign: Company Name"
		regexp.MustCompile(`(?i)Please DocuSign:\s*([A-Z][a-zA-Z\s]{2,20}?)(?:\s*(?:Account|Form))`),
	}
}

// DefaultStoplist lists structural words rejected as deal name candidates.
func DefaultStoplist() []string {
	return []string{"complete", "docusign", "with"}
}

// Extractor applies an ordered rule cascade to produce a deal name.
type Extractor struct {
	fieldRules      []FieldRule
	subjectPatterns []*regexp.Regexp
	stoplist        map[string]struct{}
}

// NewExtractor builds an Extractor with the default rule tables.
func NewExtractor() *Extractor {
	return NewExtractorWithRules(DefaultFieldRules(), DefaultSubjectPatterns(), DefaultStoplist())
}

// NewExtractorWithRules builds an Extractor with caller-supplied rule
// tables, keeping the naming rules swappable configuration.
func NewExtractorWithRules(fields []FieldRule, patterns []*regexp.Regexp, stoplist []string) *Extractor {
	stop := make(map[string]struct{}, len(stoplist))
	for _, w := range stoplist {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Extractor{
		fieldRules:      fields,
		subjectPatterns: patterns,
		stoplist:        stop,
	}
}

// Extract returns the deal name for the given custom fields and subject,
// or "" when no rule matched. A no-match result is expected: most
// envelopes stay unmapped until the naming rules are tuned.
func (e *Extractor) Extract(fields []mapper.CustomField, subject string) string {
	// Phase 1: custom fields, first populated match wins.
	for _, rule := range e.fieldRules {
		for _, f := range fields {
			if !strings.EqualFold(f.Name, rule.Name) {
				continue
			}
			if value := strings.TrimSpace(f.Value); value != "" {
				// DirectValue and CategoryValue both take the value verbatim.
				return value
			}
		}
	}

	// Phase 2: subject patterns, first accepted capture wins.
	for _, pattern := range e.subjectPatterns {
		m := pattern.FindStringSubmatch(subject)
		if len(m) < 2 {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if len(candidate) <= 2 {
			continue
		}
		if _, stopped := e.stoplist[strings.ToLower(candidate)]; stopped {
			continue
		}
		return candidate
	}

	return ""
}
