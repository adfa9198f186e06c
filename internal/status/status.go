// Package status derives the coarse application status reported to deal
// tracking from the raw DocuSign envelope status and signer progress.
package status

import "strings"

// Application statuses derived from envelope and recipient state.
const (
	Draft              = "Draft"
	AwaitingCustomer   = "Awaiting Customer"
	PartiallySigned    = "Partially Signed"
	AwaitingProcessing = "Awaiting Processing"
	Completed          = "Completed"
	Declined           = "Declined"
	Cancelled          = "Cancelled"
)

// Derive maps a raw envelope status plus the recipient status list to an
// application status. It is total: every input yields a status, never an
// error. recipientStatuses are the per-signer raw statuses; comparison is
// case-insensitive.
func Derive(envStatus string, recipientStatuses []string) string {
	switch strings.ToLower(envStatus) {
	case "voided":
		return Cancelled
	case "declined":
		return Declined
	case "completed":
		return Completed
	case "sent", "delivered":
		signed := 0
		for _, s := range recipientStatuses {
			if strings.EqualFold(s, "completed") {
				signed++
			}
		}
		// Zero recipients counts as "no one has signed", not an error.
		switch {
		case signed == 0:
			return AwaitingCustomer
		case signed < len(recipientStatuses):
			return PartiallySigned
		default:
			return AwaitingProcessing
		}
	default:
		return Draft
	}
}
