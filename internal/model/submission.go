package model

import "time"

// Submission is the canonical form submission after alias resolution.
// Every field is present (possibly empty); downstream code never checks
// for missing keys.
type Submission struct {
	FirstName      string            `json:"firstName" validate:"required"`
	LastName       string            `json:"lastName"`
	Email          string            `json:"email" validate:"required_without=Phone"`
	Phone          string            `json:"phone"`
	Message        string            `json:"message"`
	CallbackWindow string            `json:"callbackWindow"`
	Plan           string            `json:"plan"`
	Term           string            `json:"term"`
	Newsletter     bool              `json:"newsletter"`
	FormType       string            `json:"formType"`
	Custom         map[string]string `json:"custom,omitempty"`
}

// FullName joins first and last name for account naming.
func (s Submission) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// AuditRecord is one line of the append-only submission log.
type AuditRecord struct {
	Time       time.Time  `json:"time"`
	Submission Submission `json:"submission"`
	Raw        string     `json:"raw"`
}

// RelayResult aggregates the remote records created for one submission.
// Account and Subscription are nil unless the plan step ran.
type RelayResult struct {
	Person       map[string]any
	Account      map[string]any
	Subscription map[string]any
}
