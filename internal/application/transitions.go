// Package application implements the job-application lifecycle.
//
// Status graph:
//
//	applied ◄──► interview ◄──► offer
//	   │             │            │
//	   ├─────────────┴────────────┴──► not selected
//	   └──► withdrawn ──► not selected
//
// Companies move an application freely between applied, interview and
// offer (screening is not a one-way pipeline) or close it as not
// selected. Only the applicant can withdraw; a withdrawn application can
// still be closed as not selected. "not selected" is terminal.
package application

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusInterview   Status = "interview"
	StatusOffer       Status = "offer"
	StatusNotSelected Status = "not selected"
	StatusWithdrawn   Status = "withdrawn"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusApplied:   {StatusInterview, StatusOffer, StatusNotSelected, StatusWithdrawn},
	StatusInterview: {StatusApplied, StatusOffer, StatusNotSelected, StatusWithdrawn},
	StatusOffer:     {StatusApplied, StatusInterview, StatusNotSelected, StatusWithdrawn},
	StatusWithdrawn: {StatusNotSelected},
	// not selected is terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusApplied, StatusInterview, StatusOffer, StatusNotSelected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by
// the status graph.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsWithdrawn reports whether status is the applicant-initiated exit.
// Only the applicant may move an application here.
func IsWithdrawn(s Status) bool { return s == StatusWithdrawn }
