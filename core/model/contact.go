package model

import (
	"fmt"
	"strings"
)

// Gender of a recipient, as parsed from the import source.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

// String returns a human-readable representation of the gender.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// State tracks the send lifecycle of one contact.
type State int

const (
	StateIdle State = iota
	StateSending
	StateSent
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Contact represents one recipient in the working list.
//
// FullName and RawSource are fixed at import time. FirstName and Gender are
// user-editable. RecipientID is either a run of digits or empty when
// extraction failed; it never changes once resolved. State and FailReason
// are written only by the dispatch orchestrator, except for the explicit
// user reset handled by the session.
type Contact struct {
	FullName  string
	FirstName string
	Gender    Gender

	RecipientID string // empty means the ID could not be extracted
	RawSource   string

	State      State
	FailReason string
}

// NewContact builds a contact with the FirstName default applied: the first
// whitespace-delimited token of fullName, or empty when fullName is empty.
func NewContact(fullName, rawSource string) *Contact {
	c := &Contact{
		FullName:  strings.TrimSpace(fullName),
		RawSource: strings.TrimSpace(rawSource),
	}
	if fields := strings.Fields(c.FullName); len(fields) > 0 {
		c.FirstName = fields[0]
	}
	return c
}

// Resolved reports whether a recipient ID was extracted for this contact.
// Unresolved contacts can never be sent to.
func (c *Contact) Resolved() bool { return c.RecipientID != "" }

// Sendable reports whether the orchestrator may attempt a send right now.
func (c *Contact) Sendable() bool {
	return c.Resolved() && c.State != StateSending
}

// Label returns the best display value for diagnostics: the full name when
// present, otherwise the raw source text.
func (c *Contact) Label() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.RawSource
}

// Validate checks that the contact carries at least one identifying field.
func (c *Contact) Validate() error {
	if c.FullName == "" && c.RawSource == "" {
		return fmt.Errorf("contact has neither a name nor a source")
	}
	return nil
}
