package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vkblast/vkblast/core/model"
)

// ErrBulkInProgress is returned when a bulk send is started while another
// one is still running on the same session.
var ErrBulkInProgress = errors.New("dispatch: bulk send already in progress")

// Session is the working set of one import: the contact list, the access
// token and the bulk-run flag. It is created from an import, lives until an
// explicit Clear and is the only shared mutable state of the engine.
//
// Contact state is written by the orchestrator only; the explicit user
// actions below (edits, reset, removal) are the one exception.
type Session struct {
	mu       sync.Mutex
	contacts []*model.Contact
	token    string
	bulk     bool
}

// NewSession creates a session owning the given contacts.
func NewSession(contacts []*model.Contact) *Session {
	return &Session{contacts: contacts}
}

// SetToken stores the opaque access token used for all sends.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Token returns the current access token.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// HasToken reports whether a non-blank token is set.
func (s *Session) HasToken() bool {
	return strings.TrimSpace(s.Token()) != ""
}

// Len returns the number of contacts in the working list.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

// Contact returns the contact at index i.
func (s *Session) Contact(i int) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.contacts) {
		return nil, fmt.Errorf("contact index %d out of range", i)
	}
	return s.contacts[i], nil
}

// Snapshot returns a copy of the contact list. A bulk run iterates the
// snapshot so concurrent removals cannot shift it mid-run; the contacts
// themselves are shared, so state written during the run stays visible.
func (s *Session) Snapshot() []*model.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Contact(nil), s.contacts...)
}

// SetFirstName applies a user edit to the contact's first name. The full
// name is never touched and re-imports never overwrite the edit.
func (s *Session) SetFirstName(i int, name string) error {
	c, err := s.Contact(i)
	if err != nil {
		return err
	}
	c.FirstName = strings.TrimSpace(name)
	return nil
}

// SetGender applies a user edit to the contact's gender.
func (s *Session) SetGender(i int, g model.Gender) error {
	c, err := s.Contact(i)
	if err != nil {
		return err
	}
	c.Gender = g
	return nil
}

// ResetState is the explicit user toggle returning a Sent or Failed contact
// to Idle so it can be sent again. An in-flight contact is never resettable.
// Unresolved contacts keep their failure: they can never be sent.
func (s *Session) ResetState(i int) error {
	c, err := s.Contact(i)
	if err != nil {
		return err
	}
	if c.State == model.StateSending {
		return fmt.Errorf("contact %s is being sent", c.Label())
	}
	if !c.Resolved() {
		return fmt.Errorf("contact %s has no recipient ID", c.Label())
	}
	c.State = model.StateIdle
	c.FailReason = ""
	return nil
}

// Remove deletes the contact at index i from the working list.
func (s *Session) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.contacts) {
		return fmt.Errorf("contact index %d out of range", i)
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	return nil
}

// Clear empties the working list, ending the session's useful life.
func (s *Session) Clear() {
	s.mu.Lock()
	s.contacts = nil
	s.mu.Unlock()
}

// Busy reports whether a bulk run is in progress. Callers use it to disable
// the bulk action while one is running.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulk
}

func (s *Session) beginBulk() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bulk {
		return ErrBulkInProgress
	}
	s.bulk = true
	return nil
}

func (s *Session) endBulk() {
	s.mu.Lock()
	s.bulk = false
	s.mu.Unlock()
}
