// Package wizard holds the formation intake wizard: the per-step gates and
// the session state machine that the HTTP layer drives.
//
// The session never enforces its own gates. Callers check CanProceed and call
// TriggerValidation instead of Next when the current step is incomplete.
package wizard

import (
	"bytes"
	"encoding/json"
	"time"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/models"
)

var (
	ErrLastOwner = apperrors.New(apperrors.CodeLastOwner, "At least one owner is required")
)

// Session is one customer's in-progress intake.
type Session struct {
	ID                   string              `json:"id"`
	Record               models.IntakeRecord `json:"record"`
	Step                 int                 `json:"step"`
	ShowValidationErrors bool                `json:"show_validation_errors"`
	PendingTxRef         string              `json:"pending_tx_ref,omitempty"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// NewSession starts an empty intake with a single blank owner.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Record:    blankRecord(),
		UpdatedAt: time.Now().UTC(),
	}
}

func blankRecord() models.IntakeRecord {
	return models.IntakeRecord{
		ManagementMode:   models.MemberManaged,
		Owners:           []models.Person{{}},
		Managers:         []models.Person{},
		SelectedServices: map[string]bool{},
	}
}

// Clone returns an independent copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Record = s.Record.Clone()
	return &out
}

// CanProceed evaluates the gate of the current step.
func (s *Session) CanProceed() bool {
	return CanProceed(s.Step, s.Record)
}

// Merge applies a partial JSON update to the record. Objects merge field by
// field, arrays replace. The update is all-or-nothing.
func (s *Session) Merge(patch json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidPatch, "Invalid update", err)
	}
	next := s.Record.Clone()
	// encoding/json decodes into existing slice elements; start lists afresh.
	if _, ok := fields["owners"]; ok {
		next.Owners = nil
	}
	if _, ok := fields["managers"]; ok {
		next.Managers = nil
	}
	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidPatch, "Invalid update", err)
	}
	next.AccountCredentials.PasswordHash = ""
	if next.SelectedServices == nil {
		next.SelectedServices = map[string]bool{}
	}
	if next.Managers == nil {
		next.Managers = []models.Person{}
	}
	s.Record = next
	s.edited()
	return nil
}

// edited restores record invariants after any field edit.
func (s *Session) edited() {
	if len(s.Record.Owners) == 0 {
		s.Record.Owners = []models.Person{{}}
	}
	if s.Record.MailingMirrorsPhysical {
		s.Record.MailingAddress = s.Record.PhysicalAddress
	}
	s.ShowValidationErrors = false
	s.UpdatedAt = time.Now().UTC()
}

// Next moves forward one step, clamped to the last step.
func (s *Session) Next() {
	s.moveTo(s.Step + 1)
}

// Previous moves back one step, clamped to the first step.
func (s *Session) Previous() {
	s.moveTo(s.Step - 1)
}

// GoTo jumps directly to index.
func (s *Session) GoTo(index int) error {
	if index < FirstStep || index > LastStep {
		return apperrors.New(apperrors.CodeStepOutOfRange, "Unknown step")
	}
	s.moveTo(index)
	return nil
}

func (s *Session) moveTo(index int) {
	s.Step = min(max(index, FirstStep), LastStep)
	s.ShowValidationErrors = false
	s.UpdatedAt = time.Now().UTC()
}

// TriggerValidation reveals per-field errors without moving.
func (s *Session) TriggerValidation() {
	s.ShowValidationErrors = true
}

// Reset discards everything collected so far.
func (s *Session) Reset() {
	s.Record = blankRecord()
	s.Step = FirstStep
	s.ShowValidationErrors = false
	s.PendingTxRef = ""
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) AddOwner() {
	s.Record.Owners = append(s.Record.Owners, models.Person{})
	s.edited()
}

// RemoveOwner drops the owner at index. Removing the last owner is rejected.
func (s *Session) RemoveOwner(index int) error {
	if index < 0 || index >= len(s.Record.Owners) {
		return apperrors.New(apperrors.CodePersonIndexOutOfRange, "No owner at that position")
	}
	if len(s.Record.Owners) == 1 {
		return ErrLastOwner
	}
	s.Record.Owners = append(s.Record.Owners[:index:index], s.Record.Owners[index+1:]...)
	s.edited()
	return nil
}

func (s *Session) AddManager() {
	s.Record.Managers = append(s.Record.Managers, models.Person{})
	s.edited()
}

func (s *Session) RemoveManager(index int) error {
	if index < 0 || index >= len(s.Record.Managers) {
		return apperrors.New(apperrors.CodePersonIndexOutOfRange, "No manager at that position")
	}
	s.Record.Managers = append(s.Record.Managers[:index:index], s.Record.Managers[index+1:]...)
	s.edited()
	return nil
}
