package wizard

import (
	"encoding/json"
	"errors"
	"testing"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/models"
)

func TestNewSessionHasOneOwner(t *testing.T) {
	s := NewSession("abc")
	if len(s.Record.Owners) != 1 {
		t.Fatalf("expected one blank owner, got %d", len(s.Record.Owners))
	}
	if s.Step != FirstStep || s.ShowValidationErrors {
		t.Fatalf("unexpected initial state: %+v", s)
	}
}

func TestNavigationClampsAndClearsFlag(t *testing.T) {
	s := NewSession("abc")
	s.Previous()
	if s.Step != FirstStep {
		t.Fatalf("expected clamp at %d, got %d", FirstStep, s.Step)
	}
	for i := 0; i < 20; i++ {
		s.Next()
	}
	if s.Step != LastStep {
		t.Fatalf("expected clamp at %d, got %d", LastStep, s.Step)
	}

	s.TriggerValidation()
	s.Previous()
	if s.ShowValidationErrors {
		t.Fatal("expected navigation to clear validation flag")
	}
	if s.Step != LastStep-1 {
		t.Fatalf("expected step %d, got %d", LastStep-1, s.Step)
	}
}

func TestGoTo(t *testing.T) {
	s := NewSession("abc")
	if err := s.GoTo(StepContact); err != nil {
		t.Fatalf("go to: %v", err)
	}
	if s.Step != StepContact {
		t.Fatalf("expected step %d, got %d", StepContact, s.Step)
	}
	err := s.GoTo(LastStep + 1)
	if apperrors.CodeOf(err) != apperrors.CodeStepOutOfRange {
		t.Fatalf("expected out of range error, got %v", err)
	}
	if s.Step != StepContact {
		t.Fatal("expected failed jump to leave step unchanged")
	}
}

func TestMergeClearsValidationFlag(t *testing.T) {
	s := NewSession("abc")
	s.TriggerValidation()
	if err := s.Merge(json.RawMessage(`{"entity_name":"Acme LLC"}`)); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if s.ShowValidationErrors {
		t.Fatal("expected edit to clear validation flag")
	}
	if s.Record.EntityName != "Acme LLC" {
		t.Fatalf("expected entity name to merge, got %q", s.Record.EntityName)
	}
}

func TestMergeIsPartial(t *testing.T) {
	s := NewSession("abc")
	mustMerge(t, s, `{"physical_address":{"street":"1 Main St","city":"Cheyenne"}}`)
	mustMerge(t, s, `{"physical_address":{"region":"WY"},"selected_services":{"ein":true}}`)
	mustMerge(t, s, `{"selected_services":{"website":true}}`)

	a := s.Record.PhysicalAddress
	if a.Street != "1 Main St" || a.City != "Cheyenne" || a.Region != "WY" {
		t.Fatalf("expected nested fields to merge, got %+v", a)
	}
	if !s.Record.SelectedServices["ein"] || !s.Record.SelectedServices["website"] {
		t.Fatalf("expected service selections to merge, got %v", s.Record.SelectedServices)
	}
}

func TestMergeRejectsInvalidPatchAtomically(t *testing.T) {
	s := NewSession("abc")
	mustMerge(t, s, `{"entity_name":"Acme LLC"}`)
	err := s.Merge(json.RawMessage(`{"entity_name":"Other","bogus_field":1}`))
	if apperrors.CodeOf(err) != apperrors.CodeInvalidPatch {
		t.Fatalf("expected invalid patch error, got %v", err)
	}
	if s.Record.EntityName != "Acme LLC" {
		t.Fatalf("expected record unchanged, got %q", s.Record.EntityName)
	}
}

func TestMergeReplacesOwnerList(t *testing.T) {
	s := NewSession("abc")
	mustMerge(t, s, `{"owners":[{"first_name":"Ada","email":"ada@example.com"},{"first_name":"Grace"}]}`)
	mustMerge(t, s, `{"owners":[{"first_name":"Linus"}]}`)
	if len(s.Record.Owners) != 1 {
		t.Fatalf("expected one owner, got %d", len(s.Record.Owners))
	}
	if got := s.Record.Owners[0]; got.FirstName != "Linus" || got.Email != "" {
		t.Fatalf("expected owner list to be replaced, got %+v", got)
	}
}

func TestOwnersNeverEmpty(t *testing.T) {
	s := NewSession("abc")
	mustMerge(t, s, `{"owners":[]}`)
	if len(s.Record.Owners) != 1 {
		t.Fatalf("expected a blank owner to be re-added, got %d", len(s.Record.Owners))
	}

	err := s.RemoveOwner(0)
	if !errors.Is(err, ErrLastOwner) {
		t.Fatalf("expected last owner error, got %v", err)
	}

	s.AddOwner()
	if err := s.RemoveOwner(0); err != nil {
		t.Fatalf("remove owner: %v", err)
	}
	if len(s.Record.Owners) != 1 {
		t.Fatalf("expected one owner left, got %d", len(s.Record.Owners))
	}
	if err := s.RemoveOwner(5); apperrors.CodeOf(err) != apperrors.CodePersonIndexOutOfRange {
		t.Fatalf("expected index error, got %v", err)
	}
}

func TestManagersMayBeEmpty(t *testing.T) {
	s := NewSession("abc")
	s.AddManager()
	if err := s.RemoveManager(0); err != nil {
		t.Fatalf("remove manager: %v", err)
	}
	if len(s.Record.Managers) != 0 {
		t.Fatalf("expected no managers, got %d", len(s.Record.Managers))
	}
}

func TestMailingMirrorsPhysical(t *testing.T) {
	s := NewSession("abc")
	mustMerge(t, s, `{"physical_address":{"street":"1 Main St"},"mailing_mirrors_physical":true}`)
	if s.Record.MailingAddress.Street != "1 Main St" {
		t.Fatalf("expected mailing to mirror when flag turns on, got %+v", s.Record.MailingAddress)
	}

	mustMerge(t, s, `{"physical_address":{"city":"Cheyenne"}}`)
	if s.Record.MailingAddress != s.Record.PhysicalAddress {
		t.Fatalf("expected mailing to follow physical edit, got %+v", s.Record.MailingAddress)
	}

	mustMerge(t, s, `{"mailing_mirrors_physical":false}`)
	mustMerge(t, s, `{"physical_address":{"city":"Casper"}}`)
	if s.Record.MailingAddress.City != "Cheyenne" {
		t.Fatalf("expected mailing frozen at last mirrored value, got %q", s.Record.MailingAddress.City)
	}
}

func TestNextGateScenarioZeroOwners(t *testing.T) {
	s := NewSession("abc")
	if err := s.GoTo(StepPeople); err != nil {
		t.Fatalf("go to: %v", err)
	}
	s.Record.Owners = nil

	// The caller's side of the contract: trigger validation instead of moving.
	if s.CanProceed() {
		t.Fatal("expected gate to fail with zero owners")
	}
	s.TriggerValidation()

	if s.Step != StepPeople {
		t.Fatalf("expected step to stay at %d, got %d", StepPeople, s.Step)
	}
	if !s.ShowValidationErrors {
		t.Fatal("expected validation errors to be shown")
	}
	if _, ok := FieldErrors(s.Step, s.Record)["owners"]; !ok {
		t.Fatal("expected owner-count error")
	}
}

func TestResetAndClone(t *testing.T) {
	s := NewSession("abc")
	mustMerge(t, s, `{"entity_name":"Acme LLC","selected_services":{"ein":true}}`)
	s.Next()
	s.PendingTxRef = "FD-1"

	c := s.Clone()
	c.Record.SelectedServices["ein"] = false
	if !s.Record.SelectedServices["ein"] {
		t.Fatal("expected clone not to alias services map")
	}

	s.Reset()
	if s.Step != FirstStep || s.Record.EntityName != "" || s.PendingTxRef != "" {
		t.Fatalf("expected reset session, got %+v", s)
	}
	if len(s.Record.Owners) != 1 {
		t.Fatal("expected reset to keep one blank owner")
	}
	if s.ID != "abc" {
		t.Fatal("expected reset to keep the session id")
	}
}

func TestRecordRedactedDropsPlaintext(t *testing.T) {
	rec := models.IntakeRecord{AccountCredentials: models.Credentials{
		Email: "a@b.co", Password: "secret123", PasswordConfirmation: "secret123",
	}}
	red := rec.Redacted("hash")
	if red.AccountCredentials.Password != "" || red.AccountCredentials.PasswordConfirmation != "" {
		t.Fatal("expected plaintext password to be dropped")
	}
	if red.AccountCredentials.PasswordHash != "hash" {
		t.Fatal("expected hash to be set")
	}
	if rec.AccountCredentials.Password != "secret123" {
		t.Fatal("expected original record untouched")
	}
}

func mustMerge(t *testing.T, s *Session, patch string) {
	t.Helper()
	if err := s.Merge(json.RawMessage(patch)); err != nil {
		t.Fatalf("merge %s: %v", patch, err)
	}
}
