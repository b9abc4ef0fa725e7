package wizard

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"formationdesk/backend/models"
)

// Step indexes of the formation wizard.
const (
	StepJurisdiction = iota
	StepIdentity
	StepAddresses
	StepPeople
	StepContact
	StepAccount
	StepServices
	StepPayment

	FirstStep = StepJurisdiction
	LastStep  = StepPayment
)

const minPasswordLength = 8

// emailRe is deliberately permissive: one @, no whitespace, a dot in the domain.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule reports whether a step's data is complete.
type Rule func(models.IntakeRecord) bool

// Rules holds one gate per step, indexed by step.
var Rules = [LastStep + 1]Rule{
	StepJurisdiction: jurisdictionComplete,
	StepIdentity:     identityComplete,
	StepAddresses:    addressesComplete,
	StepPeople:       peopleComplete,
	StepContact:      contactComplete,
	StepAccount:      accountComplete,
	StepServices:     always,
	StepPayment:      always,
}

// CanProceed evaluates the gate for step. Out-of-range steps never proceed.
func CanProceed(step int, rec models.IntakeRecord) bool {
	if step < FirstStep || step > LastStep {
		return false
	}
	return Rules[step](rec)
}

// ValidEmail applies the wizard's email syntax check.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func jurisdictionComplete(rec models.IntakeRecord) bool {
	return present(rec.Jurisdiction)
}

func identityComplete(rec models.IntakeRecord) bool {
	return present(rec.EntityName) && present(rec.PurposeStatement)
}

func addressComplete(a models.Address) bool {
	if a.UseAgentService {
		return true
	}
	return present(a.Street) && present(a.City) && present(a.Region) && present(a.PostalCode)
}

func addressesComplete(rec models.IntakeRecord) bool {
	mailing := rec.MailingMirrorsPhysical || addressComplete(rec.MailingAddress)
	return addressComplete(rec.PhysicalAddress) && mailing
}

func personComplete(p models.Person) bool {
	return present(p.FirstName) && present(p.LastName) && ValidEmail(p.Email) &&
		present(p.Phone) && present(p.Address)
}

// Managers are not part of this gate, even for manager-managed entities.
func peopleComplete(rec models.IntakeRecord) bool {
	if len(rec.Owners) == 0 {
		return false
	}
	for _, o := range rec.Owners {
		if !personComplete(o) {
			return false
		}
	}
	return true
}

func contactComplete(rec models.IntakeRecord) bool {
	return ValidEmail(rec.PrimaryContact.Email) && present(rec.PrimaryContact.Phone)
}

func accountComplete(rec models.IntakeRecord) bool {
	c := rec.AccountCredentials
	return ValidEmail(c.Email) && utf8.RuneCountInString(c.Password) >= minPasswordLength && c.Password == c.PasswordConfirmation
}

func always(models.IntakeRecord) bool { return true }
