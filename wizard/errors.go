package wizard

import (
	"fmt"
	"unicode/utf8"

	"formationdesk/backend/models"
)

// FieldErrors returns inline messages for the fields of step that are
// currently incomplete, keyed by field path. Hints that do not block the
// gate (managers for manager-managed entities) are included too.
func FieldErrors(step int, rec models.IntakeRecord) map[string]string {
	errs := map[string]string{}
	switch step {
	case StepJurisdiction:
		if !present(rec.Jurisdiction) {
			errs["jurisdiction"] = "Select a state of formation"
		}
	case StepIdentity:
		if !present(rec.EntityName) {
			errs["entity_name"] = "Entity name is required"
		}
		if !present(rec.PurposeStatement) {
			errs["purpose_statement"] = "Business purpose is required"
		}
	case StepAddresses:
		addressErrors(errs, "physical_address", rec.PhysicalAddress)
		if !rec.MailingMirrorsPhysical {
			addressErrors(errs, "mailing_address", rec.MailingAddress)
		}
	case StepPeople:
		if len(rec.Owners) == 0 {
			errs["owners"] = "At least one owner is required"
		}
		for i, o := range rec.Owners {
			personErrors(errs, fmt.Sprintf("owners[%d]", i), o)
		}
		if rec.ManagementMode == models.ManagerManaged && len(rec.Managers) == 0 {
			errs["managers"] = "Manager-managed entities usually list at least one manager"
		}
	case StepContact:
		if !ValidEmail(rec.PrimaryContact.Email) {
			errs["primary_contact.email"] = "Enter a valid email address"
		}
		if !present(rec.PrimaryContact.Phone) {
			errs["primary_contact.phone"] = "Phone number is required"
		}
	case StepAccount:
		c := rec.AccountCredentials
		if !ValidEmail(c.Email) {
			errs["account_credentials.email"] = "Enter a valid email address"
		}
		if utf8.RuneCountInString(c.Password) < minPasswordLength {
			errs["account_credentials.password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
		}
		if c.Password != c.PasswordConfirmation {
			errs["account_credentials.password_confirmation"] = "Passwords do not match"
		}
	}
	return errs
}

func addressErrors(errs map[string]string, prefix string, a models.Address) {
	if a.UseAgentService {
		return
	}
	fields := []struct {
		name, value, label string
	}{
		{"street", a.Street, "Street"},
		{"city", a.City, "City"},
		{"region", a.Region, "State"},
		{"postal_code", a.PostalCode, "ZIP code"},
	}
	for _, f := range fields {
		if !present(f.value) {
			errs[prefix+"."+f.name] = f.label + " is required"
		}
	}
}

func personErrors(errs map[string]string, prefix string, p models.Person) {
	if !present(p.FirstName) {
		errs[prefix+".first_name"] = "First name is required"
	}
	if !present(p.LastName) {
		errs[prefix+".last_name"] = "Last name is required"
	}
	if !ValidEmail(p.Email) {
		errs[prefix+".email"] = "Enter a valid email address"
	}
	if !present(p.Phone) {
		errs[prefix+".phone"] = "Phone number is required"
	}
	if !present(p.Address) {
		errs[prefix+".address"] = "Address is required"
	}
}
