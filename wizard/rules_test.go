package wizard

import (
	"testing"

	"formationdesk/backend/models"
)

func completeOwner() models.Person {
	return models.Person{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+1 555 0100",
		Address:   "1 Analytical Way, London",
	}
}

func fullAddress() models.Address {
	return models.Address{Street: "1 Main St", City: "Cheyenne", Region: "WY", PostalCode: "82001"}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@sub.example.org", "x@y.z"}
	invalid := []string{"", "plain", "a@b", "a @b.co", "a@@b.co", "@b.co", "a@b.", "a@.co x"}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Fatalf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Fatalf("expected %q to be invalid", e)
		}
	}
}

func TestJurisdictionAndIdentityGates(t *testing.T) {
	var rec models.IntakeRecord
	if CanProceed(StepJurisdiction, rec) {
		t.Fatal("expected empty jurisdiction to block")
	}
	rec.Jurisdiction = "WY"
	if !CanProceed(StepJurisdiction, rec) {
		t.Fatal("expected jurisdiction gate to pass")
	}

	rec.EntityName = "Acme LLC"
	if CanProceed(StepIdentity, rec) {
		t.Fatal("expected missing purpose to block")
	}
	rec.PurposeStatement = "Any lawful purpose"
	if !CanProceed(StepIdentity, rec) {
		t.Fatal("expected identity gate to pass")
	}
}

func TestAddressGate(t *testing.T) {
	rec := models.IntakeRecord{PhysicalAddress: fullAddress()}
	if CanProceed(StepAddresses, rec) {
		t.Fatal("expected empty mailing address to block")
	}

	rec.MailingMirrorsPhysical = true
	if !CanProceed(StepAddresses, rec) {
		t.Fatal("expected mirrored mailing address to pass regardless of its fields")
	}

	rec = models.IntakeRecord{
		PhysicalAddress: models.Address{UseAgentService: true},
		MailingAddress:  models.Address{UseAgentService: true},
	}
	if !CanProceed(StepAddresses, rec) {
		t.Fatal("expected agent-delegated addresses to pass")
	}

	rec.PhysicalAddress = models.Address{Street: "1 Main St", City: "Cheyenne", Region: "WY"}
	if CanProceed(StepAddresses, rec) {
		t.Fatal("expected missing postal code to block")
	}
}

func TestPeopleGate(t *testing.T) {
	rec := models.IntakeRecord{}
	if CanProceed(StepPeople, rec) {
		t.Fatal("expected zero owners to block")
	}

	rec.Owners = []models.Person{completeOwner()}
	if !CanProceed(StepPeople, rec) {
		t.Fatal("expected complete owner to pass")
	}

	bad := completeOwner()
	bad.Email = "not-an-email"
	rec.Owners = append(rec.Owners, bad)
	if CanProceed(StepPeople, rec) {
		t.Fatal("expected invalid second owner to block")
	}
}

func TestPeopleGateIgnoresManagers(t *testing.T) {
	rec := models.IntakeRecord{
		ManagementMode: models.ManagerManaged,
		Owners:         []models.Person{completeOwner()},
	}
	if !CanProceed(StepPeople, rec) {
		t.Fatal("expected managers to be optional for the gate")
	}
	if _, ok := FieldErrors(StepPeople, rec)["managers"]; !ok {
		t.Fatal("expected a managers hint for manager-managed entities")
	}
}

func TestContactAndAccountGates(t *testing.T) {
	rec := models.IntakeRecord{PrimaryContact: models.Contact{Email: "ops@acme.io"}}
	if CanProceed(StepContact, rec) {
		t.Fatal("expected missing phone to block")
	}
	rec.PrimaryContact.Phone = "555-0100"
	if !CanProceed(StepContact, rec) {
		t.Fatal("expected contact gate to pass")
	}

	rec.AccountCredentials = models.Credentials{Email: "ops@acme.io", Password: "short", PasswordConfirmation: "short"}
	if CanProceed(StepAccount, rec) {
		t.Fatal("expected short password to block")
	}
	rec.AccountCredentials.Password = "longenough"
	rec.AccountCredentials.PasswordConfirmation = "longenougH"
	if CanProceed(StepAccount, rec) {
		t.Fatal("expected mismatched confirmation to block")
	}
	rec.AccountCredentials.PasswordConfirmation = "longenough"
	if !CanProceed(StepAccount, rec) {
		t.Fatal("expected account gate to pass")
	}
}

func TestOptionalStepsAlwaysPass(t *testing.T) {
	var rec models.IntakeRecord
	if !CanProceed(StepServices, rec) || !CanProceed(StepPayment, rec) {
		t.Fatal("expected services and payment steps to always pass")
	}
	if CanProceed(-1, rec) || CanProceed(LastStep+1, rec) {
		t.Fatal("expected out-of-range steps to fail")
	}
}

func TestFieldErrorsMatchGate(t *testing.T) {
	rec := models.IntakeRecord{Owners: []models.Person{{FirstName: "Ada"}}}
	errs := FieldErrors(StepPeople, rec)
	for _, key := range []string{"owners[0].last_name", "owners[0].email", "owners[0].phone", "owners[0].address"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("expected error for %s, got %v", key, errs)
		}
	}
	if _, ok := errs["owners[0].first_name"]; ok {
		t.Fatal("did not expect error for filled first name")
	}

	rec = models.IntakeRecord{PhysicalAddress: fullAddress(), MailingMirrorsPhysical: true}
	if errs := FieldErrors(StepAddresses, rec); len(errs) != 0 {
		t.Fatalf("expected no address errors, got %v", errs)
	}
}
