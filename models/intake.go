package models

// ManagementMode is how the entity is run: by its members or by appointed managers.
type ManagementMode string

const (
	MemberManaged  ManagementMode = "member-managed"
	ManagerManaged ManagementMode = "manager-managed"
)

// Address is either a structured street address or, when UseAgentService is
// set, a delegation to the registered agent's address.
type Address struct {
	Street          string `json:"street"`
	City            string `json:"city"`
	Region          string `json:"region"`
	PostalCode      string `json:"postal_code"`
	UseAgentService bool   `json:"use_agent_service"`
	AgentAddress    string `json:"agent_address,omitempty"`
}

type Person struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Credentials struct {
	Email                string `json:"email"`
	Password             string `json:"password,omitempty"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
	PasswordHash         string `json:"password_hash,omitempty"`
}

// IntakeRecord is the working data collected by the formation wizard.
type IntakeRecord struct {
	Jurisdiction           string          `json:"jurisdiction"`
	JurisdictionFee        int64           `json:"jurisdiction_fee"` // cents, set server-side
	EntityName             string          `json:"entity_name"`
	PurposeStatement       string          `json:"purpose_statement"`
	PhysicalAddress        Address         `json:"physical_address"`
	MailingAddress         Address         `json:"mailing_address"`
	MailingMirrorsPhysical bool            `json:"mailing_mirrors_physical"`
	ManagementMode         ManagementMode  `json:"management_mode"`
	Owners                 []Person        `json:"owners"`
	Managers               []Person        `json:"managers"`
	PrimaryContact         Contact         `json:"primary_contact"`
	AccountCredentials     Credentials     `json:"account_credentials"`
	SelectedServices       map[string]bool `json:"selected_services"`
}

// Clone returns a deep copy so callers can mutate it without aliasing slices or maps.
func (r IntakeRecord) Clone() IntakeRecord {
	out := r
	if r.Owners != nil {
		out.Owners = append([]Person(nil), r.Owners...)
	}
	if r.Managers != nil {
		out.Managers = append([]Person(nil), r.Managers...)
	}
	if r.SelectedServices != nil {
		out.SelectedServices = make(map[string]bool, len(r.SelectedServices))
		for k, v := range r.SelectedServices {
			out.SelectedServices[k] = v
		}
	}
	return out
}

// HasLoginCredentials reports whether the record carries enough to sign the
// customer in after payment.
func (r IntakeRecord) HasLoginCredentials() bool {
	return r.AccountCredentials.Email != "" && r.AccountCredentials.Password != ""
}

// Redacted returns a copy safe to persist: plaintext password fields are
// dropped and replaced by passwordHash.
func (r IntakeRecord) Redacted(passwordHash string) IntakeRecord {
	out := r.Clone()
	out.AccountCredentials.Password = ""
	out.AccountCredentials.PasswordConfirmation = ""
	out.AccountCredentials.PasswordHash = passwordHash
	return out
}

// CustomerEmail is the account email, falling back to the primary contact.
func (r IntakeRecord) CustomerEmail() string {
	if r.AccountCredentials.Email != "" {
		return r.AccountCredentials.Email
	}
	return r.PrimaryContact.Email
}
