// Package checkout turns a completed intake into a pending order and a
// hosted payment session, in that order and never concurrently.
package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/gateway"
	"formationdesk/backend/models"
	"formationdesk/backend/pricing"
)

// OrderSaver persists orders. SaveOrder must upsert by TxRef.
type OrderSaver interface {
	SaveOrder(ctx context.Context, req models.SaveOrderRequest) (models.SavedOrder, error)
}

// PaymentInitializer opens a hosted checkout session with the gateway.
type PaymentInitializer interface {
	Initialize(ctx context.Context, req models.PaymentRequest) (models.PaymentSession, error)
}

// Attempt is the result of a successful Submit.
type Attempt struct {
	TxRef       string            `json:"tx_ref"`
	Amount      pricing.Breakdown `json:"amount"`
	OrderID     int64             `json:"order_id"`
	CheckoutURL string            `json:"checkout_url"`
}

// Orchestrator runs one checkout attempt: save the pending order, open a
// payment session, hand back the URL to redirect to.
type Orchestrator struct {
	Orders   OrderSaver
	Payments PaymentInitializer

	// CallbackURL receives the gateway's server-to-server notification.
	CallbackURL string
	// ReturnURL is where the gateway sends the browser; tx_ref is appended.
	ReturnURL string
	Currency  string

	NewTxRef func() string
}

// NewTxRef returns a fresh reference: millisecond timestamp plus a random suffix.
func NewTxRef() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("FD-%d-%s", time.Now().UnixMilli(), suffix)
}

// Submit runs the checkout sequence for rec. Each step's failure aborts the
// rest; a failed order save means the gateway is never contacted.
func (o *Orchestrator) Submit(ctx context.Context, rec models.IntakeRecord, catalog pricing.Catalog) (Attempt, error) {
	email := rec.CustomerEmail()
	if strings.TrimSpace(email) == "" {
		return Attempt{}, apperrors.New(apperrors.CodeCustomerEmailMissing,
			"An email address is required to complete checkout")
	}

	newRef := o.NewTxRef
	if newRef == nil {
		newRef = NewTxRef
	}
	attempt := Attempt{
		TxRef:  newRef(),
		Amount: pricing.ComputeTotal(rec, catalog),
	}

	snapshot, err := Snapshot(rec)
	if err != nil {
		return Attempt{}, apperrors.Wrap(apperrors.CodeOrderSaveFailed, "We could not save your order. Please try again.", err)
	}
	saved, err := o.Orders.SaveOrder(ctx, models.SaveOrderRequest{
		TxRef:          attempt.TxRef,
		Status:         models.OrderPending,
		Snapshot:       snapshot,
		AmountCents:    int64(attempt.Amount.Total),
		SuppressEmails: true,
	})
	if err != nil {
		log.Printf("checkout %s: order save failed: %v", attempt.TxRef, err)
		return Attempt{}, apperrors.Wrap(apperrors.CodeOrderSaveFailed,
			displayMessage(err, "We could not save your order. Please try again."), err)
	}
	attempt.OrderID = saved.ID

	returnURL, err := withTxRef(o.ReturnURL, attempt.TxRef)
	if err != nil {
		return Attempt{}, apperrors.Wrap(apperrors.CodePaymentInitFailed, "Payment could not be started", err)
	}
	first, last := customerName(rec)
	sess, err := o.Payments.Initialize(ctx, models.PaymentRequest{
		Amount:      attempt.Amount.Total.Decimal(),
		Currency:    o.currency(),
		Email:       email,
		FirstName:   first,
		LastName:    last,
		TxRef:       attempt.TxRef,
		CallbackURL: o.CallbackURL,
		ReturnURL:   returnURL,
	})
	if err != nil {
		log.Printf("checkout %s: payment initialize failed, pending order %d kept: %v", attempt.TxRef, saved.ID, err)
		return Attempt{}, apperrors.Wrap(apperrors.CodePaymentInitFailed,
			displayMessage(err, "Payment could not be started. Please try again."), err)
	}
	attempt.CheckoutURL = sess.CheckoutURL
	log.Printf("checkout %s: order %d pending, redirecting to gateway", attempt.TxRef, saved.ID)
	return attempt, nil
}

func (o *Orchestrator) currency() string {
	if o.Currency == "" {
		return "USD"
	}
	return o.Currency
}

// Snapshot returns the record as it may be persisted: the account password
// is replaced by its HashPassword hash.
func Snapshot(rec models.IntakeRecord) (models.IntakeRecord, error) {
	if rec.AccountCredentials.Password == "" {
		return rec.Redacted(""), nil
	}
	hash, err := HashPassword(rec.AccountCredentials.Password)
	if err != nil {
		return models.IntakeRecord{}, err
	}
	return rec.Redacted(hash), nil
}

// HashPassword bcrypts the base64 SHA-256 digest of password, so passwords
// of any length hash (bcrypt alone stops at 72 bytes).
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a HashPassword hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// customerName uses the first owner with a name on file.
func customerName(rec models.IntakeRecord) (string, string) {
	for _, o := range rec.Owners {
		if o.FirstName != "" || o.LastName != "" {
			return o.FirstName, o.LastName
		}
	}
	return "", ""
}

func withTxRef(raw, txRef string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse return url: %w", err)
	}
	q := u.Query()
	q.Set("tx_ref", txRef)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func displayMessage(err error, fallback string) string {
	var se *gateway.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return apperrors.MessageOf(err, fallback)
}
