// Package reconcile finalizes a checkout after the payment gateway sends the
// browser back: it settles the payment outcome, makes sure the order is
// saved, and signs the new customer in when it can.
package reconcile

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"formationdesk/backend/checkout"
	"formationdesk/backend/models"
	"formationdesk/backend/pricing"
)

type State string

const (
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

const (
	DefaultVerifyAttempts = 3
	DefaultVerifyDelay    = 500 * time.Millisecond
)

// failureStatuses are the return-URL statuses that mean no payment was taken.
var failureStatuses = map[string]bool{
	"failed":    true,
	"failure":   true,
	"cancelled": true,
	"canceled":  true,
	"error":     true,
}

// Params are the return-URL query parameters.
type Params struct {
	Status        string `json:"status" form:"status"`
	TxRef         string `json:"tx_ref" form:"tx_ref"`
	TransactionID string `json:"transaction_id" form:"transaction_id"`
}

func ParseParams(q url.Values) Params {
	return Params{
		Status:        strings.TrimSpace(q.Get("status")),
		TxRef:         strings.TrimSpace(q.Get("tx_ref")),
		TransactionID: strings.TrimSpace(q.Get("transaction_id")),
	}
}

// Failed reports whether the gateway said the payment did not go through.
// A missing or unrecognized status is not a failure.
func (p Params) Failed() bool {
	return failureStatuses[strings.ToLower(p.Status)]
}

// Authenticator signs customers in and probes their session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) ([]*http.Cookie, error)
	Profile(ctx context.Context, cookies []*http.Cookie) (bool, error)
}

// Outcome is the terminal result of a reconciliation.
type Outcome struct {
	State           State              `json:"state"`
	TxRef           string             `json:"tx_ref"`
	TransactionID   string             `json:"transaction_id,omitempty"`
	Amount          *pricing.Breakdown `json:"amount,omitempty"`
	OrderSaved      bool               `json:"order_saved"`
	OrderID         int64              `json:"order_id,omitempty"`
	SaveError       string             `json:"save_error,omitempty"`
	LoginAttempted  bool               `json:"login_attempted"`
	LoggedIn        bool               `json:"logged_in"`
	SessionVerified bool               `json:"session_verified"`
	// Navigate is set when the browser should go straight to the dashboard.
	Navigate string         `json:"navigate,omitempty"`
	Cookies  []*http.Cookie `json:"-"`
}

func (o *Outcome) transition(to State) {
	if o.State != StateLoading {
		panic("reconcile: outcome already settled as " + string(o.State))
	}
	o.State = to
}

// Handler runs reconciliations. Orders and Auth are required; Auth may be nil
// to disable automatic sign-in.
type Handler struct {
	Orders       checkout.OrderSaver
	Auth         Authenticator
	DashboardURL string

	VerifyAttempts int
	VerifyDelay    time.Duration
}

var errNotAuthenticated = errors.New("session not yet authenticated")

// Reconcile settles the checkout identified by p. snapshot is the cached
// intake record, or nil when nothing survived in the session. The amount in
// the return URL, if any, is never used; the total is recomputed.
func (h *Handler) Reconcile(ctx context.Context, p Params, snapshot *models.IntakeRecord, catalog pricing.Catalog) Outcome {
	out := Outcome{State: StateLoading, TxRef: p.TxRef, TransactionID: p.TransactionID}

	if p.Failed() {
		out.transition(StateFailed)
		log.Printf("reconcile %s: gateway reported %q", p.TxRef, p.Status)
		return out
	}
	if p.Status == "" {
		log.Printf("reconcile %s: no status on return url, treating as success", p.TxRef)
	}
	out.transition(StateSuccess)

	if snapshot == nil {
		log.Printf("reconcile %s: no cached intake, skipping order re-save", p.TxRef)
		return out
	}

	h.resave(ctx, p, *snapshot, catalog, &out)

	if snapshot.HasLoginCredentials() && h.Auth != nil {
		h.signIn(ctx, snapshot.AccountCredentials, &out)
	}
	return out
}

func (h *Handler) resave(ctx context.Context, p Params, rec models.IntakeRecord, catalog pricing.Catalog, out *Outcome) {
	amount := pricing.ComputeTotal(rec, catalog)
	out.Amount = &amount
	if p.TxRef == "" {
		log.Printf("reconcile: return url has no tx_ref, cannot re-save order")
		return
	}

	snapshot, err := checkout.Snapshot(rec)
	if err == nil {
		var saved models.SavedOrder
		saved, err = h.Orders.SaveOrder(ctx, models.SaveOrderRequest{
			TxRef:          p.TxRef,
			Status:         models.OrderPaid,
			Snapshot:       snapshot,
			AmountCents:    int64(amount.Total),
			SuppressEmails: false,
			TransactionID:  p.TransactionID,
		})
		if err == nil {
			out.OrderSaved = true
			out.OrderID = saved.ID
			return
		}
	}
	// The gateway already confirmed payment; a failed save is for support to
	// follow up, not a reason to tell the customer the payment failed.
	log.Printf("reconcile %s: order re-save failed: %v", p.TxRef, err)
	out.SaveError = "Your payment went through but we could not update your order yet. Our team will follow up."
}

func (h *Handler) signIn(ctx context.Context, creds models.Credentials, out *Outcome) {
	out.LoginAttempted = true
	cookies, err := h.Auth.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		log.Printf("reconcile %s: auto login failed: %v", out.TxRef, err)
		return
	}
	out.LoggedIn = true
	out.Cookies = cookies
	out.SessionVerified = h.verify(ctx, cookies)
	// Navigate even if verification timed out; the cookie is assumed set.
	out.Navigate = h.DashboardURL
}

// verify polls the profile endpoint a bounded number of times. It returns
// early, without waiting out the delay, when ctx is done.
func (h *Handler) verify(ctx context.Context, cookies []*http.Cookie) bool {
	attempts := h.VerifyAttempts
	if attempts <= 0 {
		attempts = DefaultVerifyAttempts
	}
	delay := h.VerifyDelay
	if delay <= 0 {
		delay = DefaultVerifyDelay
	}

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := h.Auth.Profile(ctx, cookies)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, errNotAuthenticated
		}
		return true, nil
	}, backoff.WithBackOff(backoff.NewConstantBackOff(delay)), backoff.WithMaxTries(uint(attempts)))
	if err != nil {
		log.Printf("reconcile: session verification gave up: %v", err)
		return false
	}
	return true
}
