package controllers

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"formationdesk/backend/models"
	"formationdesk/backend/reconcile"
)

type reconcileRequest struct {
	Status        string `json:"status"`
	TxRef         string `json:"tx_ref"`
	TransactionID string `json:"transaction_id"`
}

// CompletePayment is the gateway's browser return URL. It settles the
// attempt and redirects: to the dashboard after an automatic sign-in, to the
// success page when the customer must sign in by hand, or to the failure page.
func CompletePayment(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := settle(c, env, reconcile.ParseParams(c.Request.URL.Query()))
		switch {
		case out.State == reconcile.StateFailed:
			c.Redirect(http.StatusSeeOther, withQuery(env.Cfg.FailureURL, "tx_ref", out.TxRef))
		case out.Navigate != "":
			c.Redirect(http.StatusSeeOther, out.Navigate)
		default:
			c.Redirect(http.StatusSeeOther, withQuery(env.Cfg.SuccessURL, "tx_ref", out.TxRef, "login", "manual"))
		}
	}
}

// ReconcilePayment is CompletePayment for single-page front ends: the same
// outcome, as JSON.
func ReconcilePayment(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reconcileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		out := settle(c, env, reconcile.Params{Status: req.Status, TxRef: req.TxRef, TransactionID: req.TransactionID})
		c.JSON(http.StatusOK, out)
	}
}

// settle reconciles p against the caller's cached intake, if any, and
// forwards the auth cookies. A successful payment ends the intake session;
// a failed one keeps it so the customer can retry.
func settle(c *gin.Context, env *Env, p reconcile.Params) reconcile.Outcome {
	ctx := c.Request.Context()
	var snapshot *models.IntakeRecord
	id := sessionID(c)
	if id != "" {
		if sess, ok := env.Sessions.Get(id); ok {
			if p.TxRef == "" {
				p.TxRef = sess.PendingTxRef
			}
			if sess.PendingTxRef != "" && sess.PendingTxRef != p.TxRef {
				// The intake may have changed since that attempt; its pending
				// order keeps the snapshot saved at checkout.
				log.Printf("payment return %s: session expected %s, not re-saving", p.TxRef, sess.PendingTxRef)
			} else {
				rec := sess.Record
				snapshot = &rec
			}
		}
	}

	out := env.Reconciler.Reconcile(ctx, p, snapshot, env.Catalog.Catalog(ctx))

	for _, ck := range out.Cookies {
		forwarded := *ck
		forwarded.Domain = ""
		if forwarded.Path == "" {
			forwarded.Path = "/"
		}
		http.SetCookie(c.Writer, &forwarded)
	}
	if out.State == reconcile.StateSuccess && id != "" {
		env.Sessions.Delete(id)
		setSessionCookie(c, env, "", -1)
	}
	return out
}

func withQuery(raw string, kv ...string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
