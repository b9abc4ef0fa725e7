package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/wizard"
)

// Checkout saves the pending order and opens a payment session. The front
// end redirects to checkout_url; on error it shows the message as a banner
// and may retry, which starts a new attempt with a new tx_ref. Only an intake
// on the payment step can check out.
func Checkout(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := loadSession(c, env)
		if !ok {
			return
		}
		if sess.Step != wizard.LastStep {
			respondError(c, apperrors.New(apperrors.CodeCheckoutNotReady, "Please finish the earlier steps before paying"), "")
			return
		}
		ctx := c.Request.Context()
		attempt, err := env.Checkout.Submit(ctx, sess.Record, env.Catalog.Catalog(ctx))
		if err != nil {
			respondError(c, err, "Payment failed. Please try again.")
			return
		}
		env.Sessions.Update(sess.ID, func(s *wizard.Session) error {
			s.PendingTxRef = attempt.TxRef
			return nil
		})
		c.JSON(http.StatusOK, gin.H{
			"tx_ref":        attempt.TxRef,
			"checkout_url":  attempt.CheckoutURL,
			"order_id":      attempt.OrderID,
			"amount":        attempt.Amount,
			"total_display": attempt.Amount.Total.Display(),
		})
	}
}
