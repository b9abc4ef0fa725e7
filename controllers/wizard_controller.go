package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/models"
	"formationdesk/backend/pricing"
	"formationdesk/backend/session"
	"formationdesk/backend/wizard"
)

type wizardView struct {
	ID                   string              `json:"id"`
	Record               models.IntakeRecord `json:"record"`
	PasswordSet          bool                `json:"password_set"`
	Step                 int                 `json:"step"`
	StepCount            int                 `json:"step_count"`
	ShowValidationErrors bool                `json:"show_validation_errors"`
	CanProceed           bool                `json:"can_proceed"`
	Errors               map[string]string   `json:"errors,omitempty"`
	Quote                pricing.Breakdown   `json:"quote"`
	TotalDisplay         string              `json:"total_display"`
	CatalogVersion       string              `json:"catalog_version"`
	PendingTxRef         string              `json:"pending_tx_ref,omitempty"`
}

func buildView(ctx context.Context, env *Env, sess *wizard.Session) wizardView {
	catalog := env.Catalog.Catalog(ctx)
	quote := pricing.ComputeTotal(sess.Record, catalog)
	v := wizardView{
		ID:                   sess.ID,
		Record:               sess.Record.Redacted(""),
		PasswordSet:          sess.Record.AccountCredentials.Password != "",
		Step:                 sess.Step,
		StepCount:            wizard.LastStep + 1,
		ShowValidationErrors: sess.ShowValidationErrors,
		CanProceed:           sess.CanProceed(),
		Quote:                quote,
		TotalDisplay:         quote.Total.Display(),
		CatalogVersion:       catalog.Version,
		PendingTxRef:         sess.PendingTxRef,
	}
	if sess.ShowValidationErrors {
		v.Errors = wizard.FieldErrors(sess.Step, sess.Record)
	}
	return v
}

// StartWizard opens a fresh intake and binds it to the browser.
func StartWizard(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := env.Sessions.Create()
		token, err := session.IssueToken(env.Cfg.SessionSecret, sess.ID, env.Cfg.SessionTTL)
		if err != nil {
			env.Sessions.Delete(sess.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start intake"})
			return
		}
		setSessionCookie(c, env, token, int(env.Cfg.SessionTTL.Seconds()))
		c.JSON(http.StatusCreated, buildView(c.Request.Context(), env, sess))
	}
}

func GetWizard(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := loadSession(c, env)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, buildView(c.Request.Context(), env, sess))
	}
}

// ResetWizard is the landing-page action: everything collected is dropped.
func ResetWizard(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		mutate(c, env, func(s *wizard.Session) error {
			s.Reset()
			return nil
		})
	}
}

// PatchRecord merges a partial record. The jurisdiction fee always comes
// from the fee schedule, never from the client.
func PatchRecord(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil || len(body) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		mutate(c, env, func(s *wizard.Session) error {
			if err := s.Merge(json.RawMessage(body)); err != nil {
				return err
			}
			return applyJurisdictionFee(env.Fees, &s.Record)
		})
	}
}

func applyJurisdictionFee(fees *pricing.FeeSchedule, rec *models.IntakeRecord) error {
	if rec.Jurisdiction == "" {
		rec.JurisdictionFee = 0
		return nil
	}
	j, ok := fees.Lookup(rec.Jurisdiction)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeUnknownJurisdiction, "We don't file in that state yet",
			map[string]string{"jurisdiction": rec.Jurisdiction})
	}
	rec.Jurisdiction = j.Code
	rec.JurisdictionFee = int64(j.Fee)
	return nil
}

// NextStep advances only when the current step is complete; otherwise the
// validation errors are revealed and the step stays put.
func NextStep(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var blocked bool
		sess, ok, _ := env.Sessions.Update(sessionID(c), func(s *wizard.Session) error {
			if !s.CanProceed() {
				s.TriggerValidation()
				blocked = true
				return nil
			}
			s.Next()
			return nil
		})
		if !ok {
			respondError(c, errSessionMissing, "")
			return
		}
		touchCookie(c, env, sess.ID)
		view := buildView(c.Request.Context(), env, sess)
		if blocked {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Please complete the highlighted fields",
				"code":   apperrors.CodeStepIncomplete,
				"wizard": view,
			})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func PreviousStep(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		mutate(c, env, func(s *wizard.Session) error {
			s.Previous()
			return nil
		})
	}
}

// GoToStep jumps to any step, completed or not.
func GoToStep(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			respondError(c, apperrors.New(apperrors.CodeStepOutOfRange, "Unknown step"), "")
			return
		}
		mutate(c, env, func(s *wizard.Session) error {
			return s.GoTo(index)
		})
	}
}

func AddOwner(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		mutate(c, env, func(s *wizard.Session) error {
			s.AddOwner()
			return nil
		})
	}
}

func RemoveOwner(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := personIndex(c)
		if !ok {
			return
		}
		mutate(c, env, func(s *wizard.Session) error {
			return s.RemoveOwner(index)
		})
	}
}

func AddManager(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		mutate(c, env, func(s *wizard.Session) error {
			s.AddManager()
			return nil
		})
	}
}

func RemoveManager(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := personIndex(c)
		if !ok {
			return
		}
		mutate(c, env, func(s *wizard.Session) error {
			return s.RemoveManager(index)
		})
	}
}

func personIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, apperrors.New(apperrors.CodePersonIndexOutOfRange, "Invalid position"), "")
		return 0, false
	}
	return index, true
}
