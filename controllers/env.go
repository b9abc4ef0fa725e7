package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/checkout"
	"formationdesk/backend/config"
	"formationdesk/backend/middlewares"
	"formationdesk/backend/models"
	"formationdesk/backend/pricing"
	"formationdesk/backend/reconcile"
	"formationdesk/backend/session"
	"formationdesk/backend/wizard"
)

type CatalogSource interface {
	Catalog(ctx context.Context) pricing.Catalog
}

type CheckoutService interface {
	Submit(ctx context.Context, rec models.IntakeRecord, catalog pricing.Catalog) (checkout.Attempt, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, p reconcile.Params, snapshot *models.IntakeRecord, catalog pricing.Catalog) reconcile.Outcome
}

// Env carries the dependencies shared by all handlers.
type Env struct {
	Cfg        config.Config
	Sessions   *session.Store
	Fees       *pricing.FeeSchedule
	Catalog    CatalogSource
	Checkout   CheckoutService
	Reconciler Reconciler
}

var errSessionMissing = apperrors.New(apperrors.CodeSessionMissing, "Your intake session has expired. Please start again.")

func respondError(c *gin.Context, err error, fallback string) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	body := gin.H{"error": apperrors.MessageOf(err, fallback), "code": code}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && len(appErr.Metadata) > 0 {
		body["details"] = appErr.Metadata
	}
	c.JSON(status, body)
}

func sessionID(c *gin.Context) string {
	return c.GetString(middlewares.SessionKey)
}

// loadSession returns a copy of the caller's session, or writes a 401.
func loadSession(c *gin.Context, env *Env) (*wizard.Session, bool) {
	sess, ok := env.Sessions.Get(sessionID(c))
	if !ok {
		respondError(c, errSessionMissing, "")
		return nil, false
	}
	touchCookie(c, env, sess.ID)
	return sess, true
}

// mutate applies fn to the caller's session and responds with the new view.
// A failing fn leaves the stored session untouched.
func mutate(c *gin.Context, env *Env, fn func(*wizard.Session) error) {
	sess, ok, err := env.Sessions.Update(sessionID(c), fn)
	if !ok {
		respondError(c, errSessionMissing, "")
		return
	}
	if err != nil {
		respondError(c, err, "Could not update your intake")
		return
	}
	touchCookie(c, env, sess.ID)
	c.JSON(http.StatusOK, buildView(c.Request.Context(), env, sess))
}

func setSessionCookie(c *gin.Context, env *Env, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", env.Cfg.SecureCookies, true)
}

// touchCookie re-issues the session cookie so that it expires together with
// the session, whose lifetime the store extends on every access.
func touchCookie(c *gin.Context, env *Env, id string) {
	token, err := session.IssueToken(env.Cfg.SessionSecret, id, env.Cfg.SessionTTL)
	if err != nil {
		log.Printf("reissue session cookie: %v", err)
		return
	}
	setSessionCookie(c, env, token, int(env.Cfg.SessionTTL.Seconds()))
}
