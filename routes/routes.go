package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formationdesk/backend/controllers"
	"formationdesk/backend/middlewares"
)

func Register(r *gin.Engine, env *controllers.Env) {
	secret := env.Cfg.SessionSecret

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// Gateway return URL; must work even if the session cookie is gone.
	r.GET("/payment/complete", middlewares.OptionalSession(secret), controllers.CompletePayment(env))

	api := r.Group("/api")
	{
		api.GET("/catalog", controllers.GetCatalog(env))
		api.GET("/jurisdictions", controllers.ListJurisdictions(env))
		api.POST("/wizard", controllers.StartWizard(env))
		api.POST("/payment/reconcile", middlewares.OptionalSession(secret), controllers.ReconcilePayment(env))

		wiz := api.Group("/wizard")
		wiz.Use(middlewares.Session(secret))
		wiz.GET("", controllers.GetWizard(env))
		wiz.DELETE("", controllers.ResetWizard(env))
		wiz.PATCH("/record", controllers.PatchRecord(env))
		wiz.POST("/next", controllers.NextStep(env))
		wiz.POST("/previous", controllers.PreviousStep(env))
		wiz.PUT("/step/:index", controllers.GoToStep(env))
		wiz.POST("/owners", controllers.AddOwner(env))
		wiz.DELETE("/owners/:index", controllers.RemoveOwner(env))
		wiz.POST("/managers", controllers.AddManager(env))
		wiz.DELETE("/managers/:index", controllers.RemoveManager(env))
		wiz.GET("/quote", controllers.GetQuote(env))

		priv := api.Group("/")
		priv.Use(middlewares.Session(secret))
		priv.POST("checkout", controllers.Checkout(env))
	}
}
