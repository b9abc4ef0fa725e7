package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formationdesk/backend/pricing"
)

func GetCatalog(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, env.Catalog.Catalog(c.Request.Context()))
	}
}

type jurisdictionView struct {
	pricing.Jurisdiction
	FeeDisplay string `json:"fee_display"`
}

func ListJurisdictions(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := env.Fees.List()
		out := make([]jurisdictionView, 0, len(list))
		for _, j := range list {
			out = append(out, jurisdictionView{Jurisdiction: j, FeeDisplay: j.Fee.Display()})
		}
		c.JSON(http.StatusOK, gin.H{"jurisdictions": out})
	}
}

// GetQuote prices the caller's intake as it stands.
func GetQuote(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := loadSession(c, env)
		if !ok {
			return
		}
		catalog := env.Catalog.Catalog(c.Request.Context())
		quote := pricing.ComputeTotal(sess.Record, catalog)
		c.JSON(http.StatusOK, gin.H{
			"quote":           quote,
			"total":           quote.Total.Decimal(),
			"total_display":   quote.Total.Display(),
			"catalog_version": catalog.Version,
			"catalog_default": catalog.Fallback,
		})
	}
}
