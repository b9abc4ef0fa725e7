package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"formationdesk/backend/checkout"
	"formationdesk/backend/config"
	"formationdesk/backend/controllers"
	"formationdesk/backend/database"
	"formationdesk/backend/database/sqlite"
	"formationdesk/backend/gateway"
	"formationdesk/backend/models"
	"formationdesk/backend/pricing"
	"formationdesk/backend/reconcile"
	"formationdesk/backend/session"
)

type orderStore interface {
	checkout.OrderSaver
	GetOrder(ctx context.Context, txRef string) (models.SavedOrder, error)
}

// openStore opens the configured order store and makes sure its schema is
// current. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config) (orderStore, func(), error) {
	switch cfg.OrderStore {
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return database.NewPostgres(pool), pool.Close, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("close order store: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown order store %q", cfg.OrderStore)
	}
}

func buildEnv(cfg config.Config, orders orderStore) (*controllers.Env, error) {
	fees, err := pricing.LoadFeeSchedule(cfg.FeeScheduleFile)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	var auth reconcile.Authenticator
	if cfg.AuthLoginURL != "" && cfg.AuthProfileURL != "" {
		auth = gateway.NewAuthClient(cfg.AuthLoginURL, cfg.AuthProfileURL, client)
	} else {
		log.Printf("auth urls not set; customers will sign in manually after payment")
	}

	return &controllers.Env{
		Cfg:      cfg,
		Sessions: session.NewStore(cfg.SessionTTL),
		Fees:     fees,
		Catalog:  pricing.NewCatalogFetcher(cfg.CatalogURL, client, cfg.CatalogTTL),
		Checkout: &checkout.Orchestrator{
			Orders:      orders,
			Payments:    gateway.NewPaymentClient(cfg.PaymentInitURL, client),
			CallbackURL: cfg.PaymentCallbackURL,
			ReturnURL:   cfg.ReturnURL,
			Currency:    "USD",
		},
		Reconciler: &reconcile.Handler{
			Orders:         orders,
			Auth:           auth,
			DashboardURL:   cfg.DashboardURL,
			VerifyAttempts: cfg.VerifyAttempts,
			VerifyDelay:    cfg.VerifyDelay,
		},
	}, nil
}
