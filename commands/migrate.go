package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"formationdesk/backend/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the order store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			_, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			closeStore()
			fmt.Printf("Order store (%s) is up to date.\n", cfg.OrderStore)
			return nil
		},
	}
}
