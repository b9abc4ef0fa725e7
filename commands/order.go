package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"formationdesk/backend/config"
	"formationdesk/backend/pricing"
)

func orderCmd() *cobra.Command {
	var showSnapshot bool
	cmd := &cobra.Command{
		Use:   "order <tx_ref>",
		Short: "Show a saved order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			orders, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			o, err := orders.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Order %d  %s\n", o.ID, o.TxRef)
			fmt.Printf("  status:         %s\n", o.Status)
			fmt.Printf("  amount:         %s\n", pricing.Cents(o.AmountCents).Display())
			fmt.Printf("  customer:       %s\n", o.CustomerEmail)
			fmt.Printf("  transaction id: %s\n", o.TransactionID)
			fmt.Printf("  emails:         %s\n", map[bool]string{true: "suppressed", false: "enabled"}[o.SuppressEmails])
			fmt.Printf("  updated:        %s\n", o.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
			if showSnapshot {
				buf, err := json.MarshalIndent(o.Snapshot, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(buf))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSnapshot, "snapshot", false, "print the stored intake record")
	return cmd
}
