package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"formationdesk/backend/models"
	"formationdesk/backend/pricing"
)

func quoteCmd() *cobra.Command {
	var (
		jurisdiction string
		services     []string
		feesFile     string
		catalogURL   string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a formation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			fees, err := pricing.LoadFeeSchedule(feesFile)
			if err != nil {
				return err
			}
			j, ok := fees.Lookup(jurisdiction)
			if !ok {
				return fmt.Errorf("unknown jurisdiction %q", jurisdiction)
			}
			fetcher := pricing.NewCatalogFetcher(catalogURL, &http.Client{Timeout: 10 * time.Second}, 0)
			catalog := fetcher.Catalog(cmd.Context())

			rec := models.IntakeRecord{
				Jurisdiction:     j.Code,
				JurisdictionFee:  int64(j.Fee),
				SelectedServices: map[string]bool{},
			}
			for _, id := range services {
				if _, ok := catalog.Lookup(id); !ok {
					return fmt.Errorf("unknown service %q (catalog %s)", id, catalog.Version)
				}
				rec.SelectedServices[id] = true
			}

			b := pricing.ComputeTotal(rec, catalog)
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %12s\n", "Formation", b.Formation.Display())
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %12s\n", "State fee ("+j.Name+")", b.Jurisdiction.Display())
			for _, line := range b.Lines {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %12s\n", line.Name, pricing.Cents(line.Price).Display())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %12s\n", "Processing", b.Processing.Display())
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %12s\n", "Total", b.Total.Display())
			return nil
		},
	}
	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "state code, e.g. WY")
	cmd.Flags().StringSliceVarP(&services, "service", "s", nil, "add-on service id (repeatable)")
	cmd.Flags().StringVar(&feesFile, "fees", "", "fee schedule .csv or .xlsx (default: bundled)")
	cmd.Flags().StringVar(&catalogURL, "catalog-url", "", "remote service catalog (default: bundled)")
	_ = cmd.MarkFlagRequired("jurisdiction")
	return cmd
}
