package commands

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	root := &cobra.Command{
		Use:          "formationdesk",
		Short:        "Business formation intake and checkout backend",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(serveCmd(), migrateCmd(), quoteCmd(), orderCmd())
	return root.Execute()
}
