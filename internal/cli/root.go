package cli

import (
	"github.com/spf13/cobra"
)

// NewRoot builds the floodstatus command tree.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "floodstatus",
		Short:        "LCRA flood status scraper and API",
		Long:         "Scrapes lake levels, river conditions, and floodgate operations from the LCRA hydromet API and serves them as structured records.",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newGetCmd())

	return root
}
