package cli

import (
	"store-feedback/internal/config"
	"store-feedback/internal/geo"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	if deps.Config == nil {
		deps.Config = config.Load()
	}
	if deps.NewLocationClient == nil {
		deps.NewLocationClient = func(baseURL string) LocationClient {
			return geo.NewClient(baseURL)
		}
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	root := &cobra.Command{
		Use:           "feedback",
		Short:         "Serve the store feedback widget API and manage its data.",
		Version:       deps.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(newServeCommand(deps))
	root.AddCommand(newNearestCommand(deps))
	root.AddCommand(newStoresCommand(deps))
	root.AddCommand(newExportCommand(deps))
	root.AddCommand(newHashPasswordCommand())

	return root
}
