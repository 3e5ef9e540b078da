package commands

import (
	"github.com/spf13/cobra"

	"github.com/netzint/nextcloudctl/cmd/nextcloudctl/handlers"
)

// Update returns the command for updating a running deployment.
//
// The update always traverses major versions one at a time; the
// application only supports adjacent-major upgrades.
//
// Optional flags:
//
//	--path, -p:  Base path of the deployment (default from settings prompt)
//	--target:    Upgrade up to this version tag instead of asking
//	--latest:    Upgrade to the latest available version without asking
//	--aux:       Also offer updates for postgres/redis/nginx afterwards
func Update() *cobra.Command {
	var basePath string
	var target string
	var latest bool
	var aux bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a running Nextcloud stack, one major version at a time",
		Long: `Update a running Nextcloud stack.

The update process:
1. Detects the installed version from the running container
2. Discovers available versions from the registry
3. Computes the sequential upgrade path (never skipping a major)
4. For each step: stop, swap image, start, wait for readiness, run
   in-container maintenance commands

A stop/start failure aborts the whole run. Steps whose container cannot
be resolved afterwards are skipped with a warning.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.UpdateOptions{
				BasePath:      basePath,
				TargetVersion: target,
				Latest:        latest,
				Auxiliary:     aux,
			}
			return handlers.Update(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&basePath, "path", "p", "", "Base path of the deployment")
	cmd.Flags().StringVar(&target, "target", "", "Upgrade up to this version tag (e.g. 30.0.1-fpm)")
	cmd.Flags().BoolVar(&latest, "latest", false, "Upgrade to the latest available version without asking")
	cmd.Flags().BoolVar(&aux, "aux", false, "Also offer updates for the auxiliary containers")

	return cmd
}
