package commands

import (
	"github.com/spf13/cobra"

	"github.com/netzint/nextcloudctl/cmd/nextcloudctl/handlers"
)

// Install returns the command for installing a new deployment.
//
// Optional flags:
//
//	--path, -p: Base path for the generated deployment files
//	--start:    Start the containers after generating the files
func Install() *cobra.Command {
	var basePath string
	var start bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a new Nextcloud stack",
		Long: `Install a new Nextcloud docker-compose stack.

The installation process:
1. Collects settings interactively (services, credentials, versions)
2. Scaffolds the nginx build folder and local data directories
3. Writes docker-compose.yml, nextcloud.env and nextcloudctl.yaml
4. Optionally starts the containers`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.InstallOptions{
				BasePath: basePath,
				Start:    start,
			}
			return handlers.Install(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&basePath, "path", "p", "", "Base path for deployment files (prompted when omitted)")
	cmd.Flags().BoolVar(&start, "start", false, "Start the containers after installation")

	return cmd
}
