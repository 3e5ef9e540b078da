// Package main is the entry point for the nextcloudctl CLI.
//
// nextcloudctl installs and updates a Nextcloud docker-compose stack
// (Nextcloud-FPM, PostgreSQL, Redis, Nginx). Updates traverse one major
// version at a time, with readiness checks and in-container maintenance
// between steps.
//
// Commands: install, update, version, completion.
//
// For detailed usage information, run:
//
//	nextcloudctl --help
package main

import (
	"fmt"
	"os"

	"github.com/netzint/nextcloudctl/cmd/nextcloudctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
