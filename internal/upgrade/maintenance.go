package upgrade

import (
	"strings"
	"time"
)

// MaintenanceCommand is one in-container command executed after a step's
// stack comes up, with a fixed settle delay once it completes. Non-zero
// exits are expected to sometimes be benign and never fail the run.
type MaintenanceCommand struct {
	Argv  []string
	User  string
	Delay time.Duration
}

// String renders the command line for reporting.
func (m MaintenanceCommand) String() string {
	return strings.Join(m.Argv, " ")
}

// DefaultMaintenanceCommands is the post-upgrade sequence for the app
// service, strictly in order: index repair, general repair, then the
// schema/data upgrade.
func DefaultMaintenanceCommands(delay time.Duration) []MaintenanceCommand {
	return []MaintenanceCommand{
		{Argv: []string{"php", "occ", "db:add-missing-indices"}, User: "www-data", Delay: delay},
		{Argv: []string{"php", "occ", "maintenance:repair", "--include-expensive"}, User: "www-data", Delay: delay},
		{Argv: []string{"php", "occ", "upgrade"}, User: "www-data"},
	}
}
