package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/harun/taskpilot/pkg/agent"
	"github.com/spf13/cobra"
)

func newAgentsCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List registered agent classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listAgents(cmd, deps.Registry)
		},
	}
}

func listAgents(cmd *cobra.Command, registry *agent.Registry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, reg := range registry.Registrations() {
		fmt.Fprintf(w, "%s\t%s\n", reg.Kind, reg.Description)
	}
	return w.Flush()
}
