package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/omnifocus-bridge/internal/app"
	"github.com/spf13/cobra"
)

// NewToolsCmd creates the tools command
func NewToolsCmd(load func() (*app.Bridge, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List operations",
		Long:  "List every operation with its parameters. Required parameters are marked with *.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bridge, err := load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, tool := range bridge.Registry.Tools() {
				params := make([]string, 0, len(tool.Params))
				for _, p := range tool.Params {
					name := p.Name
					if p.Required {
						name += "*"
					}
					params = append(params, name)
				}
				fmt.Fprintf(out, "%-18s %s\n", tool.Name, tool.Description)
				if len(params) > 0 {
					fmt.Fprintf(out, "%-18s params: %s\n", "", strings.Join(params, ", "))
				}
			}
			return nil
		},
	}
}
