package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/benvon/omnifocus-bridge/internal/app"
	"github.com/spf13/cobra"
)

// NewCallCmd creates the call command
func NewCallCmd(load func() (*app.Bridge, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json|-]",
		Short: "Run one operation and print its JSON result",
		Long:  "Run one operation with a JSON argument object, or read it from stdin with -. The result is printed exactly as the HTTP and MCP fronts return it.",
		Example: `  ofctl call list_tasks '{"filter":"flagged"}'
  ofctl call add_task '{"title":"Buy milk","project":"Errands"}'
  echo '{"task_id":"kP3x"}' | ofctl call get_task_note -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			if len(args) == 2 {
				raw = []byte(args[1])
				if args[1] == "-" {
					var err error
					if raw, err = io.ReadAll(cmd.InOrStdin()); err != nil {
						return fmt.Errorf("read arguments: %w", err)
					}
				}
			}

			bridge, err := load()
			if err != nil {
				return err
			}

			res := bridge.Registry.Call(cmd.Context(), args[0], json.RawMessage(raw))
			fmt.Fprintln(cmd.OutOrStdout(), string(res.Payload))
			if res.IsError() {
				return fmt.Errorf("%s failed (%s)", args[0], res.Kind)
			}
			return nil
		},
	}
}
