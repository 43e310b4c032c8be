package commands

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/app"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd(load func() (*app.Bridge, error)) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check that OmniFocus answers automation calls",
		Long:  "Check that the osascript binary is available and that OmniFocus responds to the ping script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bridge, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if bridge.Runner != nil {
				path, err := exec.LookPath(bridge.Runner.Binary())
				if err != nil {
					return fmt.Errorf("osascript not available: %w", err)
				}
				fmt.Fprintf(out, "Interpreter: %s\n", path)
			}
			fmt.Fprintf(out, "Scripts:     %s\n", bridge.ScriptsDir)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			version, err := bridge.Service.Ping(ctx)
			if err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			fmt.Fprintf(out, "OmniFocus:   %s\n", version)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "How long to wait for OmniFocus to answer")
	return cmd
}
