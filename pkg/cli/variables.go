package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVariablesCommand builds the `variables` group wrapping the remote
// platform's global key/value variable store.
func NewVariablesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variables",
		Short: "Manage remote platform global variables",
	}
	cmd.AddCommand(
		newVariablesListCommand(app),
		newVariablesSetCommand(app),
		newVariablesDeleteCommand(app),
	)
	return cmd
}

func newVariablesListCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List global variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			vars, err := app.Remote.ListVariables(cmd.Context())
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(vars))
			return nil
		},
	}
	return cmd
}

func newVariablesSetCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or overwrite a global variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			proceed, err := Confirm(applyFlags, fmt.Sprintf("Set variable %s?", args[0]))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "key": args[0], "value": args[1]}))
				return nil
			}
			if err := app.Remote.SetVariable(cmd.Context(), args[0], args[1]); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(map[string]any{"key": args[0], "value": args[1]}))
			return nil
		},
	}
	addMutationFlags(cmd)
	return cmd
}

func newVariablesDeleteCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a global variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			proceed, err := Confirm(applyFlags, fmt.Sprintf("Delete variable %s?", args[0]))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "key": args[0]}))
				return nil
			}
			if err := app.Remote.DeleteVariable(cmd.Context(), args[0]); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(map[string]any{"deleted": args[0]}))
			return nil
		},
	}
	addMutationFlags(cmd)
	return cmd
}
