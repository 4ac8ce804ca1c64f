package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTagsCommand builds the `tags` group wrapping the remote platform's
// workflow tag catalog.
func NewTagsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage remote platform workflow tags",
	}
	cmd.AddCommand(
		newTagsListCommand(app),
		newTagsCreateCommand(app),
		newTagsDeleteCommand(app),
	)
	return cmd
}

func newTagsListCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			tags, err := app.Remote.ListTags(cmd.Context())
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(tags))
			return nil
		},
	}
	return cmd
}

func newTagsCreateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			proceed, err := Confirm(applyFlagsFromCmd(cmd), fmt.Sprintf("Create tag %s?", args[0]))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "name": args[0]}))
				return nil
			}
			tag, err := app.Remote.CreateTag(cmd.Context(), args[0])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(tag))
			return nil
		},
	}
	addMutationFlags(cmd)
	return cmd
}

func newTagsDeleteCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			proceed, err := Confirm(applyFlags, fmt.Sprintf("Delete tag %s?", args[0]))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "id": args[0]}))
				return nil
			}
			if err := app.Remote.DeleteTag(cmd.Context(), args[0]); err != nil {
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
