package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCredentialsCommand builds the `credentials` group wrapping the remote
// platform's credential store (spec §4.G). Credential payload bodies are
// always provided as inline JSON or a file, never prompted for, since this
// is a non-interactive engine, not a secrets vault UI.
func NewCredentialsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage remote platform credentials",
	}
	cmd.AddCommand(
		newCredentialsListCommand(app),
		newCredentialsSchemaCommand(app),
		newCredentialsCreateCommand(app),
		newCredentialsUpdateCommand(app),
		newCredentialsDeleteCommand(app),
	)
	return cmd
}

func newCredentialsListCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored credentials (metadata only, never the secret payload)",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			creds, err := app.Remote.ListCredentials(cmd.Context())
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(creds))
			return nil
		},
	}
	return cmd
}

func newCredentialsSchemaCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <type>",
		Short: "Fetch the field schema for a credential type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			schema, err := app.Remote.GetCredentialTypeSchema(cmd.Context(), args[0])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(schema))
			return nil
		},
	}
	return cmd
}

func newCredentialsCreateCommand(app *App) *cobra.Command {
	var name, credType, dataArg string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new credential from an inline JSON payload or file",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if name == "" || credType == "" || dataArg == "" {
				fatalUsage(cmd, "--name, --type, and --data are required")
				return nil
			}
			data, err := decodeCredentialData(dataArg)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			proceed, err := Confirm(applyFlagsFromCmd(cmd), fmt.Sprintf("Create credential %s?", name))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "name": name, "type": credType}))
				return nil
			}
			created, err := app.Remote.CreateCredential(cmd.Context(), name, credType, data)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(created))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Credential display name")
	cmd.Flags().StringVar(&credType, "type", "", "Credential type")
	cmd.Flags().StringVar(&dataArg, "data", "", "Credential field values as inline JSON or a path to a JSON file")
	return cmd
}

func newCredentialsUpdateCommand(app *App) *cobra.Command {
	var name, dataArg string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a credential's name and/or field values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			var data map[string]any
			if dataArg != "" {
				var err error
				data, err = decodeCredentialData(dataArg)
				if err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
			}
			proceed, err := Confirm(applyFlags, fmt.Sprintf("Update credential %s?", args[0]))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "id": args[0]}))
				return nil
			}
			updated, err := app.Remote.UpdateCredential(cmd.Context(), args[0], name, data)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(updated))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&dataArg, "data", "", "Replacement field values as inline JSON or a path to a JSON file")
	return cmd
}

func newCredentialsDeleteCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			proceed, err := Confirm(applyFlags, fmt.Sprintf("Delete credential %s?", args[0]))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "id": args[0]}))
				return nil
			}
			if err := app.Remote.DeleteCredential(cmd.Context(), args[0]); err != nil {
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

func decodeCredentialData(arg string) (map[string]any, error) {
	var data map[string]any
	if raw, ok := readLocalFile(arg); ok {
		if err := jsonUnmarshal(raw, &data); err != nil {
			return nil, err
		}
		return data, nil
	}
	if err := jsonUnmarshal([]byte(arg), &data); err != nil {
		return nil, err
	}
	return data, nil
}
