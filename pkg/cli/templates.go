package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/ratelimit"
)

// NewTemplatesCommand builds the `templates` group: read-only search and
// fetch over the bundled workflow template catalog.
func NewTemplatesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Search and fetch bundled workflow templates",
	}
	cmd.AddCommand(
		newTemplatesSearchCommand(app),
		newTemplatesGetCommand(app),
	)
	return cmd
}

func newTemplatesSearchCommand(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search bundled templates by name, description, or node usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if err := ratelimit.Wait(cmd.Context(), ratelimit.OperationKBLookup); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if limit <= 0 {
				limit = 20
			}
			results, err := app.KB.SearchTemplates(args[0], limit)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(results))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	return cmd
}

func newTemplatesGetCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <template-id>",
		Short: "Fetch a single template record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if err := ratelimit.Wait(cmd.Context(), ratelimit.OperationKBLookup); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			record, err := app.KB.GetTemplate(args[0])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if record == nil {
				exitWith(io.EmitError(apperr.New(apperr.KindNotFound, apperr.CodeENOENT, fmt.Sprintf("unknown template %q", args[0]))))
				return nil
			}
			exitWith(io.EmitSuccess(record))
			return nil
		},
	}
	return cmd
}
