package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flowctl/flowctl/pkg/remote"
)

// NewExecutionsCommand builds the `executions` group wrapping the remote
// platform's execution history (spec §4.G).
func NewExecutionsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "Inspect and retry remote workflow executions",
	}
	cmd.AddCommand(
		newExecutionsListCommand(app),
		newExecutionsGetCommand(app),
		newExecutionsDeleteCommand(app),
		newExecutionsRetryCommand(app),
	)
	return cmd
}

func newExecutionsListCommand(app *App) *cobra.Command {
	var workflowID, status, cursor string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executions, optionally scoped to a workflow or status",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			page, err := app.Remote.ListExecutions(cmd.Context(), remote.ExecutionFilter{
				WorkflowID: workflowID,
				Status:     status,
				Cursor:     cursor,
				Limit:      limit,
			})
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(page))
			return nil
		},
	}
	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "Filter by workflow id")
	cmd.Flags().StringVar(&status, "status", "", "Filter by execution status")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	return cmd
}

func newExecutionsGetCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a single execution record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			exec, err := app.Remote.GetExecution(cmd.Context(), args[0])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(exec))
			return nil
		},
	}
	return cmd
}

func newExecutionsDeleteCommand(app *App) *cobra.Command {
	var ids []string
	var all bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one or more execution records",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			if len(ids) == 0 {
				fatalUsage(cmd, "--ids is required")
				return nil
			}
			proceed, err := ConfirmBulkDelete(len(ids), all, applyFlags)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "ids": ids}))
				return nil
			}
			outcomes := RunBulk(cmd.Context(), "deleting executions", ids, func(ctx context.Context, id string) (struct{}, error) {
				return struct{}{}, app.Remote.DeleteExecution(ctx, id)
			})
			exitWith(io.EmitSuccess(outcomes))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Execution ids to delete")
	cmd.Flags().BoolVar(&all, "all", false, "Confirm a large/unbounded deletion")
	return cmd
}

func newExecutionsRetryCommand(app *App) *cobra.Command {
	var loadLatest bool
	cmd := &cobra.Command{
		Use:   "retry <id>",
		Short: "Re-run a past execution, optionally against the workflow's current version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			proceed, err := Confirm(applyFlags, "Retry execution "+args[0]+"?")
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "id": args[0]}))
				return nil
			}
			result, err := app.Remote.RetryExecution(cmd.Context(), args[0], loadLatest)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(result))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().BoolVar(&loadLatest, "load-latest", false, "Run against the workflow's current version instead of the version it originally ran")
	return cmd
}
