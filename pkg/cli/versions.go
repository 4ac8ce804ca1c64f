package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/store"
	"github.com/flowctl/flowctl/pkg/validate"
)

// newWorkflowsVersionsCommand builds `workflows versions`, the Local
// Version Store surface (spec §4.F): list, get, compare, rollback, prune.
func newWorkflowsVersionsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Inspect and manage local workflow version snapshots",
	}
	cmd.AddCommand(
		newVersionsListCommand(app),
		newVersionsGetCommand(app),
		newVersionsCompareCommand(app),
		newVersionsRollbackCommand(app),
		newVersionsPruneCommand(app),
		newVersionsStatsCommand(app),
	)
	return cmd
}

func newVersionsListCommand(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list <workflow-id>",
		Short: "List snapshots for a workflow, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			versions, err := app.Store.List(args[0], limit)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(versions))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of versions to return (0 = all)")
	return cmd
}

func newVersionsGetCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <workflow-id> <version>",
		Short: "Fetch a single stored snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			n, err := parseVersionArg(args[1])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			snap, err := app.Store.Get(args[0], n)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if snap == nil {
				exitWith(io.EmitError(apperr.New(apperr.KindNotFound, apperr.CodeENOENT, fmt.Sprintf("no version %d for workflow %q", n, args[0]))))
				return nil
			}
			exitWith(io.EmitSuccess(snap))
			return nil
		},
	}
	return cmd
}

func newVersionsCompareCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <workflow-id> <from> <to>",
		Short: "Structurally diff two stored snapshots",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			from, err := parseVersionArg(args[1])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			to, err := parseVersionArg(args[2])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			result, err := app.Store.Compare(args[0], from, to)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(result))
			return nil
		},
	}
	return cmd
}

func newVersionsRollbackCommand(app *App) *cobra.Command {
	var toVersion int
	var noBackup, validateBefore bool
	cmd := &cobra.Command{
		Use:   "rollback <workflow-id>",
		Short: "Restore a workflow to a previously snapshotted version (spec §4.F)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			if toVersion <= 0 {
				fatalUsage(cmd, "--to-version is required")
				return nil
			}

			workflowID := args[0]

			if validateBefore {
				target, err := app.Store.Get(workflowID, toVersion)
				if err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
				if target == nil {
					exitWith(io.EmitError(apperr.New(apperr.KindNotFound, apperr.CodeENOENT, fmt.Sprintf("no version %d for workflow %q", toVersion, workflowID))))
					return nil
				}
				w, err := (&store.RollbackResult{WorkflowJSON: target.WorkflowJSON}).RestoredWorkflow()
				if err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
				result := validate.Validate(w, app.Catalog(), validate.DefaultOptions())
				if !result.Valid {
					exitWith(io.EmitValidation(result))
					return nil
				}
			}

			proceed, err := Confirm(applyFlags, fmt.Sprintf("Roll back %s to version %d?", workflowID, toVersion))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "toVersion": toVersion}))
				return nil
			}

			var current *workflowCurrentState
			current, err = loadCurrentState(cmd.Context(), app, workflowID)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}

			result, err := app.Store.Rollback(workflowID, current.workflow, toVersion, store.RollbackOptions{
				ValidateBefore: validateBefore,
				Backup:         !noBackup,
			})
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}

			restored, err := result.RestoredWorkflow()
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}

			if IsLocalFile(workflowID) {
				if err := WriteWorkflowFile(workflowID, restored); err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
			} else {
				doc, err := workflowToDoc(restored)
				if err == nil {
					_, _ = app.Remote.UpdateWorkflow(cmd.Context(), workflowID, doc)
				}
			}

			exitWith(io.EmitSuccess(result))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().IntVar(&toVersion, "to-version", 0, "Version number to roll back to")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip snapshotting the current state before rolling back")
	cmd.Flags().BoolVar(&validateBefore, "validate-before", false, "Refuse to roll back if the target snapshot fails validation")
	return cmd
}

func newVersionsPruneCommand(app *App) *cobra.Command {
	var keep int
	var deleteAll bool
	cmd := &cobra.Command{
		Use:   "prune <workflow-id>",
		Short: "Drop all but the most recent N snapshots for a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			prompt := fmt.Sprintf("Prune versions of %s?", args[0])
			if deleteAll {
				prompt = fmt.Sprintf("Delete every version of %s?", args[0])
			}
			proceed, err := Confirm(applyFlagsFromCmd(cmd), prompt)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "workflowId": args[0], "deleteAll": deleteAll, "keep": keep}))
				return nil
			}
			if deleteAll {
				if err := app.Store.DeleteAll(args[0]); err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
				exitWith(io.EmitSuccess(map[string]any{"workflowId": args[0], "deleted": "all"}))
				return nil
			}
			if keep <= 0 {
				keep = 10
			}
			removed, err := app.Store.Prune(args[0], keep)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(map[string]any{"workflowId": args[0], "kept": keep, "removed": removed}))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().IntVar(&keep, "keep", 10, "Number of most-recent versions to retain")
	cmd.Flags().BoolVar(&deleteAll, "delete-all", false, "Delete every version for this workflow")
	return cmd
}

func newVersionsStatsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the local version store",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			stats, err := app.Store.Stats()
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(stats))
			return nil
		},
	}
	return cmd
}

func parseVersionArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, apperr.New(apperr.KindUsage, apperr.CodeMissingArgument, "version must be a positive integer: "+s)
	}
	return n, nil
}
