package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/autofix"
	"github.com/flowctl/flowctl/pkg/diffengine"
	"github.com/flowctl/flowctl/pkg/ratelimit"
	"github.com/flowctl/flowctl/pkg/remote"
	"github.com/flowctl/flowctl/pkg/store"
	"github.com/flowctl/flowctl/pkg/validate"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// snapshotBeforeMutate paces version-store writes through the
// OperationVersionSnapshot bucket before handing off to CreateSnapshot; a
// rate-limit wait error is logged and swallowed, same as a snapshot error,
// since a pre-mutation backup is best-effort and must never block the
// mutation it is protecting.
func snapshotBeforeMutate(ctx context.Context, app *App, workflowID string, w *workflow.Workflow, trigger store.Trigger) {
	if err := ratelimit.Wait(ctx, ratelimit.OperationVersionSnapshot); err != nil {
		appLog.Printf("version snapshot rate-limit wait failed (continuing): %v", err)
		return
	}
	if _, err := app.Store.CreateSnapshot(workflowID, w, trigger); err != nil {
		appLog.Printf("snapshot before mutation failed (continuing): %v", err)
	}
}

// NewWorkflowsCommand builds the `workflows` group: the local engine
// operations (validate, autofix, diff) plus the remote CRUD/versioning
// surface spec §6 lists under it.
func NewWorkflowsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Validate, repair, diff, and manage workflow documents",
	}

	cmd.AddCommand(
		newWorkflowsValidateCommand(app),
		newWorkflowsAutofixCommand(app),
		newWorkflowsDiffCommand(app),
		newWorkflowsListCommand(app),
		newWorkflowsGetCommand(app),
		newWorkflowsCreateCommand(app),
		newWorkflowsUpdateCommand(app),
		newWorkflowsDeleteCommand(app),
		newWorkflowsActivateCommand(app),
		newWorkflowsDeactivateCommand(app),
		newWorkflowsTriggerCommand(app),
		newWorkflowsVersionsCommand(app),
	)
	return cmd
}

func newWorkflowsValidateCommand(app *App) *cobra.Command {
	var profile, mode string
	cmd := &cobra.Command{
		Use:   "validate <file|id|json>",
		Short: "Run the validation pipeline against a workflow (spec §4.C)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			w, err := LoadWorkflowSource(cmd.Context(), app, args[0], false)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			workflow.Normalize(w, app.KB)

			opts := validate.DefaultOptions()
			if profile != "" {
				opts.Profile = validate.Profile(profile)
			}
			if mode != "" {
				opts.Mode = validate.Mode(mode)
			}

			result := validate.Validate(w, app.Catalog(), opts)
			exitWith(io.EmitValidation(result))
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Validation profile: minimal|runtime|ai-friendly|strict (default runtime)")
	cmd.Flags().StringVar(&mode, "mode", "", "Validation mode: minimal|operation|full (default operation)")
	return cmd
}

func newWorkflowsAutofixCommand(app *App) *cobra.Command {
	var profile, confidence string
	var maxFixes int
	var fixTypes []string
	cmd := &cobra.Command{
		Use:   "autofix <file|id|json>",
		Short: "Generate and optionally apply repair operations for validation findings (spec §4.D)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)

			w, err := LoadWorkflowSource(cmd.Context(), app, args[0], false)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			workflow.Normalize(w, app.KB)

			vopts := validate.DefaultOptions()
			if profile != "" {
				vopts.Profile = validate.Profile(profile)
			}
			result := validate.Validate(w, app.Catalog(), vopts)

			aopts := autofix.Options{MaxFixes: maxFixes}
			if confidence != "" {
				aopts.MinConfidence = autofix.Confidence(confidence)
			}
			for _, ft := range fixTypes {
				aopts.FixTypes = append(aopts.FixTypes, autofix.FixType(ft))
			}

			candidates := autofix.Generate(w, app.Catalog(), result, aopts)

			proceed, err := Confirm(applyFlags, fmt.Sprintf("Apply %d fix(es)?", len(candidates)))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "candidates": candidates}))
				return nil
			}

			applied := autofix.Apply(w.Clone(), candidates, aopts, app.KB)

			snapshotBeforeMutate(cmd.Context(), app, workflowIDFor(args[0], w), w, store.TriggerAutofix)

			if IsLocalFile(args[0]) {
				if err := WriteWorkflowFile(args[0], applied.Workflow); err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
			}

			exitWith(io.EmitSuccess(applied))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringVar(&profile, "profile", "", "Validation profile driving which findings autofix consumes")
	cmd.Flags().StringVar(&confidence, "confidence", "", "Minimum fix confidence to apply: high|medium|low")
	cmd.Flags().IntVar(&maxFixes, "max-fixes", 0, "Cap the number of fixes applied (0 = unlimited)")
	cmd.Flags().StringSliceVar(&fixTypes, "fix-types", nil, "Restrict to these fix generators (comma-separated)")
	return cmd
}

func newWorkflowsDiffCommand(app *App) *cobra.Command {
	var opsPath string
	var continueOnError, dryRun bool
	cmd := &cobra.Command{
		Use:   "diff <file|id|json>",
		Short: "Apply a surgical sequence of diff operations to a workflow (spec §4.E)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)

			if opsPath == "" {
				fatalUsage(cmd, "--ops is required")
				return nil
			}

			w, err := LoadWorkflowSource(cmd.Context(), app, args[0], false)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			ops, err := ParseOpsArg(opsPath)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}

			mode := diffengine.ModeAtomic
			if continueOnError {
				mode = diffengine.ModeContinueOnError
			}

			result := diffengine.Apply(w.Clone(), ops, diffengine.Options{Mode: mode, DryRun: dryRun}, app.KB)

			if dryRun {
				exitWith(io.EmitSuccess(result))
				return nil
			}

			proceed, err := Confirm(applyFlags, fmt.Sprintf("Apply %d operation(s)?", len(ops)))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "result": result}))
				return nil
			}

			snapshotBeforeMutate(cmd.Context(), app, workflowIDFor(args[0], w), w, store.TriggerDiff)

			if IsLocalFile(args[0]) {
				if err := WriteWorkflowFile(args[0], result.Workflow); err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
			}

			exitWith(io.EmitSuccess(result))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringVar(&opsPath, "ops", "", "Path to a JSON file (or inline JSON array) of diff operations")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Apply best-effort instead of atomically")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the result without persisting it")
	return cmd
}

// workflowIDFor picks the version-store key for a mutation: the workflow's
// own id when it carries one, otherwise the path itself when arg is a local
// file, otherwise the workflow's Name.
func workflowIDFor(arg string, w *workflow.Workflow) string {
	if w.ID != "" {
		return w.ID
	}
	if IsLocalFile(arg) {
		return arg
	}
	return w.Name
}

func newWorkflowsListCommand(app *App) *cobra.Command {
	var active bool
	var activeSet bool
	var tags []string
	var cursor string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows on the remote platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			filter := remote.WorkflowFilter{Tags: tags, Cursor: cursor, Limit: limit}
			if activeSet {
				filter.Active = &active
			}
			page, err := app.Remote.ListWorkflows(cmd.Context(), filter)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(page))
			return nil
		},
	}
	cmd.Flags().BoolVar(&active, "active", false, "Filter to active (or, with --active=false, inactive) workflows")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Filter by tag")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		activeSet = cmd.Flags().Changed("active")
	}
	return cmd
}

func newWorkflowsGetCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a single workflow document by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			doc, err := app.Remote.GetWorkflow(cmd.Context(), args[0])
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(doc))
			return nil
		},
	}
	return cmd
}

func newWorkflowsCreateCommand(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new workflow on the remote platform from a local file",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if file == "" {
				fatalUsage(cmd, "--file is required")
				return nil
			}
			w, err := LoadWorkflowSource(cmd.Context(), app, file, false)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			doc, err := workflowToDoc(w)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}

			proceed, err := Confirm(applyFlagsFromCmd(cmd), fmt.Sprintf("Create remote workflow from %s?", file))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "document": doc}))
				return nil
			}

			created, err := app.Remote.CreateWorkflow(cmd.Context(), doc)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(created))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Local workflow JSON file to create remotely")
	return cmd
}

func newWorkflowsUpdateCommand(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a remote workflow's document from a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			if file == "" {
				fatalUsage(cmd, "--file is required")
				return nil
			}
			w, err := LoadWorkflowSource(cmd.Context(), app, file, false)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			doc, err := workflowToDoc(w)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}

			proceed, err := Confirm(applyFlags, fmt.Sprintf("Replace remote workflow %s?", args[0]))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "document": doc}))
				return nil
			}

			snapshotBeforeMutate(cmd.Context(), app, args[0], w, store.TriggerManual)

			updated, err := app.Remote.UpdateWorkflow(cmd.Context(), args[0], doc)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(updated))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Local workflow JSON file with the replacement document")
	return cmd
}

func newWorkflowsDeleteCommand(app *App) *cobra.Command {
	var ids []string
	var all bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one or more workflows by id",
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

			outcomes := RunBulk(cmd.Context(), "deleting workflows", ids, func(ctx context.Context, id string) (struct{}, error) {
				return struct{}{}, app.Remote.DeleteWorkflow(ctx, id)
			})
			exitWith(io.EmitSuccess(outcomes))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Workflow ids to delete")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every workflow visible to this API key (requires typed confirmation)")
	return cmd
}

func newWorkflowsActivateCommand(app *App) *cobra.Command {
	return newBulkToggleCommand(app, "activate", "Activate one or more workflows", func(c *remote.Client, ctx context.Context, id string) error {
		return c.ActivateWorkflow(ctx, id)
	})
}

func newWorkflowsDeactivateCommand(app *App) *cobra.Command {
	return newBulkToggleCommand(app, "deactivate", "Deactivate one or more workflows", func(c *remote.Client, ctx context.Context, id string) error {
		return c.DeactivateWorkflow(ctx, id)
	})
}

func newBulkToggleCommand(app *App, use, short string, fn func(*remote.Client, context.Context, string) error) *cobra.Command {
	var ids []string
	cmd := &cobra.Command{
		Use:   use + " --ids <id,id,...>",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			applyFlags := applyFlagsFromCmd(cmd)
			if len(ids) == 0 {
				fatalUsage(cmd, "--ids is required")
				return nil
			}
			proceed, err := Confirm(applyFlags, fmt.Sprintf("%s %d workflow(s)?", use, len(ids)))
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if !proceed {
				exitWith(io.EmitSuccess(map[string]any{"preview": true, "ids": ids}))
				return nil
			}
			outcomes := RunBulk(cmd.Context(), strings.TrimSuffix(use, "e")+"ing workflows", ids, func(ctx context.Context, id string) (struct{}, error) {
				return struct{}{}, fn(app.Remote, ctx, id)
			})
			exitWith(io.EmitSuccess(outcomes))
			return nil
		},
	}
	addMutationFlags(cmd)
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Workflow ids to "+use)
	return cmd
}

func newWorkflowsTriggerCommand(app *App) *cobra.Command {
	var method, body, bodyFile string
	var headers []string
	var timeoutSeconds int
	cmd := &cobra.Command{
		Use:   "trigger <webhook-url>",
		Short: "Fire a webhook trigger on the remote platform (spec §4.G)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)

			req := remote.WebhookRequest{URL: args[0], Method: method}
			if timeoutSeconds > 0 {
				req.Timeout = secondsToDuration(timeoutSeconds)
			}
			req.Headers = parseHeaderFlags(headers)

			switch {
			case bodyFile != "":
				data, err := readFileOrError(bodyFile)
				if err != nil {
					exitWith(io.EmitError(err))
					return nil
				}
				req.Body = data
			case body != "":
				req.Body = []byte(body)
			}

			resp, err := app.Remote.TriggerWebhook(cmd.Context(), req)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(resp))
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "POST", "HTTP method")
	cmd.Flags().StringVar(&body, "body", "", "Inline JSON request body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Path to a file containing the request body")
	cmd.Flags().StringSliceVar(&headers, "header", nil, "Extra header as key:value (repeatable)")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Request timeout in seconds (default 60s, hard ceiling enforced)")
	return cmd
}

func workflowToDoc(w *workflow.Workflow) (map[string]any, error) {
	data, err := workflow.Serialize(w, workflow.SerializeOptions{Full: false})
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := jsonUnmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindData, apperr.CodeIOError, "decode workflow document", err)
	}
	return doc, nil
}
