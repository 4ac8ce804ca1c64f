package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowctl/flowctl/pkg/constants"
)

// version is set by SetVersionInfo, mirroring the teacher's build-time
// version variable plumbed in from cmd/flowctl/main.go.
var version = "dev"

// SetVersionInfo records the build-time version string for the version
// command/flag template.
func SetVersionInfo(v string) {
	version = v
}

// NewRootCommand builds the full flowctl command tree (spec §6 "grouped
// workflows, nodes, executions, credentials, variables, tags, templates,
// audit, auth, health, config, completion").
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:     constants.CLIExtensionPrefix,
		Short:   "Offline-first workflow engine for n8n-style workflow documents",
		Version: version,
		Long: `flowctl validates, repairs, and diffs n8n-style workflow JSON offline,
against a bundled node knowledge base, and talks to a remote orchestration
platform only when a command needs to.

Common tasks:
  flowctl workflows validate my-workflow.json
  flowctl workflows autofix my-workflow.json --apply
  flowctl workflows diff my-workflow.json ops.json --apply
  flowctl nodes search "http request"
  flowctl workflows versions list <workflow-id>`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().Bool("json", false, "Emit the stable JSON output envelope (spec §4.H)")
	root.PersistentFlags().String("save", "", "Write the full output envelope to this path in addition to stdout")
	root.PersistentFlags().BoolP("verbose", "v", false, "Include info/suggestion findings in console output")
	root.PersistentFlags().Bool("quiet", false, "Suppress non-essential console output")
	root.PersistentFlags().Bool("no-color", false, "Disable ANSI styling in console output")
	root.PersistentFlags().String("profile", "", "Named configuration profile to use")

	for _, g := range []*cobra.Group{
		{ID: "workflows", Title: "Workflow Commands:"},
		{ID: "catalog", Title: "Catalog Commands:"},
		{ID: "remote", Title: "Remote Platform Commands:"},
		{ID: "admin", Title: "Administration Commands:"},
	} {
		root.AddGroup(g)
	}

	workflowsCmd := NewWorkflowsCommand(app)
	workflowsCmd.GroupID = "workflows"
	root.AddCommand(workflowsCmd)

	nodesCmd := NewNodesCommand(app)
	nodesCmd.GroupID = "catalog"
	root.AddCommand(nodesCmd)

	templatesCmd := NewTemplatesCommand(app)
	templatesCmd.GroupID = "catalog"
	root.AddCommand(templatesCmd)

	executionsCmd := NewExecutionsCommand(app)
	executionsCmd.GroupID = "remote"
	root.AddCommand(executionsCmd)

	credentialsCmd := NewCredentialsCommand(app)
	credentialsCmd.GroupID = "remote"
	root.AddCommand(credentialsCmd)

	variablesCmd := NewVariablesCommand(app)
	variablesCmd.GroupID = "remote"
	root.AddCommand(variablesCmd)

	tagsCmd := NewTagsCommand(app)
	tagsCmd.GroupID = "remote"
	root.AddCommand(tagsCmd)

	auditCmd := NewAuditCommand(app)
	auditCmd.GroupID = "remote"
	root.AddCommand(auditCmd)

	healthCmd := NewHealthCommand(app)
	healthCmd.GroupID = "remote"
	root.AddCommand(healthCmd)

	authCmd := NewAuthCommand(app)
	authCmd.GroupID = "admin"
	root.AddCommand(authCmd)

	configCmd := NewConfigCommand(app)
	configCmd.GroupID = "admin"
	root.AddCommand(configCmd)

	root.AddCommand(NewCompletionCommand())

	return root
}

// ioFromCmd reads the global output flags off cmd (persistent flags merge
// into every subcommand's FlagSet at execution time).
func ioFromCmd(cmd *cobra.Command) IO {
	jsonOut, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetString("save")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return IO{JSON: jsonOut, SavePath: save, Verbose: verbose, Quiet: quiet, NoColor: noColor}
}

func applyFlagsFromCmd(cmd *cobra.Command) ApplyFlags {
	apply, _ := cmd.Flags().GetBool("apply")
	force, _ := cmd.Flags().GetBool("force")
	yes, _ := cmd.Flags().GetBool("yes")
	return ApplyFlags{Apply: apply, Force: force, Yes: yes}
}

func addMutationFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("apply", false, "Actually perform the change instead of previewing it")
	cmd.Flags().Bool("force", false, "Skip confirmation and apply (alias of --apply for scripting)")
	cmd.Flags().Bool("yes", false, "Skip confirmation and apply")
}

// exitWith prints nothing further (the Emit* helpers already wrote the
// envelope/message) and terminates the process with code.
func exitWith(code int) {
	os.Exit(code)
}

func fatalUsage(cmd *cobra.Command, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	_ = cmd.Usage()
	os.Exit(64)
}
