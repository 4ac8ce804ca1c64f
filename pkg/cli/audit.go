package cli

import (
	"github.com/spf13/cobra"
)

// NewAuditCommand builds the `audit` command, a thin wrapper over the
// remote platform's security/configuration audit endpoint.
func NewAuditCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Fetch the remote platform's security and configuration audit report",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			report, err := app.Remote.Audit(cmd.Context())
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(report))
			return nil
		},
	}
	return cmd
}
