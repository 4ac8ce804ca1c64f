package cli

import (
	"github.com/spf13/cobra"
)

// NewAuthCommand builds the `auth` command group. There is no login flow
// to orchestrate — the API key is sourced from configuration, same as
// every other setting (spec §6) — so the only operation is a status check
// that confirms the configured credentials actually authenticate.
func NewAuthCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect the configured remote platform credentials",
	}
	cmd.AddCommand(newAuthStatusCommand(app))
	return cmd
}

func newAuthStatusCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Verify the configured API key authenticates against the remote platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			status, err := app.Remote.Health(cmd.Context())
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(map[string]any{
				"host":          app.Config.Host,
				"apiKeyMasked":  maskAPIKey(app.Config.APIKey),
				"authenticated": status.OK,
				"platform":      status,
			}))
			return nil
		},
	}
	return cmd
}

// maskAPIKey keeps only the last four characters of an API key, the same
// amount of disclosure the console's other credential-adjacent output
// settles on.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible {
		return "****"
	}
	return "****" + key[len(key)-visible:]
}
