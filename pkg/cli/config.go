package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand builds the `config` command group: a read-only view of
// the already-resolved configuration, for diagnosing precedence issues
// (spec §6's CLI flag > env > project file > user file > XDG file > default
// chain) without having to re-derive it by hand.
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect resolved configuration",
	}
	cmd.AddCommand(newConfigShowCommand(app))
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the fully resolved configuration (API key masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			cfg := app.Config
			exitWith(io.EmitSuccess(map[string]any{
				"host":              cfg.Host,
				"apiKey":            maskAPIKey(cfg.APIKey),
				"timeout":           cfg.Timeout.String(),
				"debug":             cfg.Debug,
				"profile":           cfg.Profile,
				"strictPermissions": cfg.StrictPermissions,
				"noColor":           cfg.NoColor,
			}))
			return nil
		},
	}
	return cmd
}
