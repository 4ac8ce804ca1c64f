package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flowctl/flowctl/pkg/httputil"
)

// NewHealthCommand builds the `health` command. It runs two checks: a raw,
// unauthenticated reachability probe against the configured host (so a
// down/unroutable host is reported distinctly from an auth failure), then
// the authenticated platform health check proper.
func NewHealthCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check connectivity and health of the configured remote platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)

			reachable, probeErr := probeReachability(cmd.Context(), app.Config.Host)

			status, err := app.Remote.Health(cmd.Context())
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}

			result := map[string]any{
				"reachable": reachable,
				"health":    status,
			}
			if probeErr != nil {
				result["probeError"] = probeErr.Error()
			}
			exitWith(io.EmitSuccess(result))
			return nil
		},
	}
	return cmd
}

// probeReachability issues a bare, unauthenticated HTTP request at host to
// distinguish "host doesn't respond at all" from "host responded but
// rejected our credentials" before the authenticated remote.Client call
// runs. A non-2xx response still counts as reachable: something answered.
func probeReachability(ctx context.Context, host string) (bool, error) {
	client := httputil.NewClient(nil)
	req, err := client.NewRequest("GET", host)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return true, nil
}
