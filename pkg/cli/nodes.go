package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/kb"
	"github.com/flowctl/flowctl/pkg/ratelimit"
)

// NewNodesCommand builds the `nodes` group: read-only Node Knowledge Base
// lookup and search (spec §4.A).
func NewNodesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Look up and search the bundled node type catalog",
	}
	cmd.AddCommand(
		newNodesSearchCommand(app),
		newNodesGetCommand(app),
		newNodesPropertiesCommand(app),
		newNodesSimilarCommand(app),
	)
	return cmd
}

func newNodesSearchCommand(app *App) *cobra.Command {
	var mode string
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank-search the node catalog (OR/AND/FUZZY)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if err := ratelimit.Wait(cmd.Context(), ratelimit.OperationKBLookup); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			searchMode := kb.SearchModeOR
			if mode != "" {
				searchMode = kb.SearchMode(mode)
			}
			results, err := app.KB.Search(args[0], searchMode, limit)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(results))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Search mode: OR|AND|FUZZY (default OR)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	return cmd
}

func newNodesGetCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <type-or-alias>",
		Short: "Fetch a node type descriptor by full type or short alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if err := ratelimit.Wait(cmd.Context(), ratelimit.OperationKBLookup); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			nodeType := args[0]
			if full, ok := app.KB.ExpandAlias(nodeType); ok {
				nodeType = full
			}
			descriptor, err := app.KB.Lookup(nodeType)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if descriptor == nil {
				exitWith(io.EmitError(apperr.New(apperr.KindNotFound, apperr.CodeENOENT, fmt.Sprintf("unknown node type %q", args[0]))))
				return nil
			}
			exitWith(io.EmitSuccess(descriptor))
			return nil
		},
	}
	return cmd
}

func newNodesPropertiesCommand(app *App) *cobra.Command {
	var nodeType string
	cmd := &cobra.Command{
		Use:   "properties <query>",
		Short: "Search property descriptors, optionally scoped to one node type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if err := ratelimit.Wait(cmd.Context(), ratelimit.OperationKBLookup); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			results, err := app.KB.SearchProperties(args[0], nodeType)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(results))
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeType, "type", "", "Restrict the search to this node type")
	return cmd
}

func newNodesSimilarCommand(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar <bad-type>",
		Short: "Suggest corrections for an unrecognized node type (spec §4.A similarTypes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io := ioFromCmd(cmd)
			if err := ratelimit.Wait(cmd.Context(), ratelimit.OperationKBLookup); err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			if limit <= 0 {
				limit = 5
			}
			results, err := app.KB.SimilarTypes(args[0], limit)
			if err != nil {
				exitWith(io.EmitError(err))
				return nil
			}
			exitWith(io.EmitSuccess(results))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum suggestions")
	return cmd
}
