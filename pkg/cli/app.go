// Package cli implements the Command Orchestrator (spec §4.H): the cobra
// command tree, global flags, output envelopes, dry-run/confirmation
// discipline, and bulk-dispatch concurrency that sit on top of every other
// component.
package cli

import (
	"os"
	"path/filepath"

	"github.com/flowctl/flowctl/pkg/config"
	"github.com/flowctl/flowctl/pkg/kb"
	"github.com/flowctl/flowctl/pkg/logger"
	"github.com/flowctl/flowctl/pkg/remote"
	"github.com/flowctl/flowctl/pkg/store"
	"github.com/flowctl/flowctl/pkg/validate"
)

var appLog = logger.New("cli:app")

// App wires together every component a command needs: the resolved
// configuration, the remote orchestration client, the local version store,
// and the node knowledge base. One App is built at process start and
// shared across the whole command tree (spec §5 "the Node KB is a
// process-wide read-only handle created once and shared").
type App struct {
	Config *config.Config
	Remote *remote.Client
	Store  *store.Store
	KB     *kb.Store
}

// kbPathEnv overrides the bundled knowledge base location, per SPEC_FULL.md
// §4.A storage detail.
const kbPathEnv = "FLOWCTL_KB_PATH"

// NewApp resolves cfg's dependent components. KB and Store opens are
// deferred to here rather than to first use: every command needs both, and
// a single clear startup failure is easier to diagnose than one buried
// inside whichever subcommand happens to touch the store first.
func NewApp(cfg *config.Config) (*App, error) {
	kbStore, err := kb.Open(resolveKBPath())
	if err != nil {
		return nil, err
	}

	dataDir, err := config.DataDir()
	if err != nil {
		kbStore.Close()
		return nil, err
	}
	versionStore, err := store.Open(dataDir, store.OpenOptions{StrictPermissions: cfg.StrictPermissions})
	if err != nil {
		kbStore.Close()
		return nil, err
	}

	remoteClient, err := remote.New(remote.Options{
		BaseURL: cfg.Host,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		kbStore.Close()
		versionStore.Close()
		return nil, err
	}

	return &App{Config: cfg, Remote: remoteClient, Store: versionStore, KB: kbStore}, nil
}

// Close releases the KB and version store handles. The remote client holds
// no resources of its own (its http.Transport is garbage collected
// normally), so there is nothing to close there.
func (a *App) Close() error {
	var firstErr error
	if err := a.Store.Close(); err != nil {
		firstErr = err
	}
	if err := a.KB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Catalog adapts the App's KB store to pkg/validate's narrower
// KnowledgeBase contract, the same adapter every validate/autofix call
// site needs.
func (a *App) Catalog() validate.KnowledgeBase {
	return validate.StoreAdapter{Store: a.KB}
}

// resolveKBPath finds the bundled nodes/templates database: FLOWCTL_KB_PATH
// if set, otherwise nodes.db next to the running executable, falling back
// to a relative "nodes.db" for local/dev runs where os.Executable fails.
func resolveKBPath() string {
	if p := os.Getenv(kbPathEnv); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		appLog.Printf("could not resolve executable path, falling back to relative nodes.db: %v", err)
		return "nodes.db"
	}
	return filepath.Join(filepath.Dir(exe), "nodes.db")
}
