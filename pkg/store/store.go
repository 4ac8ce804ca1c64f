package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/logger"
	"github.com/gofrs/flock"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var storeLog = logger.New("store")

// dbFileMode is the permission bits data.db and its lock file are created
// with; dirMode is enforced on the containing directory (spec §4.F "mode
// 0700", §6 "user-writable directory").
const (
	dirMode = 0o700
	dbFileMode = 0o600
)

// OpenOptions parameterizes Open.
type OpenOptions struct {
	// StrictPermissions, when true, makes Open refuse to proceed (instead
	// of just warning) if the data directory or database file is readable
	// by group/other (spec §4.F "in strict-permissions mode refuse to
	// load").
	StrictPermissions bool
}

// Store is a handle on the local version store: one SQLite database per
// user data directory, writer-serialized across process invocations by an
// advisory file lock (spec §5 "single writer at a time guarded by a file
// lock; a reader proceeds without the lock").
type Store struct {
	db   *sqlx.DB
	lock *flock.Flock
	dir  string
}

// Open opens (creating if absent) the version store rooted at dir. dir is
// created with dirMode if it does not exist; if it already exists with
// looser permissions, Open warns (or, under StrictPermissions, refuses).
func Open(dir string, opts OpenOptions) (*Store, error) {
	if err := ensureDir(dir, opts.StrictPermissions); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "data.db")
	if err := checkFileMode(dbPath, opts.StrictPermissions); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "open version store", err)
	}
	db.SetMaxOpenConns(1) // sqlite is single-writer; the flock below serializes across processes, this serializes within one

	s := &Store{db: db, dir: dir, lock: flock.New(filepath.Join(dir, "data.db.lock"))}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "version store schema init", err)
	}

	if err := os.Chmod(dbPath, dbFileMode); err != nil {
		storeLog.Printf("could not enforce mode %o on %s: %v", dbFileMode, dbPath, err)
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func ensureDir(dir string, strict bool) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, dirMode)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "stat version store directory", err)
	}
	if !info.IsDir() {
		return apperr.New(apperr.KindIO, apperr.CodeIOError, fmt.Sprintf("%s exists and is not a directory", dir))
	}
	if info.Mode().Perm()&0o077 != 0 {
		msg := fmt.Sprintf("version store directory %s is readable by group or other (mode %o)", dir, info.Mode().Perm())
		if strict {
			return apperr.New(apperr.KindPermission, apperr.CodePermissionDenied, msg)
		}
		storeLog.Printf("%s", msg)
	}
	return nil
}

func checkFileMode(path string, strict bool) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // Open will create it
	}
	if err != nil {
		return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "stat version store database", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		msg := fmt.Sprintf("version store database %s is readable by group or other (mode %o)", path, info.Mode().Perm())
		if strict {
			return apperr.New(apperr.KindPermission, apperr.CodePermissionDenied, msg)
		}
		storeLog.Printf("%s", msg)
	}
	return nil
}

// withWriteLock serializes fn against every other process holding a Store
// on the same directory. Readers (List/Get/Compare/Stats) do not take the
// lock (spec §5 "a reader proceeds without the lock").
func (s *Store) withWriteLock(fn func() error) error {
	if err := s.lock.Lock(); err != nil {
		return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "acquire version store lock", err)
	}
	defer s.lock.Unlock()
	return fn()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	workflow_id    TEXT NOT NULL,
	version_number INTEGER NOT NULL,
	trigger        TEXT NOT NULL,
	node_count     INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	workflow_json  TEXT NOT NULL,
	PRIMARY KEY (workflow_id, version_number)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_workflow_created
	ON snapshots (workflow_id, created_at DESC);
`

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

// dbExt is the subset of *sqlx.Tx (and *sqlx.DB) that snapshot.go's helpers
// need, so they can run either inside a transaction or directly.
type dbExt interface {
	Exec(query string, args ...any) (sql.Result, error)
	Get(dest any, query string, args ...any) error
}

func dbFileInfo(dir string) (int64, error) {
	info, err := os.Stat(filepath.Join(dir, "data.db"))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
