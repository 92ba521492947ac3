// Package embeddb manages the named SQLite databases the wallet bridge keeps
// under one root directory.
package embeddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	_ "modernc.org/sqlite"
)

const (
	fileExt = ".db"
	dsnOpts = "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
)

var siblingSuffixes = []string{"-wal", "-shm", "-journal"}

var ErrInvalidName = errors.New("invalid database name")

var _ ports.DatabaseRegistry = (*Registry)(nil)

type Registry struct {
	root string
}

func NewRegistry(root string) (*Registry, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("database root is required")
	}
	return &Registry{root: filepath.Clean(root)}, nil
}

func (r *Registry) Root() string {
	return r.root
}

// Path returns the database file for name. Names may not contain path separators.
func (r *Registry) Path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(r.root, name+fileExt), nil
}

// Open opens (creating if needed) the named database and checks it responds.
func (r *Registry) Open(ctx context.Context, name string) (*sql.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.Path(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.root, 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+dsnOpts)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// Delete removes the database file and its journal siblings. Each removal is
// attempted independently; a missing file is not an error.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.Path(name)
	if err != nil {
		return err
	}

	var errs []error
	for _, candidate := range append([]string{path}, siblings(path)...) {
		if err := os.Remove(candidate); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", filepath.Base(candidate), err))
		}
	}
	return errors.Join(errs...)
}

// Names lists the databases currently present under the root.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read database dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	return names, nil
}

func siblings(path string) []string {
	out := make([]string, 0, len(siblingSuffixes))
	for _, suffix := range siblingSuffixes {
		out = append(out, path+suffix)
	}
	return out
}
