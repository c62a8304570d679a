// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
)

// setupScript represents a single setup file.
type setupScript struct {
	ID      int
	Comment string
	Path    string
}

// reScriptFile matches NNN_comment.sql
var reScriptFile = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// runScripts applies every setup script in fsys, in ID order, each in its
// own transaction. Scripts create the ordinary tables that
// functions are joined against; nothing records which scripts ran.
func runScripts(ctx context.Context, db *sql.DB, fsys fs.FS, logger *slog.Logger) error {
	scripts, err := listScriptFiles(fsys, logger)
	if err != nil {
		return fmt.Errorf("list scripts: %w", err)
	}
	if len(scripts) == 0 {
		logger.Debug("no setup scripts to apply")
		return nil
	}

	for _, s := range scripts {
		logger.Debug("applying setup script", "path", s.Path)
		if err := applyScript(ctx, db, fsys, s); err != nil {
			return fmt.Errorf("apply %s: %w", s.Path, err)
		}
	}
	return nil
}

// applyScript applies a single setup script.
func applyScript(ctx context.Context, db *sql.DB, fsys fs.FS, s setupScript) error {
	sqlBytes, err := fs.ReadFile(fsys, s.Path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	return tx.Commit()
}

// listScriptFiles reads setup scripts from the filesystem and returns them
// in ID order. Files without a .sql extension are ignored; a .sql file that
// is not named NNN_comment.sql is an error.
func listScriptFiles(fsys fs.FS, logger *slog.Logger) ([]setupScript, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var scripts []setupScript
	seenIDs := make(map[int]string)

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".sql" {
			logger.Debug("skipping non-script file", "name", name)
			continue
		}

		matches := reScriptFile.FindStringSubmatch(name)
		if matches == nil {
			return nil, fmt.Errorf("%q: setup scripts must be named NNN_comment.sql", name)
		}
		id, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid script id in %q: %w", name, err)
		}
		if existing, ok := seenIDs[id]; ok {
			return nil, fmt.Errorf("duplicate script ID %d: %q and %q", id, existing, name)
		}
		seenIDs[id] = name

		scripts = append(scripts, setupScript{
			ID:      id,
			Comment: matches[2],
			Path:    name,
		})
	}

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].ID < scripts[j].ID
	})

	return scripts, nil
}
