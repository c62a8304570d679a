// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // installs the vtab registration hook
	"modernc.org/sqlite/vtab"
)

// moduleName is the single driver-level module behind every function. The
// registry id and function name travel as module arguments.
const moduleName = "vtfunc"

func init() {
	// modernc.org/sqlite installs its module hook in its own init, which runs
	// before ours. Modules only reach connections opened after this point.
	if err := vtab.RegisterModule(nil, moduleName, module{}); err != nil {
		panic(fmt.Sprintf("vtfunc: register module: %v", err))
	}
}

// module resolves CREATE VIRTUAL TABLE ... USING vtfunc('<registry>') to the
// descriptor registered under the table's name.
type module struct{}

func (module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return connect(ctx, args)
}

func (module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return connect(ctx, args)
}

// connect declares the schema of a function's virtual table. args holds the
// module name, the database name, the table name and the module arguments.
func connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("vtfunc: expected registry argument, got %q", args)
	}
	name := unquote(args[2])
	id := unquote(args[3])

	r := lookupRegistry(id)
	if r == nil {
		return nil, fmt.Errorf("vtfunc: %s: unknown registry %q", name, id)
	}
	desc, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("vtfunc: %s: %w", name, ErrNotRegistered)
	}

	schema := declareSchema(desc)
	if err := ctx.Declare(schema); err != nil {
		return nil, fmt.Errorf("vtfunc: %s: declare %q: %w", name, schema, err)
	}
	r.logger.Debug("vtfunc: table connected", "func", name, "schema", schema)
	return &table{desc: desc, schema: schema, logger: r.logger}, nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		q := s[:1]
		return strings.ReplaceAll(s[1:len(s)-1], q+q, q)
	}
	return s
}

// table is the virtual table handle of one function on one connection. It
// holds no per-query state; SQLite may open many cursors on it at once.
type table struct {
	desc   *Descriptor
	schema string
	logger *slog.Logger
}

// Open implements vtab.Table.
func (t *table) Open() (vtab.Cursor, error) {
	return newCursor(t.desc, t.logger), nil
}

// Disconnect implements vtab.Table.
func (t *table) Disconnect() error {
	t.logger.Debug("vtfunc: table disconnected", "func", t.desc.Name)
	return nil
}

// Destroy implements vtab.Table.
func (t *table) Destroy() error {
	t.logger.Debug("vtfunc: table destroyed", "func", t.desc.Name)
	return nil
}
