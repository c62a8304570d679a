// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Execer runs statements on a single SQLite connection. *sql.Conn satisfies
// it, as does a *sql.DB limited to one open connection.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// registries maps registry ids to live registries so that the driver module
// can find descriptors from inside xCreate/xConnect.
var registries = struct {
	mu sync.RWMutex
	m  map[string]*Registry
}{
	m: make(map[string]*Registry),
}

func lookupRegistry(id string) *Registry {
	registries.mu.RLock()
	defer registries.mu.RUnlock()
	return registries.m[id]
}

// Registry holds the table-valued functions of one connection.
type Registry struct {
	id     string
	conn   Execer
	logger *slog.Logger

	mu    sync.RWMutex
	funcs map[string]*Descriptor // keyed by lower-cased name
}

// NewRegistry returns an empty registry bound to conn. Call Close before
// closing the connection to release it.
func NewRegistry(conn Execer, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		id:     uuid.NewString(),
		conn:   conn,
		logger: logger,
		funcs:  make(map[string]*Descriptor),
	}
	registries.mu.Lock()
	registries.m[r.id] = r
	registries.mu.Unlock()
	return r
}

// Register makes d callable from SQL on the registry's connection. It fails
// with ErrDuplicateName if the name is already registered here.
func (r *Registry) Register(ctx context.Context, d Descriptor) error {
	if err := validate(d); err != nil {
		return err
	}
	desc := d.clone()

	r.mu.Lock()
	if r.funcs == nil {
		r.mu.Unlock()
		return fmt.Errorf("vtfunc: register %s: registry closed", d.Name)
	}
	key := funcKey(desc.Name)
	if prev, ok := r.funcs[key]; ok {
		r.mu.Unlock()
		if prev.Name != desc.Name {
			return fmt.Errorf("%w: %s (registered as %s)", ErrDuplicateName, desc.Name, prev.Name)
		}
		return fmt.Errorf("%w: %s", ErrDuplicateName, desc.Name)
	}
	r.funcs[key] = desc
	r.mu.Unlock()

	// xCreate runs inside this statement and looks the descriptor up, so it
	// must be stored first.
	stmt := fmt.Sprintf("CREATE VIRTUAL TABLE temp.%s USING %s(%s)", quoteIdent(desc.Name), moduleName, quoteLiteral(r.id))
	if _, err := r.conn.ExecContext(ctx, stmt); err != nil {
		r.mu.Lock()
		delete(r.funcs, key)
		r.mu.Unlock()
		return fmt.Errorf("vtfunc: register %s: %w", desc.Name, err)
	}
	r.logger.Debug("vtfunc: registered", "func", desc.Name, "params", desc.ParamNames(), "columns", desc.Columns)
	return nil
}

// Unregister drops a function from the connection.
func (r *Registry) Unregister(ctx context.Context, name string) error {
	desc, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	if _, err := r.conn.ExecContext(ctx, "DROP TABLE temp."+quoteIdent(desc.Name)); err != nil {
		return fmt.Errorf("vtfunc: unregister %s: %w", desc.Name, err)
	}
	r.mu.Lock()
	delete(r.funcs, funcKey(desc.Name))
	r.mu.Unlock()
	r.logger.Debug("vtfunc: unregistered", "func", desc.Name)
	return nil
}

// Lookup returns the descriptor registered under name. Names match
// case-insensitively, as SQL table names do.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.funcs[funcKey(name)]
	return d, ok
}

func funcKey(name string) string { return strings.ToLower(name) }

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for _, d := range r.funcs {
		names = append(names, d.Name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Close drops every registered function and detaches the registry. It keeps
// going after a failed drop and returns all failures.
func (r *Registry) Close(ctx context.Context) error {
	var errs *multierror.Error
	for _, name := range r.Names() {
		if err := r.Unregister(ctx, name); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	r.mu.Lock()
	r.funcs = nil
	r.mu.Unlock()

	registries.mu.Lock()
	delete(registries.m, r.id)
	registries.mu.Unlock()
	return errs.ErrorOrNil()
}
