// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"fmt"
	"regexp"
	"strings"
)

// maxParams keeps the bound-parameter bitmask inside SQLite's int32 idxNum.
const maxParams = 30

// reIdentifier matches names usable for functions, columns and parameters.
var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validate checks a descriptor before it is registered.
func validate(d Descriptor) error {
	if !reIdentifier.MatchString(d.Name) {
		return fmt.Errorf("%w: function name %q", ErrInvalidDescriptor, d.Name)
	}
	if d.New == nil {
		return fmt.Errorf("%w: %s: nil factory", ErrInvalidDescriptor, d.Name)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("%w: %s: no output columns", ErrInvalidDescriptor, d.Name)
	}
	if len(d.Params) > maxParams {
		return fmt.Errorf("%w: %s: %d parameters, at most %d allowed", ErrInvalidDescriptor, d.Name, len(d.Params), maxParams)
	}

	// SQLite column names are case-insensitive
	seen := make(map[string]string, len(d.Columns)+len(d.Params))
	check := func(kind, name string) error {
		if !reIdentifier.MatchString(name) {
			return fmt.Errorf("%w: %s: %s name %q", ErrInvalidDescriptor, d.Name, kind, name)
		}
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s: %s %q collides with %s", ErrInvalidDescriptor, d.Name, kind, name, prev)
		}
		seen[key] = kind + " " + name
		return nil
	}
	for _, c := range d.Columns {
		if err := check("column", c); err != nil {
			return err
		}
	}
	for _, p := range d.Params {
		if err := check("parameter", p.Name); err != nil {
			return err
		}
		if _, err := normalizeValue(p.Default); err != nil {
			return fmt.Errorf("%w: %s: default for %q: %v", ErrInvalidDescriptor, d.Name, p.Name, err)
		}
	}
	return nil
}

// declareSchema builds the CREATE TABLE statement handed to SQLite: output
// columns first, then one HIDDEN column per parameter, both in declared
// order. The table name is ignored by sqlite3_declare_vtab.
func declareSchema(d *Descriptor) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE x(")
	for i, c := range d.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteIdent(c))
	}
	for _, p := range d.Params {
		sb.WriteString(", ")
		sb.WriteString(quoteIdent(p.Name))
		sb.WriteString(" HIDDEN")
	}
	sb.WriteString(")")
	return sb.String()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
