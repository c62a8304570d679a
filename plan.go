// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"strings"

	"modernc.org/sqlite/vtab"
)

const (
	costUnbound = 1e6
	rowsUnbound = 1 << 20
)

// plan is the outcome of matching the planner's constraints against the
// declared parameters.
type plan struct {
	mask  int64    // bit i set when parameter i is bound
	names []string // bound parameter names, in declared order
	cost  float64
	rows  int64
}

// matchPlan selects, for every parameter in declared order, the first usable
// equality constraint on its hidden column. Constraints on output columns,
// non-equality operators, unusable constraints and repeated constraints on
// an already bound parameter are left for SQLite to evaluate.
//
// Chosen constraints are rewritten in place: ArgIndex follows declared
// parameter order and Omit is set because binding enforces the equality.
func matchPlan(d *Descriptor, cs []vtab.Constraint) plan {
	nCols := len(d.Columns)
	chosen := make([]int, len(d.Params))
	for i := range chosen {
		chosen[i] = -1
	}
	for ci, c := range cs {
		p := c.Column - nCols
		if p < 0 || p >= len(d.Params) {
			continue
		}
		if !c.Usable || c.Op != vtab.OpEQ || chosen[p] >= 0 {
			continue
		}
		chosen[p] = ci
	}

	var pl plan
	arg := 0
	for p, ci := range chosen {
		if ci < 0 {
			continue
		}
		cs[ci].ArgIndex = arg
		cs[ci].Omit = true
		arg++
		pl.mask |= 1 << uint(p)
		pl.names = append(pl.names, d.Params[p].Name)
	}

	pl.cost = costUnbound
	pl.rows = rowsUnbound
	for range arg {
		pl.cost /= 10
		pl.rows >>= 1
	}
	if pl.rows < 1 {
		pl.rows = 1
	}
	return pl
}

// BestIndex implements vtab.Table.
func (t *table) BestIndex(info *vtab.IndexInfo) error {
	pl := matchPlan(t.desc, info.Constraints)
	info.IdxNum = pl.mask
	info.IdxStr = strings.Join(pl.names, ",")
	info.EstimatedCost = pl.cost
	info.EstimatedRows = pl.rows
	t.logger.Debug("vtfunc: best index",
		"func", t.desc.Name,
		"constraints", len(info.Constraints),
		"bound", info.IdxStr,
		"cost", pl.cost)
	return nil
}
