// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"fmt"
	"io"
	"log/slog"
)

// cursorState tracks where a cursor is in its lifecycle. exhausted and broken
// are terminal until the next open.
type cursorState int

const (
	stateCreated cursorState = iota
	stateInitialized
	stateProducing
	stateExhausted
	stateBroken
)

func (s cursorState) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateInitialized:
		return "initialized"
	case stateProducing:
		return "producing"
	case stateExhausted:
		return "exhausted"
	case stateBroken:
		return "broken"
	}
	return fmt.Sprintf("cursorState(%d)", int(s))
}

// cursor drives one producer instance for one scan of a function. It
// implements vtab.Cursor.
type cursor struct {
	desc   *Descriptor
	logger *slog.Logger

	state    cursorState
	prod     Producer
	args     Args
	rowIndex int64
	current  []Value
	err      error // sticky failure, set with stateBroken
}

func newCursor(desc *Descriptor, logger *slog.Logger) *cursor {
	return &cursor{desc: desc, logger: logger}
}

// open builds and initializes a fresh producer. Any state left by an earlier
// scan is discarded first, because SQLite re-filters the same cursor once
// per outer row of a join.
func (c *cursor) open(mask int64, vals []Value) error {
	c.release()
	c.state = stateCreated
	c.rowIndex = 0
	c.current = nil
	c.err = nil

	args, err := bindArgs(c.desc.Params, mask, vals)
	c.args = args
	if err != nil {
		return c.fail(OpInitialize, err)
	}

	var prod Producer
	err = guard(func() error {
		var err error
		prod, err = c.desc.New()
		if err == nil && prod == nil {
			err = fmt.Errorf("factory returned nil producer")
		}
		return err
	})
	if err != nil {
		return c.fail(OpConstruct, err)
	}
	c.prod = prod

	if err := guard(func() error { return prod.Initialize(args) }); err != nil {
		return c.fail(OpInitialize, err)
	}
	c.state = stateInitialized
	c.logger.Debug("vtfunc: cursor open", "func", c.desc.Name, "bound", mask)
	return nil
}

// pull asks the producer for the next row. It reports whether a row is
// available; on failure the cursor breaks and every later pull returns the
// same error without calling the producer.
func (c *cursor) pull() (bool, error) {
	switch c.state {
	case stateBroken:
		return false, c.err
	case stateExhausted:
		return false, nil
	case stateCreated:
		return false, c.fail(OpProduce, fmt.Errorf("%w: pull before open", ErrConfiguration))
	}

	var (
		row []Value
		ok  bool
	)
	err := guard(func() error {
		var err error
		row, ok, err = c.prod.Produce(c.rowIndex)
		return err
	})
	if err != nil {
		return false, c.fail(OpProduce, err)
	}
	if !ok {
		if row != nil {
			return false, c.fail(OpProduce, fmt.Errorf("%w: row returned with end of stream", ErrConfiguration))
		}
		c.state = stateExhausted
		c.logger.Debug("vtfunc: cursor exhausted", "func", c.desc.Name, "rows", c.rowIndex)
		return false, nil
	}
	if len(row) != len(c.desc.Columns) {
		return false, c.fail(OpProduce, fmt.Errorf("%w: row has %d values for %d columns", ErrConfiguration, len(row), len(c.desc.Columns)))
	}
	for i, v := range row {
		nv, err := normalizeValue(v)
		if err != nil {
			return false, c.fail(OpProduce, fmt.Errorf("column %q: %w", c.desc.Columns[i], err))
		}
		row[i] = nv
	}

	c.current = row
	c.rowIndex++
	c.state = stateProducing
	return true, nil
}

// fail moves the cursor to the broken state and records the error that all
// later pulls will return.
func (c *cursor) fail(op Op, err error) error {
	e := &Error{Func: c.desc.Name, Op: op, Row: c.rowIndex, Err: err}
	c.state = stateBroken
	c.err = e
	c.logger.Warn("vtfunc: producer failed", "func", c.desc.Name, "op", string(op), "row", c.rowIndex, "err", err)
	return e
}

// rowID is the zero-based index of the row most recently delivered.
func (c *cursor) rowID() int64 { return c.rowIndex - 1 }

// column returns output column i of the current row, or the bound value of
// a parameter for hidden columns.
func (c *cursor) column(i int) (Value, error) {
	nCols := len(c.desc.Columns)
	if i >= nCols && i < nCols+c.args.Len() {
		return normalizeValue(c.args.At(i - nCols))
	}
	if c.state != stateProducing {
		return nil, fmt.Errorf("vtfunc: %s: column %d read in state %s", c.desc.Name, i, c.state)
	}
	if i < 0 || i >= len(c.current) {
		return nil, fmt.Errorf("vtfunc: %s: column %d out of range", c.desc.Name, i)
	}
	return c.current[i], nil
}

// release drops the producer instance, closing it if it wants to be.
func (c *cursor) release() {
	if c.prod == nil {
		return
	}
	if cl, ok := c.prod.(io.Closer); ok {
		if err := guard(cl.Close); err != nil {
			c.logger.Warn("vtfunc: producer close failed", "func", c.desc.Name, "err", err)
		}
	}
	c.prod = nil
}

func (c *cursor) eof() bool {
	return c.state != stateInitialized && c.state != stateProducing
}

// Filter implements vtab.Cursor: it opens the cursor with the values bound
// by the chosen plan and positions it on the first row.
func (c *cursor) Filter(idxNum int, _ string, vals []Value) error {
	if err := c.open(int64(idxNum), vals); err != nil {
		return err
	}
	_, err := c.pull()
	return err
}

// Next implements vtab.Cursor.
func (c *cursor) Next() error {
	_, err := c.pull()
	return err
}

// Eof implements vtab.Cursor.
func (c *cursor) Eof() bool { return c.eof() }

// Column implements vtab.Cursor.
func (c *cursor) Column(col int) (Value, error) { return c.column(col) }

// Rowid implements vtab.Cursor.
func (c *cursor) Rowid() (int64, error) { return c.rowID(), nil }

// Close implements vtab.Cursor. It is safe in any state and may be called
// more than once.
func (c *cursor) Close() error {
	c.release()
	c.current = nil
	if c.state != stateBroken {
		c.state = stateExhausted
	}
	return nil
}
