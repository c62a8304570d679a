// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"modernc.org/sqlite/vtab"
)

// Value is a single SQL value passed to or returned from a producer.
// Values arriving from SQLite are int64, float64, string, []byte or nil.
type Value = vtab.Value

// Producer generates the rows of one table-valued function invocation.
//
// A fresh Producer is built for every scan. Initialize is called exactly
// once, before any call to Produce. Produce is called with successive row
// indexes starting at zero and returns either a row (ok == true) or the end
// of the stream (ok == false, row == nil). Errors are reserved for failures;
// they are never used to signal the end of the stream.
//
// A Producer may also implement io.Closer to release resources when its
// cursor is closed or re-opened.
type Producer interface {
	Initialize(args Args) error
	Produce(rowIndex int64) (row []Value, ok bool, err error)
}

// Param declares a named function parameter and the value it takes when the
// caller does not supply one.
type Param struct {
	Name    string
	Default Value
}

// Descriptor describes a table-valued function. The order of Params fixes
// the positional binding order of SQL arguments.
type Descriptor struct {
	Name    string
	Params  []Param
	Columns []string
	New     func() (Producer, error)
}

// ParamNames returns the declared parameter names in order.
func (d Descriptor) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}

// clone returns a copy that shares no slices with d.
func (d Descriptor) clone() *Descriptor {
	c := d
	c.Params = append([]Param(nil), d.Params...)
	c.Columns = append([]string(nil), d.Columns...)
	return &c
}

// Args holds the parameter values of one invocation, in declared order.
// Each entry is either the value bound by the query or the declared default.
type Args struct {
	params []Param
	values []Value
	bound  []bool
}

// bindArgs resolves every declared parameter once. mask has bit i set when
// parameter i was bound by the query plan; vals holds the bound values in
// parameter order.
func bindArgs(params []Param, mask int64, vals []Value) (Args, error) {
	a := Args{
		params: params,
		values: make([]Value, len(params)),
		bound:  make([]bool, len(params)),
	}
	if mask < 0 || (len(params) < 63 && mask>>uint(len(params)) != 0) {
		return a, fmt.Errorf("%w: plan binds parameters outside 0..%d", ErrConfiguration, len(params)-1)
	}
	next := 0
	for i, p := range params {
		if mask&(1<<uint(i)) == 0 {
			a.values[i] = p.Default
			continue
		}
		if next >= len(vals) {
			return a, fmt.Errorf("%w: parameter %q has no bound value", ErrConfiguration, p.Name)
		}
		v := vals[next]
		if b, ok := v.([]byte); ok {
			// the driver owns blob arguments only until Filter returns
			v = bytes.Clone(b)
		}
		a.values[i] = v
		a.bound[i] = true
		next++
	}
	if next != len(vals) {
		return a, fmt.Errorf("%w: %d arguments for %d parameters", ErrConfiguration, len(vals), next)
	}
	return a, nil
}

// NewArgs binds vals to the first len(vals) params, the way positional SQL
// arguments are bound; the rest take their defaults. It is meant for
// exercising producers outside of SQLite.
func NewArgs(params []Param, vals ...Value) (Args, error) {
	if len(vals) > len(params) {
		return Args{}, fmt.Errorf("%w: %d arguments for %d parameters", ErrConfiguration, len(vals), len(params))
	}
	return bindArgs(params, int64(1)<<uint(len(vals))-1, vals)
}

// Len returns the number of declared parameters.
func (a Args) Len() int { return len(a.values) }

// Name returns the name of parameter i.
func (a Args) Name(i int) string { return a.params[i].Name }

// At returns the value of parameter i.
func (a Args) At(i int) Value { return a.values[i] }

func (a Args) index(name string) int {
	for i, p := range a.params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the value of the named parameter, or nil if it is not
// declared.
func (a Args) Value(name string) Value {
	if i := a.index(name); i >= 0 {
		return a.values[i]
	}
	return nil
}

// IsBound reports whether the query supplied the named parameter.
func (a Args) IsBound(name string) bool {
	if i := a.index(name); i >= 0 {
		return a.bound[i]
	}
	return false
}

// IsNull reports whether the named parameter is SQL NULL.
func (a Args) IsNull(name string) bool { return a.Value(name) == nil }

// Int64 returns the named parameter as an integer. Text is parsed the way
// SQLite would apply integer affinity.
func (a Args) Int64(name string) (int64, error) {
	switch v := a.Value(name).(type) {
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s: %v is not an integer", name, v)
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%s: is null", name)
	default:
		return 0, fmt.Errorf("%s: unsupported type %T", name, v)
	}
}

// Float64 returns the named parameter as a float.
func (a Args) Float64(name string) (float64, error) {
	switch v := a.Value(name).(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("%s: is null", name)
	default:
		return 0, fmt.Errorf("%s: unsupported type %T", name, v)
	}
}

// String returns the named parameter as text.
func (a Args) String(name string) (string, error) {
	switch v := a.Value(name).(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case nil:
		return "", fmt.Errorf("%s: is null", name)
	default:
		return "", fmt.Errorf("%s: unsupported type %T", name, v)
	}
}

// normalizeValue widens Go values to the types the driver can return to
// SQLite.
func normalizeValue(v Value) (Value, error) {
	switch x := v.(type) {
	case nil, int64, float64, string, []byte, bool, time.Time:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrConfiguration, x)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrConfiguration, x)
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("%w: unsupported column value type %T", ErrConfiguration, v)
	}
}
