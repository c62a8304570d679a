// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package producers

import (
	"errors"
	"math"

	"github.com/mdhender/vtfunc"
)

// Series returns the descriptor of series(start, stop, step), an arithmetic
// progression from start towards stop, inclusive. A NULL stop makes the
// sequence unbounded. Float arguments produce float values.
func Series() vtfunc.Descriptor {
	return vtfunc.Descriptor{
		Name: "series",
		Params: []vtfunc.Param{
			{Name: "start", Default: int64(0)},
			{Name: "stop", Default: nil},
			{Name: "step", Default: int64(1)},
		},
		Columns: []string{"value"},
		New:     func() (vtfunc.Producer, error) { return &series{}, nil },
	}
}

type series struct {
	float   bool
	bounded bool
	done    bool

	cur, stop, step    int64
	fcur, fstop, fstep float64
}

func (s *series) Initialize(args vtfunc.Args) error {
	s.bounded = !args.IsNull("stop")
	for _, name := range []string{"start", "stop", "step"} {
		if _, ok := args.Value(name).(float64); ok {
			s.float = true
		}
	}
	if args.IsNull("start") || args.IsNull("step") {
		return errors.New("start and step must not be null")
	}

	if s.float {
		return s.initFloat(args)
	}

	var err error
	if s.cur, err = args.Int64("start"); err != nil {
		return err
	}
	if s.step, err = args.Int64("step"); err != nil {
		return err
	}
	if s.bounded {
		if s.stop, err = args.Int64("stop"); err != nil {
			return err
		}
	}
	if s.step == 0 {
		return errors.New("step must not be zero")
	}
	return nil
}

func (s *series) initFloat(args vtfunc.Args) error {
	var err error
	if s.fcur, err = args.Float64("start"); err != nil {
		return err
	}
	if s.fstep, err = args.Float64("step"); err != nil {
		return err
	}
	if s.bounded {
		if s.fstop, err = args.Float64("stop"); err != nil {
			return err
		}
	}
	if s.fstep == 0 || math.IsNaN(s.fstep) {
		return errors.New("step must not be zero")
	}
	return nil
}

func (s *series) Produce(int64) ([]vtfunc.Value, bool, error) {
	if s.done {
		return nil, false, nil
	}
	if s.float {
		return s.produceFloat()
	}
	if s.bounded && ((s.step > 0 && s.cur > s.stop) || (s.step < 0 && s.cur < s.stop)) {
		s.done = true
		return nil, false, nil
	}
	v := s.cur
	// stop instead of wrapping around at the ends of the int64 range
	if (s.step > 0 && s.cur > math.MaxInt64-s.step) || (s.step < 0 && s.cur < math.MinInt64-s.step) {
		s.done = true
	} else {
		s.cur += s.step
	}
	return []vtfunc.Value{v}, true, nil
}

func (s *series) produceFloat() ([]vtfunc.Value, bool, error) {
	if s.bounded && ((s.fstep > 0 && s.fcur > s.fstop) || (s.fstep < 0 && s.fcur < s.fstop)) {
		s.done = true
		return nil, false, nil
	}
	v := s.fcur
	s.fcur += s.fstep
	return []vtfunc.Value{v}, true, nil
}
