// Package lapsync aligns decoded clock readings with lap split times.
package lapsync

import (
	"errors"
	"fmt"

	"race-clock/internal/timeread"
)

// ErrNegativeLap is returned for a lap duration below zero.
var ErrNegativeLap = errors.New("negative lap duration")

// TenthsPerUnit converts lap durations (tenths of a second) to the clock's unit.
const TenthsPerUnit = 10

// Split is the outcome of one split request. Index 0 is the clock start;
// index i > 0 is the split after lap i.
type Split struct {
	Index int `json:"index"`
	// Lap is the duration of lap Index in tenths; 0 for the clock start.
	Lap int `json:"lap"`
	// Elapsed is the cumulative lap total in tenths.
	Elapsed int `json:"elapsed"`
	// Target is the clock reading the split waits for.
	Target int `json:"target"`

	// Matched is false when no remaining record reached Target.
	Matched bool `json:"matched"`
	// Position is the matched record's index in the series, -1 if unmatched.
	Position int                  `json:"position"`
	Record   timeread.FrameRecord `json:"record"`
}

// Result holds one Split per request, in request order.
type Result struct {
	Splits []Split `json:"splits"`
}

// Records returns the matched records in split order.
func (r Result) Records() []timeread.FrameRecord {
	out := make([]timeread.FrameRecord, 0, len(r.Splits))
	for _, s := range r.Splits {
		if s.Matched {
			out = append(out, s.Record)
		}
	}
	return out
}

// Unmatched returns the splits no record satisfied.
func (r Result) Unmatched() []Split {
	var out []Split
	for _, s := range r.Splits {
		if !s.Matched {
			out = append(out, s)
		}
	}
	return out
}

// cursor is a read position into an immutable series.
type cursor struct {
	series []timeread.FrameRecord
	next   int
}

// advance returns the first record at or after the cursor whose time is at
// least target and moves the cursor past it. The cursor stays put when
// nothing qualifies.
func (c *cursor) advance(target int) (int, bool) {
	for i := c.next; i < len(c.series); i++ {
		if c.series[i].Time >= target {
			c.next = i + 1
			return i, true
		}
	}
	return -1, false
}

// Synchronize matches each cumulative split to the first frame whose clock
// reaches it. The series is expected to be in capture order with
// non-decreasing times; it is neither re-sorted nor modified. A record is
// matched at most once and matched positions strictly increase.
func Synchronize(series []timeread.FrameRecord, laps []int) (Result, error) {
	for i, lap := range laps {
		if lap < 0 {
			return Result{}, fmt.Errorf("%w: lap %d is %d", ErrNegativeLap, i+1, lap)
		}
	}

	c := &cursor{series: series}
	res := Result{Splits: make([]Split, 0, len(laps)+1)}

	record := func(s Split) {
		pos, ok := c.advance(s.Target)
		s.Matched = ok
		s.Position = pos
		if ok {
			s.Record = series[pos]
		}
		res.Splits = append(res.Splits, s)
	}

	// The clock start is the first frame showing a nonzero time.
	record(Split{Index: 0, Target: 1})

	elapsed := 0
	for i, lap := range laps {
		elapsed += lap
		record(Split{
			Index:   i + 1,
			Lap:     lap,
			Elapsed: elapsed,
			Target:  elapsed / TenthsPerUnit,
		})
	}
	return res, nil
}
