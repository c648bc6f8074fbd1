package lapsync

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"race-clock/internal/timeread"
)

func series(times ...int) []timeread.FrameRecord {
	out := make([]timeread.FrameRecord, len(times))
	for i, ts := range times {
		out[i] = timeread.FrameRecord{
			Source:  fmt.Sprintf("test_%04d.png", i),
			Time:    ts,
			Display: fmt.Sprint(ts),
		}
	}
	return out
}

func TestSynchronize_Basic(t *testing.T) {
	s := series(0, 2, 5, 11, 20)
	res, err := Synchronize(s, []int{100, 100})
	require.NoError(t, err)

	want := []timeread.FrameRecord{s[1], s[3], s[4]}
	if diff := cmp.Diff(want, res.Records()); diff != "" {
		t.Errorf("matched records (-want +got):\n%s", diff)
	}
	assert.Empty(t, res.Unmatched())

	require.Len(t, res.Splits, 3)
	assert.Equal(t, Split{Index: 1, Lap: 100, Elapsed: 100, Target: 10, Matched: true, Position: 3, Record: s[3]}, res.Splits[1])
	assert.Equal(t, 20, res.Splits[2].Target)
}

func TestSynchronize_TruncatesTarget(t *testing.T) {
	// 123 + 109 = 232 tenths -> 23.
	s := series(0, 0, 1, 12, 13, 22, 23, 24)
	res, err := Synchronize(s, []int{123, 109})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 12, 23}, []int{res.Splits[0].Target, res.Splits[1].Target, res.Splits[2].Target})
	assert.Equal(t, []int{2, 3, 6}, []int{res.Splits[0].Position, res.Splits[1].Position, res.Splits[2].Position})
}

func TestSynchronize_OvershootAndTies(t *testing.T) {
	// The first record at or past the target wins, even if it overshoots.
	s := series(1, 1, 16, 17, 17)
	res, err := Synchronize(s, []int{150, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Splits[0].Position)
	assert.Equal(t, 2, res.Splits[1].Position)
	// A zero-length lap cannot reuse the previous frame.
	assert.Equal(t, 3, res.Splits[2].Position)
}

func TestSynchronize_UnmatchedSplit(t *testing.T) {
	s := series(0, 3, 8, 12)
	res, err := Synchronize(s, []int{100, 100, 20})
	require.NoError(t, err)

	require.Len(t, res.Splits, 4)
	assert.True(t, res.Splits[1].Matched)
	assert.False(t, res.Splits[2].Matched)
	assert.Equal(t, -1, res.Splits[2].Position)
	assert.False(t, res.Splits[3].Matched)

	unmatched := res.Unmatched()
	require.Len(t, unmatched, 2)
	assert.Equal(t, 20, unmatched[0].Target)
	assert.Len(t, res.Records(), 2)
}

func TestSynchronize_ClockNeverStarts(t *testing.T) {
	s := series(0, 0, 0)
	res, err := Synchronize(s, []int{5})
	require.NoError(t, err)

	assert.False(t, res.Splits[0].Matched)
	// 5 tenths truncates to 0, which the first untouched record satisfies.
	assert.True(t, res.Splits[1].Matched)
	assert.Equal(t, 0, res.Splits[1].Position)
}

func TestSynchronize_DoesNotModifySeries(t *testing.T) {
	s := series(0, 2, 5, 11, 20)
	before := append([]timeread.FrameRecord(nil), s...)
	_, err := Synchronize(s, []int{100, 100})
	require.NoError(t, err)
	assert.Equal(t, before, s)
}

func TestSynchronize_EmptyInputs(t *testing.T) {
	res, err := Synchronize(nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Splits, 1)
	assert.False(t, res.Splits[0].Matched)
	assert.Empty(t, res.Records())
}

func TestSynchronize_NegativeLap(t *testing.T) {
	_, err := Synchronize(series(1), []int{10, -1})
	assert.ErrorIs(t, err, ErrNegativeLap)
}

func TestSynchronize_MonotonicConsumption(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		times := make([]int, rng.Intn(40))
		for i := range times {
			times[i] = rng.Intn(120)
		}
		sort.Ints(times)
		laps := make([]int, rng.Intn(10))
		for i := range laps {
			laps[i] = rng.Intn(200)
		}

		res, err := Synchronize(series(times...), laps)
		require.NoError(t, err)
		require.Len(t, res.Splits, len(laps)+1)

		last := -1
		for _, sp := range res.Splits {
			if !sp.Matched {
				continue
			}
			assert.Greater(t, sp.Position, last, "positions must strictly increase")
			assert.GreaterOrEqual(t, sp.Record.Time, sp.Target)
			last = sp.Position
		}
	}
}
