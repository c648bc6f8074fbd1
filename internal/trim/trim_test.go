package trim

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"race-clock/internal/scene"
	"race-clock/internal/timeread"
)

var (
	preRace  = scene.Histogram{9, 1, 1, 1}
	racing   = scene.Histogram{1, 2, 3, 4}
	postRace = scene.Histogram{4, 3, 2, 1}
)

// sceneSource maps frame names of the form "<scene>_<n>" to a histogram.
type sceneSource struct {
	calls int
}

func (s *sceneSource) Histogram(frame string) (scene.Histogram, error) {
	s.calls++
	switch {
	case strings.HasPrefix(frame, "pre_"):
		return preRace, nil
	case strings.HasPrefix(frame, "race_"):
		return racing, nil
	case strings.HasPrefix(frame, "post_"):
		return postRace, nil
	}
	return nil, fmt.Errorf("unknown frame %s", frame)
}

type shot struct {
	scene string
	time  int
	extra bool
}

func build(shots []shot) ([]string, []timeread.FrameRecord) {
	paths := make([]string, len(shots))
	records := make([]timeread.FrameRecord, len(shots))
	for i, f := range shots {
		paths[i] = fmt.Sprintf("%s_%04d.png", f.scene, i)
		records[i] = timeread.FrameRecord{Source: paths[i], Time: f.time, HasExtraDigit: f.extra}
	}
	return paths, records
}

func repeat(n int, f shot) []shot {
	out := make([]shot, n)
	for i := range out {
		out[i] = f
	}
	return out
}

func TestLocate(t *testing.T) {
	var shots []shot
	// 0-2 pre-race, 3-4 race before the clock runs, 5-10 racing, 11-13 finish.
	shots = append(shots, repeat(3, shot{scene: "pre"})...)
	shots = append(shots, repeat(2, shot{scene: "race", extra: true})...)
	shots = append(shots, repeat(6, shot{scene: "race", time: 7, extra: true})...)
	shots = append(shots, repeat(3, shot{scene: "post", time: 95})...)
	paths, records := build(shots)

	loc := NewLocator(scene.NewDetector(&sceneSource{}, nil), nil)
	r, err := loc.Locate(paths, records)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Lower)
	assert.Equal(t, 11, r.Upper)
	assert.Equal(t, 8, r.Len())
	assert.Equal(t, paths[3:11], r.Frames)
	for _, f := range r.Frames {
		assert.True(t, strings.HasPrefix(f, "race_"), f)
	}
}

func TestLocate_ClockNeverStops(t *testing.T) {
	var shots []shot
	shots = append(shots, repeat(2, shot{scene: "pre"})...)
	shots = append(shots, repeat(5, shot{scene: "race", time: 3, extra: true})...)
	paths, records := build(shots)

	r, err := NewLocator(scene.NewDetector(&sceneSource{}, nil), nil).Locate(paths, records)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Lower)
	assert.Equal(t, len(paths), r.Upper)
}

func TestLocate_WithoutExtraDigit(t *testing.T) {
	// A clock without the extra digit never reports HasExtraDigit.
	var shots []shot
	shots = append(shots, repeat(3, shot{scene: "pre"})...)
	for sec := 1; sec <= 30; sec++ {
		shots = append(shots, shot{scene: "race", time: sec})
	}
	shots = append(shots, repeat(3, shot{scene: "post", time: 30})...)
	paths, records := build(shots)

	loc := NewLocator(scene.NewDetector(&sceneSource{}, nil), nil)
	loc.StopOnExtraDigit = false
	r, err := loc.Locate(paths, records)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Lower)
	assert.Equal(t, len(paths), r.Upper)
	assert.Len(t, r.Frames, 33)

	// Left on, every frame looks stopped and the range collapses.
	loc.StopOnExtraDigit = true
	r, err = loc.Locate(paths, records)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestLocate_LookBackBoundsTheSearch(t *testing.T) {
	var shots []shot
	// 0-1 pre-race, 2-11 race before the clock runs, 12-14 racing.
	shots = append(shots, repeat(2, shot{scene: "pre"})...)
	shots = append(shots, repeat(10, shot{scene: "race"})...)
	shots = append(shots, repeat(3, shot{scene: "race", time: 1, extra: true})...)
	paths, records := build(shots)

	src := &sceneSource{}
	loc := NewLocator(scene.NewDetector(src, nil), nil)
	loc.LookBack = 4

	r, err := loc.Locate(paths, records)
	require.NoError(t, err)
	// The pre-race cut is out of reach, so the weakest pair in the window wins
	// and every pair there is equal: the anchor itself.
	assert.Equal(t, 12, r.Lower)
	assert.Equal(t, 5, src.calls, "only the look-back window is histogrammed")

	loc.LookBack = DefaultLookBack
	r, err = loc.Locate(paths, records)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Lower)
}

func TestLocate_Errors(t *testing.T) {
	loc := NewLocator(scene.NewDetector(&sceneSource{}, nil), nil)

	paths, records := build(repeat(4, shot{scene: "race", extra: true}))
	_, err := loc.Locate(paths, records)
	assert.ErrorIs(t, err, ErrClockNeverStarts)

	_, err = loc.Locate(nil, nil)
	assert.ErrorIs(t, err, ErrClockNeverStarts)

	_, err = loc.Locate(paths, records[:2])
	assert.Error(t, err)

	paths, records = build(repeat(3, shot{scene: "race"}))
	records[2].Time = 4
	paths[1] = "unknown_0001.png"
	_, err = loc.Locate(paths, records)
	assert.Error(t, err)
}
