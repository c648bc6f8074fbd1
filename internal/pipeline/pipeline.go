// Package pipeline runs one race end to end: read every frame's clock, align
// the readings with the lap splits and optionally trim the capture.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"

	"race-clock/internal/classifier"
	"race-clock/internal/config"
	"race-clock/internal/digits"
	"race-clock/internal/frames"
	"race-clock/internal/lapsync"
	"race-clock/internal/scene"
	"race-clock/internal/timeread"
	"race-clock/internal/trim"
)

// Race identifies a race and its lap durations in tenths of a second.
type Race struct {
	ID   string `json:"id"`
	Laps []int  `json:"laps"`
}

// Report is the outcome of one run.
type Report struct {
	Race    Race                   `json:"race"`
	Dir     string                 `json:"dir"`
	Records []timeread.FrameRecord `json:"records"`
	Splits  lapsync.Result         `json:"splits"`
	// Trim is nil unless trimming was requested.
	Trim *trim.Range `json:"trim,omitempty"`
}

// Pipeline holds the collaborators shared by every race of a run.
type Pipeline struct {
	cfg     *config.Config
	reader  *timeread.Reader
	locator *trim.Locator
	logger  *log.Logger

	// Trim enables locating the race range.
	Trim bool
}

// New wires a pipeline from a validated configuration. hist may be nil when
// trimming is never requested. A nil logger discards output.
func New(cfg *config.Config, clf classifier.Classifier, hist scene.HistogramSource, logger *log.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline needs a configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	l, err := cfg.DigitLayout()
	if err != nil {
		return nil, err
	}
	ex, err := digits.NewExtractor(l)
	if err != nil {
		return nil, err
	}
	reader, err := timeread.NewReader(ex, clf, cfg.Workers, logger)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg, reader: reader, logger: logger}
	if hist != nil {
		p.locator = trim.NewLocator(scene.NewDetector(hist, logger), logger)
		p.locator.StartThreshold = cfg.StartThreshold
		p.locator.EndThreshold = cfg.EndThreshold
		p.locator.LookBack = cfg.LookBack
		p.locator.StopOnExtraDigit = l.ExtraDigit
	}
	return p, nil
}

// Run processes one race.
func (p *Pipeline) Run(race Race) (*Report, error) {
	dir := frames.RaceDir(p.cfg.PicDir, race.ID)
	paths, err := frames.List(dir, frames.DefaultPattern)
	if err != nil {
		return nil, err
	}
	p.logger.Printf("Race %s: %d frames in %s", race.ID, len(paths), dir)

	records, err := p.reader.ReadAll(paths)
	if err != nil {
		return nil, err
	}

	splits, err := lapsync.Synchronize(records, race.Laps)
	if err != nil {
		return nil, fmt.Errorf("race %s: %w", race.ID, err)
	}
	for _, s := range splits.Unmatched() {
		p.logger.Printf("Race %s: no frame reaches %d for split %d", race.ID, s.Target, s.Index)
	}

	report := &Report{Race: race, Dir: dir, Records: records, Splits: splits}
	if p.Trim {
		if p.locator == nil {
			return nil, errors.New("trim requested without a histogram source")
		}
		r, err := p.locator.Locate(paths, records)
		if err != nil {
			return nil, fmt.Errorf("race %s: %w", race.ID, err)
		}
		p.logger.Printf("Race %s: trimmed to frames [%d, %d) of %d", race.ID, r.Lower, r.Upper, len(paths))
		report.Trim = &r
	}
	return report, nil
}
