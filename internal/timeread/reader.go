package timeread

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"race-clock/internal/classifier"
	"race-clock/internal/digits"
	"race-clock/internal/frames"
)

// Reader decodes the clock of every frame of a race.
type Reader struct {
	extractor  *digits.Extractor
	classifier classifier.Classifier
	workers    int
	logger     *log.Logger
}

// NewReader creates a reader. workers <= 0 uses one worker per CPU; a nil
// logger discards output.
func NewReader(ex *digits.Extractor, clf classifier.Classifier, workers int, logger *log.Logger) (*Reader, error) {
	if ex == nil || clf == nil {
		return nil, errors.New("reader needs an extractor and a classifier")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Reader{extractor: ex, classifier: clf, workers: workers, logger: logger}, nil
}

// ReadFile decodes one frame.
func (r *Reader) ReadFile(path string) (FrameRecord, error) {
	cells, err := r.extractor.ExtractFile(path)
	if err != nil {
		return FrameRecord{}, err
	}
	labels, err := r.classifier.Classify(cells)
	if err != nil {
		return FrameRecord{}, fmt.Errorf("%s: failed to classify digits: %w", path, err)
	}
	if len(labels) != len(cells) {
		return FrameRecord{}, fmt.Errorf("%s: classifier returned %d labels for %d cells", path, len(labels), len(cells))
	}
	reading, err := Assemble(labels, r.extractor.Layout())
	if err != nil {
		return FrameRecord{}, fmt.Errorf("%s: %w", path, err)
	}
	r.logger.Printf("Time : %s. Sec : %d (%s)", reading.Display, reading.Time, path)
	return FrameRecord{
		Source:        path,
		Time:          reading.Time,
		Display:       reading.Display,
		HasExtraDigit: reading.HasExtraDigit,
	}, nil
}

// ReadAll decodes paths and returns one record per path in the same order.
// Frames are decoded concurrently; the first failure aborts the batch.
func (r *Reader) ReadAll(paths []string) ([]FrameRecord, error) {
	records := make([]FrameRecord, len(paths))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			rec, err := r.ReadFile(p)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadDir lists dir with frames.List and reads every frame.
func (r *Reader) ReadDir(dir, pattern string) ([]FrameRecord, error) {
	paths, err := frames.List(dir, pattern)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("Reading %d frames from %s", len(paths), dir)
	return r.ReadAll(paths)
}
