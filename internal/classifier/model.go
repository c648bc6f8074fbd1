package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ErrCellSize is returned when a cell does not match the model's input size.
var ErrCellSize = errors.New("cell size does not match model")

const modelVersion = 1

// Centroid is the mean intensity vector of one label's training cells.
type Centroid struct {
	Label   Label     `json:"label"`
	Samples int       `json:"samples"`
	Vector  []float64 `json:"vector"`
}

// Model is a nearest-centroid classifier over flattened cell intensities.
type Model struct {
	Version   int        `json:"version"`
	Created   time.Time  `json:"created"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Centroids []Centroid `json:"centroids"`
}

// Flatten returns the cell's intensities in row-major order.
func Flatten(cell *image.Gray) []float64 {
	b := cell.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, float64(cell.GrayAt(x, y).Y))
		}
	}
	return out
}

// Classify labels each cell with its nearest centroid (Euclidean distance).
// Ties go to the centroid listed first.
func (m *Model) Classify(cells []*image.Gray) ([]Label, error) {
	labels := make([]Label, len(cells))
	for i, cell := range cells {
		b := cell.Bounds()
		if b.Dx() != m.Width || b.Dy() != m.Height {
			return nil, fmt.Errorf("%w: cell %d is %dx%d, model expects %dx%d",
				ErrCellSize, i, b.Dx(), b.Dy(), m.Width, m.Height)
		}
		vec := Flatten(cell)
		best := math.Inf(1)
		for _, c := range m.Centroids {
			if d := floats.Distance(vec, c.Vector, 2); d < best {
				best = d
				labels[i] = c.Label
			}
		}
	}
	return labels, nil
}

// Labels returns the labels the model can produce.
func (m *Model) Labels() []Label {
	out := make([]Label, len(m.Centroids))
	for i, c := range m.Centroids {
		out[i] = c.Label
	}
	return out
}

// Validate checks the model is usable.
func (m *Model) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid model input size %dx%d", m.Width, m.Height)
	}
	if len(m.Centroids) == 0 {
		return errors.New("model has no centroids")
	}
	seen := make(map[Label]bool, len(m.Centroids))
	for _, c := range m.Centroids {
		if !c.Label.Valid() {
			return fmt.Errorf("model has invalid label %q", c.Label)
		}
		if seen[c.Label] {
			return fmt.Errorf("model has duplicate label %q", c.Label)
		}
		seen[c.Label] = true
		if len(c.Vector) != m.Width*m.Height {
			return fmt.Errorf("centroid %q has %d values, want %d", c.Label, len(c.Vector), m.Width*m.Height)
		}
	}
	return nil
}

// LoadModel reads a model from a JSON file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// Save writes the model to path as JSON.
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Trainer accumulates labelled cells into per-label centroids.
type Trainer struct {
	width, height int
	sums          map[Label][]float64
	counts        map[Label]int
}

// NewTrainer creates a trainer for cells of the given size.
func NewTrainer(width, height int) *Trainer {
	return &Trainer{
		width:  width,
		height: height,
		sums:   make(map[Label][]float64),
		counts: make(map[Label]int),
	}
}

// Add records one training cell.
func (t *Trainer) Add(label Label, cell *image.Gray) error {
	if !label.Valid() {
		return fmt.Errorf("invalid digit label %q", label)
	}
	b := cell.Bounds()
	if b.Dx() != t.width || b.Dy() != t.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrCellSize, b.Dx(), b.Dy(), t.width, t.height)
	}
	sum, ok := t.sums[label]
	if !ok {
		sum = make([]float64, t.width*t.height)
		t.sums[label] = sum
	}
	floats.Add(sum, Flatten(cell))
	t.counts[label]++
	return nil
}

// Samples returns the number of cells recorded for label.
func (t *Trainer) Samples(label Label) int {
	return t.counts[label]
}

// Model builds the classifier. Centroids are ordered by label.
func (t *Trainer) Model() (*Model, error) {
	m := &Model{
		Version: modelVersion,
		Created: time.Now().UTC(),
		Width:   t.width,
		Height:  t.height,
	}
	for label, sum := range t.sums {
		vec := make([]float64, len(sum))
		copy(vec, sum)
		floats.Scale(1/float64(t.counts[label]), vec)
		m.Centroids = append(m.Centroids, Centroid{Label: label, Samples: t.counts[label], Vector: vec})
	}
	sort.Slice(m.Centroids, func(i, j int) bool { return m.Centroids[i].Label < m.Centroids[j].Label })
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
