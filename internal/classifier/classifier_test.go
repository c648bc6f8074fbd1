package classifier

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformCell(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func trainedModel(t *testing.T) *Model {
	t.Helper()
	tr := NewTrainer(4, 3)
	require.NoError(t, tr.Add("1", uniformCell(4, 3, 100)))
	require.NoError(t, tr.Add("1", uniformCell(4, 3, 120)))
	require.NoError(t, tr.Add("7", uniformCell(4, 3, 220)))
	require.NoError(t, tr.Add(Blank, uniformCell(4, 3, 0)))
	m, err := tr.Model()
	require.NoError(t, err)
	return m
}

func TestLabel(t *testing.T) {
	v, ok := Label("7").Digit()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = Blank.Digit()
	assert.False(t, ok)
	assert.True(t, Blank.Valid())
	assert.False(t, Label("x").Valid())
	assert.False(t, Label("12").Valid())

	for _, s := range []string{"_", "blank", "o"} {
		l, err := ParseLabel(s)
		require.NoError(t, err)
		assert.Equal(t, Blank, l)
	}
	l, err := ParseLabel("3")
	require.NoError(t, err)
	assert.Equal(t, Label("3"), l)
	_, err = ParseLabel("a")
	assert.Error(t, err)
}

func TestTrainer_Centroids(t *testing.T) {
	m := trainedModel(t)
	assert.Equal(t, []Label{"1", "7", Blank}, m.Labels())
	assert.Equal(t, 2, m.Centroids[0].Samples)
	assert.InDelta(t, 110.0, m.Centroids[0].Vector[5], 1e-9)
}

func TestTrainer_RejectsBadInput(t *testing.T) {
	tr := NewTrainer(4, 3)
	assert.ErrorIs(t, tr.Add("1", uniformCell(5, 3, 0)), ErrCellSize)
	assert.Error(t, tr.Add("x", uniformCell(4, 3, 0)))

	_, err := tr.Model()
	assert.Error(t, err, "an empty trainer cannot build a model")
}

func TestModel_Classify(t *testing.T) {
	m := trainedModel(t)
	labels, err := m.Classify([]*image.Gray{
		uniformCell(4, 3, 10),
		uniformCell(4, 3, 105),
		uniformCell(4, 3, 250),
	})
	require.NoError(t, err)
	assert.Equal(t, []Label{Blank, "1", "7"}, labels)

	_, err = m.Classify([]*image.Gray{uniformCell(3, 3, 0)})
	assert.ErrorIs(t, err, ErrCellSize)
}

func TestModel_SaveLoad(t *testing.T) {
	m := trainedModel(t)
	path := filepath.Join(t.TempDir(), "nested", ModelFileName)
	require.NoError(t, m.Save(path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, m.Labels(), loaded.Labels())
	assert.Equal(t, m.Centroids[1].Vector, loaded.Centroids[1].Vector)

	require.NoError(t, os.WriteFile(path, []byte(`{"width":4,"height":3,"centroids":[]}`), 0o644))
	_, err = LoadModel(path)
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	f := Func(func(cell *image.Gray) (Label, error) {
		if cell.Pix[0] == 0 {
			return Blank, nil
		}
		return "8", nil
	})
	labels, err := f.Classify([]*image.Gray{uniformCell(1, 1, 0), uniformCell(1, 1, 9)})
	require.NoError(t, err)
	assert.Equal(t, []Label{Blank, "8"}, labels)
}

func TestResolver(t *testing.T) {
	work := t.TempDir()
	exec := t.TempDir()
	r := Resolver{WorkDir: work, ExecDir: filepath.Join(exec, "bin")}

	_, err := r.Resolve("")
	assert.ErrorIs(t, err, ErrModelNotFound)

	// ../assets next to the executable.
	m := trainedModel(t)
	assetPath := filepath.Join(exec, "assets", ModelFileName)
	require.NoError(t, m.Save(assetPath))
	p, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(exec, "bin", "..", "assets", ModelFileName), p)

	// The working directory wins over assets.
	require.NoError(t, m.Save(filepath.Join(work, ModelFileName)))
	p, err = r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, ModelFileName), p)

	// An explicit path is the only candidate.
	_, err = r.Resolve(filepath.Join(work, "other.json"))
	assert.ErrorIs(t, err, ErrModelNotFound)

	loaded, path, err := r.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, ModelFileName), path)
	assert.Len(t, loaded.Centroids, 3)
}
