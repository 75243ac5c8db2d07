package boost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewDataset(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
		ds, err := NewDataset(X, []int{0, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, 3, ds.Len())
		assert.Equal(t, 2, ds.NumFeatures())
	})

	t.Run("LabelMismatch", func(t *testing.T) {
		X := mat.NewDense(3, 2, nil)
		_, err := NewDataset(X, []int{0, 1})
		assert.Error(t, err)
	})

	t.Run("NilMatrix", func(t *testing.T) {
		_, err := NewDataset(nil, []int{0})
		assert.Error(t, err)
	})
}

func TestTrainTestSplit(t *testing.T) {
	X := mat.NewDense(10, 2, nil)
	labels := make([]int, 10)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(10-i))
		labels[i] = i % 3
	}
	ds, err := NewDataset(X, labels)
	require.NoError(t, err)

	t.Run("Sizes", func(t *testing.T) {
		train, test, err := TrainTestSplit(ds, 0.3, 42)
		require.NoError(t, err)
		assert.Equal(t, 7, train.Len())
		assert.Equal(t, 3, test.Len())
	})

	t.Run("Deterministic", func(t *testing.T) {
		train1, _, err := TrainTestSplit(ds, 0.3, 42)
		require.NoError(t, err)
		train2, _, err := TrainTestSplit(ds, 0.3, 42)
		require.NoError(t, err)
		assert.True(t, mat.Equal(train1.X, train2.X))
		assert.Equal(t, train1.Labels, train2.Labels)
	})

	t.Run("CoversAllRows", func(t *testing.T) {
		train, test, err := TrainTestSplit(ds, 0.3, 7)
		require.NoError(t, err)

		seen := make(map[float64]bool)
		for _, part := range []*Dataset{train, test} {
			for i := 0; i < part.Len(); i++ {
				seen[part.X.At(i, 0)] = true
			}
		}
		assert.Len(t, seen, 10)
	})

	t.Run("InvalidFraction", func(t *testing.T) {
		_, _, err := TrainTestSplit(ds, 0, 42)
		assert.Error(t, err)
		_, _, err = TrainTestSplit(ds, 1, 42)
		assert.Error(t, err)
	})
}

func TestLoadDatasetNPY(t *testing.T) {
	dir := t.TempDir()
	xPath := filepath.Join(dir, "X.npy")
	yPath := filepath.Join(dir, "y.npy")

	writeNPY := func(path string, val interface{}) {
		f, err := os.Create(path)
		require.NoError(t, err)
		defer f.Close()
		require.NoError(t, npyio.Write(f, val))
	}

	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	writeNPY(xPath, X)
	writeNPY(yPath, []float64{0, 2, 1})

	ds, err := LoadDatasetNPY(xPath, yPath)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, ds.X))
	assert.Equal(t, []int{0, 2, 1}, ds.Labels)

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadDatasetNPY(filepath.Join(dir, "nope.npy"), yPath)
		assert.Error(t, err)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		badY := filepath.Join(dir, "bad.npy")
		writeNPY(badY, []float64{0, 1})
		_, err := LoadDatasetNPY(xPath, badY)
		assert.Error(t, err)
	})
}
