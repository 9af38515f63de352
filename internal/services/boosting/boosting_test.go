package boosting

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepDataset(n int) Dataset {
	d := Dataset{X: make([][]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		d.X[i] = []float64{float64(i), float64(i % 7)}
		if i >= n/2 {
			d.Y[i] = 1
		}
	}
	return d
}

func noisyDataset(n, width int, seed int64) Dataset {
	rng := rand.New(rand.NewSource(seed))
	d := Dataset{X: make([][]float64, n), Y: make([]float64, n)}
	for i := range d.X {
		row := make([]float64, width)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		d.X[i] = row
		if row[0]+0.5*row[1]+0.3*rng.NormFloat64() > 0 {
			d.Y[i] = 1
		}
	}
	return d
}

func TestWalkForward(t *testing.T) {
	t.Run("layout matches expanding window splits", func(t *testing.T) {
		folds, err := WalkForward(100, 5)
		require.NoError(t, err)
		require.Len(t, folds, 5)

		starts := []int{20, 36, 52, 68, 84}
		for i, f := range folds {
			assert.Equal(t, i, f.Index)
			assert.Equal(t, 0, f.Train.Start)
			assert.Equal(t, starts[i], f.Train.End)
			assert.Equal(t, starts[i], f.Test.Start)
			assert.Equal(t, 16, f.Test.Len())
		}
		assert.Equal(t, 100, folds[4].Test.End)
	})

	t.Run("test blocks are ordered and follow training", func(t *testing.T) {
		folds, err := WalkForward(137, 5)
		require.NoError(t, err)
		for i, f := range folds {
			assert.LessOrEqual(t, f.Train.End, f.Test.Start)
			if i > 0 {
				assert.LessOrEqual(t, folds[i-1].Test.End, f.Test.Start)
			}
		}
	})

	t.Run("rejects bad arguments", func(t *testing.T) {
		_, err := WalkForward(100, 1)
		assert.Error(t, err)
		_, err = WalkForward(5, 5)
		assert.ErrorIs(t, err, ErrTooFewRows)
	})
}

func TestTrainRegression(t *testing.T) {
	p := DefaultParams(Regression)
	m, err := Train(stepDataset(200), nil, p)
	require.NoError(t, err)

	assert.Len(t, m.Trees, p.NumRounds)
	assert.Equal(t, p.NumRounds, m.BestIteration)
	assert.InDelta(t, 0.5, m.InitScore, 1e-12)
	assert.Greater(t, m.Predict([]float64{150, 3}), 0.9)
	assert.Less(t, m.Predict([]float64{40, 3}), 0.1)
	for _, tree := range m.Trees {
		assert.LessOrEqual(t, tree.NumLeaves(), p.NumLeaves)
		for _, n := range tree.Nodes {
			if n.IsLeaf() {
				assert.GreaterOrEqual(t, n.Count, p.MinDataInLeaf)
			}
		}
	}
}

func TestTrainBinary(t *testing.T) {
	m, err := Train(stepDataset(200), nil, DefaultParams(Binary))
	require.NoError(t, err)

	up := m.Predict([]float64{180, 1})
	down := m.Predict([]float64{10, 1})
	assert.Greater(t, up, 0.5)
	assert.Less(t, down, 0.5)
	assert.True(t, up >= 0 && up <= 1)

	imp := m.FeatureImportance()
	assert.Greater(t, imp[0], imp[1], "the step feature carries the signal")
}

func TestTrainSingleClass(t *testing.T) {
	d := stepDataset(60)
	for i := range d.Y {
		d.Y[i] = 1
	}
	m, err := Train(d, nil, DefaultParams(Binary))
	require.NoError(t, err)
	p := m.Predict([]float64{1, 1})
	assert.False(t, math.IsNaN(p))
	assert.Greater(t, p, 0.99)
}

func TestTrainEarlyStopping(t *testing.T) {
	train := Dataset{X: make([][]float64, 100), Y: make([]float64, 100)}
	valid := Dataset{X: make([][]float64, 100), Y: make([]float64, 100)}
	for i := range train.X {
		train.X[i] = []float64{float64(i)}
		train.Y[i] = float64(i)
		valid.X[i] = []float64{float64(i)}
		valid.Y[i] = 1000
	}

	p := DefaultParams(Regression)
	m, err := Train(train, &valid, p)
	require.NoError(t, err)

	assert.Equal(t, 1, m.BestIteration)
	assert.Len(t, m.Trees, 1)
	assert.Len(t, m.History, 1+p.EarlyStoppingRounds, "stops once patience runs out")
	assert.Equal(t, m.History[0], m.BestScore)
}

func TestTrainRejectsBadData(t *testing.T) {
	d := stepDataset(50)
	d.X[3][1] = math.NaN()
	_, err := Train(d, nil, DefaultParams(Regression))
	assert.ErrorIs(t, err, ErrNonFinite)

	d = stepDataset(50)
	d.Y[0] = 2
	_, err = Train(d, nil, DefaultParams(Binary))
	assert.Error(t, err)

	_, err = Train(Dataset{}, nil, DefaultParams(Binary))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	p := DefaultParams(Binary)
	p.NumLeaves = 1
	_, err = Train(stepDataset(50), nil, p)
	assert.Error(t, err)
}

func TestTrainIsDeterministic(t *testing.T) {
	d := noisyDataset(300, 6, 7)
	a, err := Train(d, nil, DefaultParams(Binary))
	require.NoError(t, err)
	b, err := Train(d, nil, DefaultParams(Binary))
	require.NoError(t, err)
	assert.Equal(t, a.Trees, b.Trees)
}

func TestContributionsAreAdditive(t *testing.T) {
	d := noisyDataset(400, 5, 11)
	m, err := Train(d, nil, DefaultParams(Binary))
	require.NoError(t, err)

	for _, x := range d.X[:25] {
		phi, bias := m.Contributions(x)
		require.Len(t, phi, 5)
		sum := bias
		for _, v := range phi {
			sum += v
		}
		assert.InDelta(t, m.PredictRaw(x), sum, 1e-9)
	}

	var signal, noise float64
	for _, x := range d.X {
		phi, _ := m.Contributions(x)
		signal += math.Abs(phi[0])
		noise += math.Abs(phi[4])
	}
	assert.Greater(t, signal, noise)
}

func TestFitWalkForward(t *testing.T) {
	d := noisyDataset(240, 4, 3)
	m, cv, err := FitWalkForward(d, 5, DefaultParams(Binary))
	require.NoError(t, err)

	require.Len(t, cv.Folds, 5)
	assert.GreaterOrEqual(t, cv.Rounds, 1)
	assert.Len(t, m.Trees, cv.Rounds)
	for _, f := range cv.Folds {
		assert.GreaterOrEqual(t, f.BestIteration, 1)
		assert.False(t, math.IsNaN(f.Score))
	}

	_, _, err = FitWalkForward(Dataset{X: d.X[:4], Y: d.Y[:4]}, 5, DefaultParams(Binary))
	assert.ErrorIs(t, err, ErrTooFewRows)
}
