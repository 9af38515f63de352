package boosting

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyDataset = errors.New("boosting: empty dataset")
	ErrNonFinite    = errors.New("boosting: non-finite value")
)

// Dataset is a row-major design matrix with one target per row.
type Dataset struct {
	X [][]float64
	Y []float64
}

func (d Dataset) Len() int { return len(d.Y) }

func (d Dataset) NumFeatures() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Slice returns rows [r.Start, r.End) without copying.
func (d Dataset) Slice(r Range) Dataset {
	return Dataset{X: d.X[r.Start:r.End], Y: d.Y[r.Start:r.End]}
}

func (d Dataset) validate(obj Objective) error {
	if len(d.Y) == 0 {
		return ErrEmptyDataset
	}
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("boosting: %d rows but %d targets", len(d.X), len(d.Y))
	}
	width := len(d.X[0])
	if width == 0 {
		return errors.New("boosting: no features")
	}
	for i, row := range d.X {
		if len(row) != width {
			return fmt.Errorf("boosting: row %d has %d features, want %d", i, len(row), width)
		}
		for j, v := range row {
			if !finite(v) {
				return fmt.Errorf("%w: x[%d][%d]", ErrNonFinite, i, j)
			}
		}
	}
	for i, y := range d.Y {
		if !finite(y) {
			return fmt.Errorf("%w: y[%d]", ErrNonFinite, i)
		}
		if obj == Binary && y != 0 && y != 1 {
			return fmt.Errorf("boosting: binary label y[%d]=%v is not 0 or 1", i, y)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
