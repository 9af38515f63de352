package features

import (
	"fmt"
	"math"
	"time"
)

// Row is one bar of the feature table. Values is aligned with Table.Columns.
type Row struct {
	Date   time.Time
	Close  float64
	Values []float64

	// Labels. Only meaningful when HasLabel is set; the most recent row has
	// no next bar and therefore no label.
	TargetDir int
	NextClose float64
	HasLabel  bool
}

// Ready reports whether every indicator value on the row is finite.
func (r Row) Ready() bool {
	for _, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NextReturn is the relative change from this close to the next one.
func (r Row) NextReturn() float64 {
	if !r.HasLabel || r.Close == 0 {
		return math.NaN()
	}
	return r.NextClose/r.Close - 1
}

type Table struct {
	Columns []string
	Rows    []Row
}

// Index returns the position of col in Columns, or -1.
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Value returns row i's value for col.
func (t *Table) Value(i int, col string) (float64, bool) {
	j := t.Index(col)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return 0, false
	}
	return t.Rows[i].Values[j], true
}

// Latest returns the most recent row, labeled or not.
func (t *Table) Latest() (Row, bool) {
	if len(t.Rows) == 0 {
		return Row{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// Labeled returns the rows usable for training, in date order.
func (t *Table) Labeled() []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.HasLabel && r.Ready() {
			out = append(out, r)
		}
	}
	return out
}

// Matrix extracts cols from rows as a row-major design matrix.
func (t *Table) Matrix(rows []Row, cols []string) ([][]float64, error) {
	idx, err := t.Indices(cols)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = t.Vector(r, idx)
	}
	return out, nil
}

// Vector picks the values at idx from r.
func (t *Table) Vector(r Row, idx []int) []float64 {
	x := make([]float64, len(idx))
	for k, j := range idx {
		x[k] = r.Values[j]
	}
	return x
}

// Indices maps column names to positions; unknown names are an error.
func (t *Table) Indices(cols []string) ([]int, error) {
	idx := make([]int, len(cols))
	for k, c := range cols {
		j := t.Index(c)
		if j < 0 {
			return nil, fmt.Errorf("features: unknown column %q", c)
		}
		idx[k] = j
	}
	return idx, nil
}
