// Package matrix implements the 2-D arithmetic used by the training engine.
//
// A Matrix is a rectangular, row-major grid of cells. Column vectors are
// matrices with one column. Any cell may be a hole (see Cell):
//   - elementwise operations propagate holes: x op hole = hole, hole op y = hole
//   - unary and scalar operations leave holes in place
//   - Multiply treats a hole as 0 inside the inner-product sum
//
// Shape violations are reported as ErrShapeMismatch.
package matrix

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Matrix is a rows x cols grid of cells stored in row-major order.
type Matrix struct {
	rows int
	cols int
	data []Cell
}

// New returns a rows x cols matrix of zeros.
//
// Panics on negative dimensions.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix.New: negative dimensions %dx%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, data: make([]Cell, rows*cols)}
}

// Filled returns a rows x cols matrix with every cell set to c.
func Filled(rows, cols int, c Cell) *Matrix {
	m := New(rows, cols)
	for i := range m.data {
		m.data[i] = c
	}
	return m
}

// FromRows builds a matrix from nested float slices.
//
// Returns ErrRagged if the rows differ in length.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	m := New(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRagged, i, len(row), m.cols)
		}
		for j, v := range row {
			m.data[i*m.cols+j] = Num(v)
		}
	}
	return m, nil
}

// FromCells builds a matrix from nested cell slices.
//
// Returns ErrRagged if the rows differ in length.
func FromCells(rows [][]Cell) (*Matrix, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	m := New(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRagged, i, len(row), m.cols)
		}
		copy(m.data[i*m.cols:], row)
	}
	return m, nil
}

// MustFromRows is FromRows that panics on error. Intended for literals in tests
// and examples.
func MustFromRows(rows [][]float64) *Matrix {
	m, err := FromRows(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// Column returns v as a len(v) x 1 column vector.
func Column(v []float64) *Matrix {
	m := New(len(v), 1)
	for i, x := range v {
		m.data[i] = Num(x)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() (int, int) { return m.rows, m.cols }

// Len returns the number of cells.
func (m *Matrix) Len() int { return len(m.data) }

// At returns the cell at row i, column j.
func (m *Matrix) At(i, j int) Cell {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

// Set stores c at row i, column j.
func (m *Matrix) Set(i, j int, c Cell) {
	m.check(i, j)
	m.data[i*m.cols+j] = c
}

// SetFloat stores the number v at row i, column j.
func (m *Matrix) SetFloat(i, j int, v float64) {
	m.Set(i, j, Num(v))
}

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index [%d,%d] out of range for %dx%d", i, j, m.rows, m.cols))
	}
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []Cell {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("matrix: row %d out of range for %dx%d", i, m.rows, m.cols))
	}
	row := make([]Cell, m.cols)
	copy(row, m.data[i*m.cols:(i+1)*m.cols])
	return row
}

// Cells returns a copy of all cells in row-major order.
func (m *Matrix) Cells() []Cell {
	out := make([]Cell, len(m.data))
	copy(out, m.data)
	return out
}

// Floats returns all cells in row-major order, holes reported as NaN.
func (m *Matrix) Floats() []float64 {
	out := make([]float64, len(m.data))
	for i, c := range m.data {
		if c.absent {
			out[i] = math.NaN()
			continue
		}
		out[i] = c.value
	}
	return out
}

// ToCells returns the matrix as nested rows.
func (m *Matrix) ToCells() [][]Cell {
	out := make([][]Cell, m.rows)
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, data: make([]Cell, len(m.data))}
	copy(c.data, m.data)
	return c
}

// SameShape reports whether m and o have the same dimensions.
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.rows == o.rows && m.cols == o.cols
}

// Equal reports whether m and o have the same shape and identical cells.
// Holes are equal to holes.
func (m *Matrix) Equal(o *Matrix) bool {
	if !m.SameShape(o) {
		return false
	}
	for i, c := range m.data {
		if c != o.data[i] {
			return false
		}
	}
	return true
}

// HasHoles reports whether any cell is absent.
func (m *Matrix) HasHoles() bool {
	for _, c := range m.data {
		if c.absent {
			return true
		}
	}
	return false
}

// Flatten returns the cells as a (rows*cols) x 1 column vector in row-major order.
func (m *Matrix) Flatten() *Matrix {
	out := &Matrix{rows: len(m.data), cols: 1, data: make([]Cell, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Reshape returns the cells laid out as rows x cols in row-major order.
//
// Returns ErrShapeMismatch if the cell counts differ.
func (m *Matrix) Reshape(rows, cols int) (*Matrix, error) {
	if rows < 0 || cols < 0 || rows*cols != len(m.data) {
		return nil, fmt.Errorf("%w: reshape %dx%d to %dx%d", ErrShapeMismatch, m.rows, m.cols, rows, cols)
	}
	out := &Matrix{rows: rows, cols: cols, data: make([]Cell, len(m.data))}
	copy(out.data, m.data)
	return out, nil
}

// String renders the matrix one row per line.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		sb.WriteByte('[')
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(m.data[i*m.cols+j].String())
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// MarshalJSON encodes the matrix as an array of rows.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	rows := m.ToCells()
	if rows == nil {
		rows = [][]Cell{}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes an array of rows. Ragged input is rejected.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var rows [][]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("matrix: decode: %w", err)
	}
	decoded, err := FromCells(rows)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}
