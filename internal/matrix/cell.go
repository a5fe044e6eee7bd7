package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Cell is one matrix entry: either a number or a hole.
//
// The zero value is the number 0. A hole marks a value deliberately excluded
// from an elementwise computation; see the package documentation for how
// holes propagate.
type Cell struct {
	value  float64
	absent bool
}

// Num returns a cell holding v.
func Num(v float64) Cell {
	return Cell{value: v}
}

// Hole returns an absent cell.
func Hole() Cell {
	return Cell{absent: true}
}

// IsHole reports whether the cell is absent.
func (c Cell) IsHole() bool {
	return c.absent
}

// Value returns the number held by the cell and whether it is present.
func (c Cell) Value() (float64, bool) {
	if c.absent {
		return 0, false
	}
	return c.value, true
}

// OrZero returns the number held by the cell, or 0 for a hole.
func (c Cell) OrZero() float64 {
	if c.absent {
		return 0
	}
	return c.value
}

// String implements fmt.Stringer.
func (c Cell) String() string {
	if c.absent {
		return "_"
	}
	return strconv.FormatFloat(c.value, 'g', -1, 64)
}

// MarshalJSON encodes a number as itself and a hole as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.absent {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

// UnmarshalJSON decodes a number, or null as a hole.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Hole()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("matrix: decode cell: %w", err)
	}
	*c = Num(v)
	return nil
}

// lift applies f to two cells, propagating holes.
func lift(a, b Cell, f func(x, y float64) float64) Cell {
	if a.absent || b.absent {
		return Hole()
	}
	return Num(f(a.value, b.value))
}
