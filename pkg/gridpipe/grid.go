package gridpipe

import (
	"sort"

	"github.com/pkg/errors"
)

// Grid is the ordered matrix of combinations to execute. Each row holds one
// 1-based candidate index per column of the space it was built for.
type Grid struct {
	space *Space
	rows  [][]int
}

// BuildGrid enumerates the full Cartesian product of space. The last column
// varies fastest so that consecutive rows share the longest possible prefix.
func BuildGrid(space *Space) *Grid {
	return &Grid{space: space, rows: odometer(space, false)}
}

// NewGrid validates a caller-supplied matrix of 1-based indices. columns names
// the parameter of each matrix column; they are reordered to the space order.
// Row order is kept as given.
func NewGrid(space *Space, columns []string, rows [][]int) (*Grid, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrMalformedGrid, "no combination")
	}

	if len(columns) != len(space.columns) {
		return nil, errors.Wrapf(ErrMalformedGrid, "got %d columns, expected %d", len(columns), len(space.columns))
	}

	// perm[i] is the space column of the matrix column i.
	perm := make([]int, len(columns))
	seen := make(map[int]struct{}, len(columns))

	for i, param := range columns {
		col, ok := space.column(param)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedGrid, "unknown column %q", param)
		}

		if _, ok := seen[col]; ok {
			return nil, errors.Wrapf(ErrMalformedGrid, "duplicate column %q", param)
		}

		seen[col] = struct{}{}
		perm[i] = col
	}

	res := make([][]int, len(rows))

	for n, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.Wrapf(ErrMalformedGrid, "row %d has %d values, expected %d", n+1, len(row), len(columns))
		}

		ordered := make([]int, len(row))

		for i, idx := range row {
			col := perm[i]
			if idx < 1 || idx > space.Size(col) {
				return nil, errors.Wrapf(ErrMalformedGrid, "row %d: index %d of %q out of range [1, %d]", n+1, idx, columns[i], space.Size(col))
			}

			ordered[col] = idx
		}

		res[n] = ordered
	}

	return &Grid{space: space, rows: res}, nil
}

// ReversedGrid enumerates the full Cartesian product of space with the first
// column varying fastest. It is the worst order for prefix reuse.
func ReversedGrid(space *Space) *Grid {
	return &Grid{space: space, rows: odometer(space, true)}
}

func odometer(space *Space, firstFastest bool) [][]int {
	width := len(space.columns)
	total := 1

	for col := 0; col < width; col++ {
		total *= space.Size(col)
	}

	rows := make([][]int, 0, total)
	curr := make([]int, width)

	for col := range curr {
		curr[col] = 1
	}

	for n := 0; n < total; n++ {
		rows = append(rows, append([]int(nil), curr...))

		for i := 0; i < width; i++ {
			col := width - 1 - i
			if firstFastest {
				col = i
			}

			if curr[col] < space.Size(col) {
				curr[col]++

				break
			}

			curr[col] = 1
		}
	}

	return rows
}

// Space returns the space the grid indexes into.
func (g *Grid) Space() *Space {
	return g.space
}

// Len returns the number of combinations.
func (g *Grid) Len() int {
	return len(g.rows)
}

// Row returns a copy of the n-th row.
func (g *Grid) Row(n int) []int {
	return append([]int(nil), g.rows[n]...)
}

// Rows returns a copy of the matrix.
func (g *Grid) Rows() [][]int {
	res := make([][]int, len(g.rows))
	for n := range g.rows {
		res[n] = g.Row(n)
	}

	return res
}

// Dedup returns a grid without repeated rows, keeping the first occurrence.
func (g *Grid) Dedup() *Grid {
	seen := make(map[string]struct{}, len(g.rows))
	rows := make([][]int, 0, len(g.rows))

	for _, row := range g.rows {
		key := g.space.Name(row, len(row))
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		rows = append(rows, append([]int(nil), row...))
	}

	return &Grid{space: g.space, rows: rows}
}

// Sorted returns a grid whose rows are ordered with the first column varying
// slowest, which is the order BuildGrid produces.
func (g *Grid) Sorted() *Grid {
	rows := g.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		for col := range rows[i] {
			if rows[i][col] != rows[j][col] {
				return rows[i][col] < rows[j][col]
			}
		}

		return false
	})

	return &Grid{space: g.space, rows: rows}
}
