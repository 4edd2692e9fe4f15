package gridpipe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
)

func TestBuildGrid(t *testing.T) {
	t.Parallel()

	space := resolve(t, multiplyAdd(t, newCounter()), multiplyAddAlternatives())
	grid := gridpipe.BuildGrid(space)

	assert.Equal(t, 6, grid.Len())
	assert.Equal(t, [][]int{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}, {2, 3}}, grid.Rows())
	assert.Same(t, space, grid.Space())
}

func TestReversedGrid(t *testing.T) {
	t.Parallel()

	space := resolve(t, multiplyAdd(t, newCounter()), multiplyAddAlternatives())
	grid := gridpipe.ReversedGrid(space)

	assert.Equal(t, [][]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}, {1, 3}, {2, 3}}, grid.Rows())
}

func TestBuildGridWithoutParameters(t *testing.T) {
	t.Parallel()

	def, err := gridpipe.NewDefinition(gridpipe.StepSpec{Name: "A", Func: noopStep})
	require.NoError(t, err)

	grid := gridpipe.BuildGrid(resolve(t, def, nil))
	assert.Equal(t, [][]int{{}}, grid.Rows())
}

func TestNewGrid(t *testing.T) {
	t.Parallel()

	space := resolve(t, multiplyAdd(t, newCounter()), multiplyAddAlternatives())

	grid, err := gridpipe.NewGrid(space, []string{"q", "p"}, [][]int{{3, 1}, {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 3}, {2, 1}}, grid.Rows())
}

func TestNewGridErrors(t *testing.T) {
	t.Parallel()

	space := resolve(t, multiplyAdd(t, newCounter()), multiplyAddAlternatives())

	tcs := map[string]struct {
		columns []string
		rows    [][]int
	}{
		"no row":           {columns: []string{"p", "q"}},
		"missing column":   {columns: []string{"p"}, rows: [][]int{{1}}},
		"unknown column":   {columns: []string{"p", "r"}, rows: [][]int{{1, 1}}},
		"duplicate column": {columns: []string{"p", "p"}, rows: [][]int{{1, 1}}},
		"short row":        {columns: []string{"p", "q"}, rows: [][]int{{1}}},
		"index too large":  {columns: []string{"p", "q"}, rows: [][]int{{1, 4}}},
		"index zero":       {columns: []string{"p", "q"}, rows: [][]int{{0, 1}}},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := gridpipe.NewGrid(space, tc.columns, tc.rows)
			assert.ErrorIs(t, err, gridpipe.ErrMalformedGrid)
		})
	}
}

func TestGridDedupSorted(t *testing.T) {
	t.Parallel()

	space := resolve(t, multiplyAdd(t, newCounter()), multiplyAddAlternatives())

	grid, err := gridpipe.NewGrid(space, []string{"p", "q"}, [][]int{{2, 1}, {1, 3}, {2, 1}, {1, 1}})
	require.NoError(t, err)

	assert.Equal(t, [][]int{{2, 1}, {1, 3}, {1, 1}}, grid.Dedup().Rows())
	assert.Equal(t, [][]int{{1, 1}, {1, 3}, {2, 1}}, grid.Dedup().Sorted().Rows())
	assert.Equal(t, 4, grid.Len())
}

func TestGridRowCopy(t *testing.T) {
	t.Parallel()

	grid := gridpipe.BuildGrid(resolve(t, multiplyAdd(t, newCounter()), multiplyAddAlternatives()))

	row := grid.Row(0)
	row[0] = 2
	assert.Equal(t, []int{1, 1}, grid.Row(0))
}
