package gridpipe

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

func passThrough(ctx context.Context, input any, args model.Args) (model.Output, error) {
	return model.Plain(input), nil
}

func internalScheduler(t *testing.T) *Scheduler {
	t.Helper()

	def, err := NewDefinition(
		StepSpec{Name: "a", Params: []string{"p"}, Func: passThrough},
		StepSpec{Name: "b", Func: passThrough},
		StepSpec{Name: "c", Params: []string{"q", "r"}, Func: passThrough},
	)
	require.NoError(t, err)

	space, err := Resolve(def, Alternatives{"p": {1, 2}, "q": {1, 2}, "r": {1, 2}})
	require.NoError(t, err)

	return NewScheduler(BuildGrid(space), zerolog.Nop())
}

func TestRestartStep(t *testing.T) {
	t.Parallel()

	s := internalScheduler(t)

	tcs := map[string]struct {
		row      []int
		previous []int
		first    bool
		expected int
	}{
		"first row":      {row: []int{1, 1, 1}, previous: []int{0, 0, 0}, first: true, expected: 0},
		"first column":   {row: []int{2, 1, 1}, previous: []int{1, 2, 2}, expected: 0},
		"middle column":  {row: []int{1, 2, 1}, previous: []int{1, 1, 1}, expected: 2},
		"last column":    {row: []int{1, 1, 2}, previous: []int{1, 1, 1}, expected: 2},
		"identical rows": {row: []int{1, 2, 1}, previous: []int{1, 2, 1}, expected: 3},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, s.restartStep(tc.row, tc.previous, tc.first))
		})
	}
}

func TestSchedulerArgs(t *testing.T) {
	t.Parallel()

	s := internalScheduler(t)

	assert.Equal(t, model.Args{"p": 2}, s.args(0, []int{2, 1, 2}))
	assert.Equal(t, model.Args{}, s.args(1, []int{2, 1, 2}))
	assert.Equal(t, model.Args{"q": 1, "r": 2}, s.args(2, []int{2, 1, 2}))
}

func TestObjectCache(t *testing.T) {
	t.Parallel()

	cache := &objectCache{initiated: "raw", outputs: make([]any, 2)}
	assert.Equal(t, "raw", cache.inputFor(0))

	cache.set(0, "a")
	cache.set(1, "b")
	assert.Equal(t, "a", cache.inputFor(1))

	cache.set(0, "a2")
	assert.Equal(t, "a2", cache.inputFor(1))
	assert.Equal(t, "raw", cache.inputFor(0))
}

func TestRunnerConcurrency(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		r        runner
		total    int
		expected int
	}{
		"default":         {r: runner{workers: 1}, total: 4, expected: 1},
		"bounded":         {r: runner{workers: 2}, total: 4, expected: 2},
		"fewer datasets":  {r: runner{workers: 8}, total: 3, expected: 3},
		"single dataset":  {r: runner{workers: 8}, total: 1, expected: 1},
		"debug":           {r: runner{workers: 8, debug: true}, total: 4, expected: 1},
		"invalid workers": {r: runner{workers: -3}, total: 4, expected: 1},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, tc.r.concurrency(tc.total))
		})
	}
}
