package gridpipe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

type counter struct {
	calls map[string]int
	mu    sync.Mutex
}

func newCounter() *counter {
	return &counter{calls: make(map[string]int)}
}

func (c *counter) inc(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[key]++
}

func (c *counter) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls[key]
}

func (c *counter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := 0
	for _, n := range c.calls {
		res += n
	}

	return res
}

// multiplyAdd builds the pipeline A(x, p) = x*p then B(x, q) = x+q.
func multiplyAdd(t *testing.T, calls *counter) *gridpipe.Definition {
	t.Helper()

	def, err := gridpipe.NewDefinition(
		gridpipe.StepSpec{
			Name:   "A",
			Params: []string{"p"},
			Func: func(ctx context.Context, input any, args model.Args) (model.Output, error) {
				calls.inc(fmt.Sprintf("A:p=%v", args["p"]))

				return model.Plain(input.(int) * args["p"].(int)), nil
			},
		},
		gridpipe.StepSpec{
			Name:   "B",
			Params: []string{"q"},
			Func: func(ctx context.Context, input any, args model.Args) (model.Output, error) {
				calls.inc(fmt.Sprintf("B:q=%v", args["q"]))

				return model.Plain(input.(int) + args["q"].(int)), nil
			},
			Eval: func(ctx context.Context, output any) (any, error) {
				return float64(output.(int)), nil
			},
		},
	)
	require.NoError(t, err)

	return def
}

func multiplyAddAlternatives() gridpipe.Alternatives {
	return gridpipe.Alternatives{
		"p": {1, 2},
		"q": {10, 20, 30},
	}
}

// addChain builds k steps s1..sk, step i adding its parameter pi to its input.
func addChain(t *testing.T, k int, calls *counter) *gridpipe.Definition {
	t.Helper()

	specs := make([]gridpipe.StepSpec, k)

	for i := range specs {
		name := fmt.Sprintf("s%d", i+1)
		param := fmt.Sprintf("p%d", i+1)
		specs[i] = gridpipe.StepSpec{
			Name:   name,
			Params: []string{param},
			Func: func(ctx context.Context, input any, args model.Args) (model.Output, error) {
				calls.inc(name)

				return model.Plain(input.(int) + args[param].(int)), nil
			},
		}
	}

	def, err := gridpipe.NewDefinition(specs...)
	require.NoError(t, err)

	return def
}

func resolve(t *testing.T, def *gridpipe.Definition, alt gridpipe.Alternatives) *gridpipe.Space {
	t.Helper()

	space, err := gridpipe.Resolve(def, alt)
	require.NoError(t, err)

	return space
}

func noopStep(ctx context.Context, input any, args model.Args) (model.Output, error) {
	return model.Plain(input), nil
}
