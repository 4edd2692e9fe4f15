package gridpipe_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

func double(ctx context.Context, input any, args model.Args) (model.Output, error) {
	return model.Plain(input.(int) * 2), nil
}

func identity(ctx context.Context, output any) (any, error) {
	return output, nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := gridpipe.NewRegistry()
	require.NoError(t, reg.RegisterStep("double", double))
	require.NoError(t, reg.RegisterStep("noop", noopStep))
	require.NoError(t, reg.RegisterEval("identity", identity))
	require.NoError(t, reg.RegisterInit("parse", func(ctx context.Context, raw any) (any, error) {
		return len(raw.(string)), nil
	}))

	assert.ErrorIs(t, reg.RegisterStep("double", double), gridpipe.ErrAlreadyRegistered)
	assert.ErrorIs(t, reg.RegisterEval("", identity), gridpipe.ErrNotRegistered)

	_, err := reg.Step("triple")
	assert.ErrorIs(t, err, gridpipe.ErrNotRegistered)

	def, err := reg.Definition("parse",
		gridpipe.StepRef{Name: "first", Func: "double"},
		gridpipe.StepRef{Name: "second", Func: "noop", Eval: "identity", Params: []string{"k"}, Defaults: model.Args{"k": 1}},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, def.Steps())

	defaults, err := def.Defaults("second")
	require.NoError(t, err)
	assert.Equal(t, model.Args{"k": 1}, defaults)
	assert.NotNil(t, def.Init())

	res, err := gridpipe.NewScheduler(gridpipe.BuildGrid(resolve(t, def, nil)), zerolog.Nop()).
		Run(context.Background(), "d", "abc")
	require.NoError(t, err)
	assert.Equal(t, 6, res.Results["k=1"])
	assert.Equal(t, 6, res.Evaluations["second"]["k=1"])
}

func TestRegistryDefinitionErrors(t *testing.T) {
	t.Parallel()

	reg := gridpipe.NewRegistry()
	require.NoError(t, reg.RegisterStep("noop", noopStep))

	tcs := map[string]struct {
		expected error
		init     string
		refs     []gridpipe.StepRef
	}{
		"unknown step function": {
			refs:     []gridpipe.StepRef{{Name: "a", Func: "missing"}},
			expected: gridpipe.ErrNotRegistered,
		},
		"unknown evaluation function": {
			refs:     []gridpipe.StepRef{{Name: "a", Func: "noop", Eval: "missing"}},
			expected: gridpipe.ErrNotRegistered,
		},
		"unknown init function": {
			init:     "missing",
			refs:     []gridpipe.StepRef{{Name: "a", Func: "noop"}},
			expected: gridpipe.ErrNotRegistered,
		},
		"invalid definition": {
			refs:     []gridpipe.StepRef{{Name: "a", Func: "noop"}, {Name: "a", Func: "noop"}},
			expected: gridpipe.ErrDuplicateStep,
		},
		"no step": {
			expected: gridpipe.ErrNoStep,
		},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := reg.Definition(tc.init, tc.refs...)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}
