package gridpipe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	def := multiplyAdd(t, newCounter())
	def, err := def.SetDefaultArguments("A", model.Args{"p": 4})
	require.NoError(t, err)

	space := resolve(t, def, gridpipe.Alternatives{"q": {10, 20}})

	assert.Equal(t, []string{"p", "q"}, space.Columns())
	assert.Equal(t, 1, space.Size(0))
	assert.Equal(t, 4, space.Value(0, 1))
	assert.Equal(t, 2, space.Size(1))
	assert.Equal(t, 20, space.Value(1, 2))
	assert.Equal(t, "20", space.Label(1, 2))
	assert.Equal(t, map[string][]string{"p": {"4"}, "q": {"10", "20"}}, space.Labels())
	assert.Equal(t, "p=4;q=20", space.Name([]int{1, 2}, 2))
	assert.Equal(t, "p=4", space.Name([]int{1, 2}, 1))
	assert.Same(t, def, space.Definition())
}

func TestResolveAlternativesOverrideDefaults(t *testing.T) {
	t.Parallel()

	def := multiplyAdd(t, newCounter())
	def, err := def.SetDefaultArguments("A", model.Args{"p": 4})
	require.NoError(t, err)

	space := resolve(t, def, multiplyAddAlternatives())
	assert.Equal(t, 2, space.Size(0))
	assert.Equal(t, 1, space.Value(0, 1))
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	def := multiplyAdd(t, newCounter())

	tcs := map[string]struct {
		alt      gridpipe.Alternatives
		expected error
	}{
		"unknown parameter": {
			alt:      gridpipe.Alternatives{"p": {1}, "q": {1}, "r": {1}},
			expected: gridpipe.ErrUnknownParameter,
		},
		"missing parameter": {
			alt:      gridpipe.Alternatives{"p": {1}},
			expected: gridpipe.ErrMissingAlternative,
		},
		"empty alternatives": {
			alt:      gridpipe.Alternatives{"p": {1}, "q": {}},
			expected: gridpipe.ErrMissingAlternative,
		},
		"reserved character in value": {
			alt:      gridpipe.Alternatives{"p": {1}, "q": {"a;b"}},
			expected: gridpipe.ErrReservedCharacter,
		},
		"equal sign in value": {
			alt:      gridpipe.Alternatives{"p": {"x=1"}, "q": {1}},
			expected: gridpipe.ErrReservedCharacter,
		},
		"ambiguous values": {
			alt:      gridpipe.Alternatives{"p": {1, "1"}, "q": {1}},
			expected: gridpipe.ErrAmbiguousValue,
		},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.ErrorIs(t, gridpipe.Validate(def, tc.alt), tc.expected)
		})
	}
}

func TestValidateNilDefinition(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, gridpipe.Validate(nil, nil), gridpipe.ErrDefinitionMustBeSet)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, gridpipe.Validate(multiplyAdd(t, newCounter()), multiplyAddAlternatives()))
}
