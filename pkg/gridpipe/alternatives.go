package gridpipe

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Alternatives maps a parameter name to its ordered candidate values.
type Alternatives map[string][]any

// Space is the set of candidate values of every pipeline parameter, resolved
// against a definition. Columns are ordered by step, then by parameter declaration.
type Space struct {
	def       *Definition
	columns   []string
	owner     []int
	values    [][]any
	labels    [][]string
	stepStart []int
	stepEnd   []int
}

// Resolve binds alternatives to the parameters of def. Parameters without
// alternatives fall back to their default, which becomes their only candidate.
func Resolve(def *Definition, alternatives Alternatives) (*Space, error) {
	if def == nil {
		return nil, ErrDefinitionMustBeSet
	}

	unknown := []string{}

	for param := range alternatives {
		if _, ok := def.owner[param]; !ok {
			unknown = append(unknown, param)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)

		return nil, errors.Wrapf(ErrUnknownParameter, "%q", unknown)
	}

	space := &Space{
		def:       def,
		stepStart: make([]int, len(def.steps)),
		stepEnd:   make([]int, len(def.steps)),
	}

	for idx, step := range def.steps {
		space.stepStart[idx] = len(space.columns)

		for _, param := range step.Params {
			values, err := candidates(step, param, alternatives)
			if err != nil {
				return nil, err
			}

			labels, err := valueLabels(param, values)
			if err != nil {
				return nil, err
			}

			space.columns = append(space.columns, param)
			space.owner = append(space.owner, idx)
			space.values = append(space.values, values)
			space.labels = append(space.labels, labels)
		}

		space.stepEnd[idx] = len(space.columns)
	}

	return space, nil
}

func candidates(step StepSpec, param string, alternatives Alternatives) ([]any, error) {
	if values, ok := alternatives[param]; ok {
		if len(values) == 0 {
			return nil, errors.Wrapf(ErrMissingAlternative, "%q of step %q: empty alternatives", param, step.Name)
		}

		return append([]any(nil), values...), nil
	}

	if value, ok := step.Defaults[param]; ok {
		return []any{value}, nil
	}

	return nil, errors.Wrapf(ErrMissingAlternative, "%q of step %q", param, step.Name)
}

func valueLabels(param string, values []any) ([]string, error) {
	labels := make([]string, len(values))
	seen := make(map[string]int, len(values))

	for i, value := range values {
		label := fmt.Sprint(value)
		if hasReserved(label) {
			return nil, errors.Wrapf(ErrReservedCharacter, "parameter %q: value %q", param, label)
		}

		if j, ok := seen[label]; ok {
			return nil, errors.Wrapf(ErrAmbiguousValue, "parameter %q: values %d and %d are both named %q", param, j+1, i+1, label)
		}

		seen[label] = i
		labels[i] = label
	}

	return labels, nil
}

// Validate checks that alternatives can drive def, without running anything.
func Validate(def *Definition, alternatives Alternatives) error {
	_, err := Resolve(def, alternatives)

	return err
}

// Definition returns the definition the space was resolved against.
func (s *Space) Definition() *Definition {
	return s.def
}

// Columns returns the parameter names in column order.
func (s *Space) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Size returns the number of candidates of a column.
func (s *Space) Size(col int) int {
	return len(s.values[col])
}

// Value returns the candidate at the 1-based index idx of a column.
func (s *Space) Value(col, idx int) any {
	return s.values[col][idx-1]
}

// Label returns the name of the candidate at the 1-based index idx of a column.
func (s *Space) Label(col, idx int) string {
	return s.labels[col][idx-1]
}

// Labels returns the candidate names per parameter.
func (s *Space) Labels() map[string][]string {
	res := make(map[string][]string, len(s.columns))
	for col, param := range s.columns {
		res[param] = append([]string(nil), s.labels[col]...)
	}

	return res
}

// Name returns the combination name of the first upto columns of row.
func (s *Space) Name(row []int, upto int) string {
	return CombinationName(s.Assignment(row, upto)...)
}

// Assignment decodes the first upto columns of row.
func (s *Space) Assignment(row []int, upto int) []Assignment {
	res := make([]Assignment, upto)
	for col := 0; col < upto; col++ {
		res[col] = Assignment{Param: s.columns[col], Value: s.Label(col, row[col])}
	}

	return res
}

func (s *Space) column(param string) (int, bool) {
	for col, name := range s.columns {
		if name == param {
			return col, true
		}
	}

	return 0, false
}
