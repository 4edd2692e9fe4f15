package gridpipe

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

// StepSpec declares one step of a pipeline.
type StepSpec struct {
	// Func is the step function.
	Func model.StepFunc
	// Eval is invoked on the step output when Func does not return a side value.
	Eval model.EvalFunc
	// Defaults binds parameters that are not overridden by the alternatives.
	Defaults model.Args
	// Name must be unique within the pipeline.
	Name string
	// Params lists the keyword parameters the step function reads, in declaration order.
	Params []string
}

func (s StepSpec) clone() StepSpec {
	res := s
	res.Params = append([]string(nil), s.Params...)

	if s.Defaults != nil {
		res.Defaults = make(model.Args, len(s.Defaults))
		for k, v := range s.Defaults {
			res.Defaults[k] = v
		}
	}

	return res
}

// Definition is an immutable, validated chain of steps.
type Definition struct {
	init  model.InitFunc
	index map[string]int
	owner map[string]int
	steps []StepSpec
}

// NewDefinition validates the steps and returns the pipeline they form, in the given order.
func NewDefinition(steps ...StepSpec) (*Definition, error) {
	cloned := make([]StepSpec, len(steps))
	for i, step := range steps {
		cloned[i] = step.clone()
	}

	return newDefinition(nil, cloned)
}

func newDefinition(init model.InitFunc, steps []StepSpec) (*Definition, error) {
	if len(steps) == 0 {
		return nil, ErrNoStep
	}

	def := &Definition{
		init:  init,
		steps: steps,
		index: make(map[string]int, len(steps)),
		owner: make(map[string]int),
	}

	for i, step := range steps {
		err := def.addStep(i, step)
		if err != nil {
			return nil, err
		}
	}

	return def, nil
}

func (d *Definition) addStep(idx int, step StepSpec) error {
	switch {
	case step.Name == "":
		return errors.Wrapf(ErrEmptyStepName, "step %d", idx)
	case step.Name == model.StartStep.Name || step.Name == model.EndStep.Name:
		return errors.Wrapf(ErrReservedStepName, "%q", step.Name)
	case hasReserved(step.Name):
		return errors.Wrapf(ErrReservedCharacter, "step %q", step.Name)
	case step.Func == nil:
		return errors.Wrapf(ErrStepFuncMustBeSet, "step %q", step.Name)
	}

	if _, ok := d.index[step.Name]; ok {
		return errors.Wrapf(ErrDuplicateStep, "%q", step.Name)
	}

	d.index[step.Name] = idx

	declared := make(map[string]struct{}, len(step.Params))

	for _, param := range step.Params {
		if param == "" || hasReserved(param) {
			return errors.Wrapf(ErrReservedCharacter, "step %q: parameter %q", step.Name, param)
		}

		if other, ok := d.owner[param]; ok {
			return errors.Wrapf(ErrDuplicateParameter, "%q in steps %q and %q", param, d.steps[other].Name, step.Name)
		}

		d.owner[param] = idx
		declared[param] = struct{}{}
	}

	for param := range step.Defaults {
		if _, ok := declared[param]; !ok {
			return errors.Wrapf(ErrUnknownParameter, "default %q of step %q", param, step.Name)
		}
	}

	return nil
}

// Steps returns the step names in execution order.
func (d *Definition) Steps() []string {
	res := make([]string, len(d.steps))
	for i, step := range d.steps {
		res[i] = step.Name
	}

	return res
}

// Len returns the number of steps.
func (d *Definition) Len() int {
	return len(d.steps)
}

// Params returns the parameters declared by a step.
func (d *Definition) Params(step string) ([]string, error) {
	idx, ok := d.index[step]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "%q", step)
	}

	return append([]string(nil), d.steps[idx].Params...), nil
}

// AllParams returns every parameter ordered by step, then by declaration order.
func (d *Definition) AllParams() []string {
	res := make([]string, 0, len(d.owner))
	for _, step := range d.steps {
		res = append(res, step.Params...)
	}

	return res
}

// Owner returns the name of the step declaring a parameter.
func (d *Definition) Owner(param string) (string, bool) {
	idx, ok := d.owner[param]
	if !ok {
		return "", false
	}

	return d.steps[idx].Name, true
}

// Defaults returns a copy of the default arguments of a step.
func (d *Definition) Defaults(step string) (model.Args, error) {
	idx, ok := d.index[step]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "%q", step)
	}

	return d.steps[idx].clone().Defaults, nil
}

// Func returns the function of a step.
func (d *Definition) Func(step string) (model.StepFunc, error) {
	idx, ok := d.index[step]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "%q", step)
	}

	return d.steps[idx].Func, nil
}

// Eval returns the evaluation function of a step, nil when it has none.
func (d *Definition) Eval(step string) (model.EvalFunc, error) {
	idx, ok := d.index[step]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "%q", step)
	}

	return d.steps[idx].Eval, nil
}

// Init returns the initiation function, nil when the raw input is handed to the first step as is.
func (d *Definition) Init() model.InitFunc {
	return d.init
}

func (d *Definition) stepInfo(idx int) *model.StepInfo {
	return &model.StepInfo{
		Name:   d.steps[idx].Name,
		Params: append([]string(nil), d.steps[idx].Params...),
		Index:  idx,
	}
}

func (d *Definition) update(step string, fn func(*StepSpec)) (*Definition, error) {
	idx, ok := d.index[step]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "%q", step)
	}

	steps := d.cloneSteps()
	fn(&steps[idx])

	return newDefinition(d.init, steps)
}

func (d *Definition) cloneSteps() []StepSpec {
	steps := make([]StepSpec, len(d.steps))
	for i, step := range d.steps {
		steps[i] = step.clone()
	}

	return steps
}

// SetStepFunction returns a new definition where step uses fn and declares params.
func (d *Definition) SetStepFunction(step string, fn model.StepFunc, params ...string) (*Definition, error) {
	return d.update(step, func(s *StepSpec) {
		s.Func = fn
		s.Params = append([]string(nil), params...)
	})
}

// SetDefaultArguments returns a new definition where the given defaults of step are overridden.
func (d *Definition) SetDefaultArguments(step string, defaults model.Args) (*Definition, error) {
	return d.update(step, func(s *StepSpec) {
		if s.Defaults == nil {
			s.Defaults = make(model.Args, len(defaults))
		}

		for k, v := range defaults {
			s.Defaults[k] = v
		}
	})
}

// SetEvaluationFunction returns a new definition where step is evaluated by fn.
func (d *Definition) SetEvaluationFunction(step string, fn model.EvalFunc) (*Definition, error) {
	return d.update(step, func(s *StepSpec) {
		s.Eval = fn
	})
}

// AddStep returns a new definition with step appended to the chain.
func (d *Definition) AddStep(step StepSpec) (*Definition, error) {
	return newDefinition(d.init, append(d.cloneSteps(), step.clone()))
}

// WithInit returns a new definition whose raw inputs are initiated by fn.
func (d *Definition) WithInit(fn model.InitFunc) (*Definition, error) {
	return newDefinition(fn, d.cloneSteps())
}
