package gridpipe

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

// Registry resolves step, evaluation and initiation functions by name.
// It is populated by the caller before a definition is built from it.
type Registry struct {
	steps map[string]model.StepFunc
	evals map[string]model.EvalFunc
	inits map[string]model.InitFunc
	mu    sync.RWMutex
}

// StepRef declares a step by the registered names of its functions.
type StepRef struct {
	Defaults model.Args
	Name     string
	Func     string
	Eval     string
	Params   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]model.StepFunc),
		evals: make(map[string]model.EvalFunc),
		inits: make(map[string]model.InitFunc),
	}
}

func register[F any](mu *sync.RWMutex, fns map[string]F, kind, name string, fn F) error {
	mu.Lock()
	defer mu.Unlock()

	if name == "" {
		return errors.Wrapf(ErrNotRegistered, "%s function name must be set", kind)
	}

	if _, ok := fns[name]; ok {
		return errors.Wrapf(ErrAlreadyRegistered, "%s function %q", kind, name)
	}

	fns[name] = fn

	return nil
}

func lookup[F any](mu *sync.RWMutex, fns map[string]F, kind, name string) (F, error) {
	mu.RLock()
	defer mu.RUnlock()

	fn, ok := fns[name]
	if !ok {
		return fn, errors.Wrapf(ErrNotRegistered, "%s function %q", kind, name)
	}

	return fn, nil
}

// RegisterStep registers a step function.
func (r *Registry) RegisterStep(name string, fn model.StepFunc) error {
	return register(&r.mu, r.steps, "step", name, fn)
}

// RegisterEval registers an evaluation function.
func (r *Registry) RegisterEval(name string, fn model.EvalFunc) error {
	return register(&r.mu, r.evals, "evaluation", name, fn)
}

// RegisterInit registers an initiation function.
func (r *Registry) RegisterInit(name string, fn model.InitFunc) error {
	return register(&r.mu, r.inits, "initiation", name, fn)
}

// Step returns the step function registered under name.
func (r *Registry) Step(name string) (model.StepFunc, error) {
	return lookup(&r.mu, r.steps, "step", name)
}

// Eval returns the evaluation function registered under name.
func (r *Registry) Eval(name string) (model.EvalFunc, error) {
	return lookup(&r.mu, r.evals, "evaluation", name)
}

// Init returns the initiation function registered under name.
func (r *Registry) Init(name string) (model.InitFunc, error) {
	return lookup(&r.mu, r.inits, "initiation", name)
}

// Definition builds a definition from registered names. An empty init or
// eval name means none; any other unresolved name is an error.
func (r *Registry) Definition(init string, refs ...StepRef) (*Definition, error) {
	specs := make([]StepSpec, len(refs))

	for i, ref := range refs {
		fn, err := r.Step(ref.Func)
		if err != nil {
			return nil, errors.Wrapf(err, "step %q", ref.Name)
		}

		spec := StepSpec{
			Name:     ref.Name,
			Params:   ref.Params,
			Func:     fn,
			Defaults: ref.Defaults,
		}

		if ref.Eval != "" {
			spec.Eval, err = r.Eval(ref.Eval)
			if err != nil {
				return nil, errors.Wrapf(err, "step %q", ref.Name)
			}
		}

		specs[i] = spec
	}

	def, err := NewDefinition(specs...)
	if err != nil {
		return nil, err
	}

	if init == "" {
		return def, nil
	}

	fn, err := r.Init(init)
	if err != nil {
		return nil, err
	}

	return def.WithInit(fn)
}
