package gridpipe

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNoStep              = errors.New("pipeline must have at least one step")
	ErrEmptyStepName       = errors.New("step name must be set")
	ErrDuplicateStep       = errors.New("duplicate step name")
	ErrReservedStepName    = errors.New("step name is reserved")
	ErrStepFuncMustBeSet   = errors.New("step function must be set")
	ErrDuplicateParameter  = errors.New("parameter declared by more than one step")
	ErrUnknownStep         = errors.New("unknown step")
	ErrUnknownParameter    = errors.New("unknown parameter")
	ErrMissingAlternative  = errors.New("parameter has no candidate value")
	ErrReservedCharacter   = errors.New("name contains a reserved separator")
	ErrAmbiguousValue      = errors.New("two candidate values share the same name")
	ErrMalformedGrid       = errors.New("malformed combination matrix")
	ErrMalformedName       = errors.New("malformed combination name")
	ErrInvalidDatasetID    = errors.New("invalid dataset identifier")
	ErrNoDataset           = errors.New("at least one dataset must be set")
	ErrDefinitionMustBeSet = errors.New("definition must be set")
	ErrAlreadyRegistered   = errors.New("function already registered")
	ErrNotRegistered       = errors.New("function not registered")
)

// StepError reports the failure of one step invocation for one dataset.
type StepError struct {
	Err        error
	Dataset    string
	Step       string
	Assignment []Assignment
	Row        int
}

func (e *StepError) Error() string {
	parts := make([]string, len(e.Assignment))
	for i, a := range e.Assignment {
		parts[i] = a.String()
	}

	return fmt.Sprintf("dataset %q, row %d, step %q [%s]: %v", e.Dataset, e.Row, e.Step, strings.Join(parts, ", "), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
