package model

import "context"

// Args holds the concrete keyword arguments of one step invocation, keyed by parameter name.
type Args map[string]any

// StepFunc computes the output of a step from the output of the previous step.
type StepFunc func(ctx context.Context, input any, args Args) (Output, error)

// EvalFunc computes an evaluation payload from a step output.
type EvalFunc func(ctx context.Context, output any) (any, error)

// InitFunc turns a raw dataset into the object handed to the first step.
type InitFunc func(ctx context.Context, raw any) (any, error)

// Output is the result of a step function. It is either a plain output or an
// output carrying a side value that is recorded as the step evaluation payload.
type Output struct {
	value   any
	side    any
	hasSide bool
}

// Plain returns an output without side value.
func Plain(value any) Output {
	return Output{value: value}
}

// WithSideValue returns an output carrying a side value.
func WithSideValue(value, side any) Output {
	return Output{value: value, side: side, hasSide: true}
}

// Value returns the object passed on to the next step.
func (o Output) Value() any {
	return o.value
}

// SideValue returns the side value and whether the step returned one.
func (o Output) SideValue() (any, bool) {
	return o.side, o.hasSide
}

// StepInfo describes a step of the pipeline to run options.
type StepInfo struct {
	Name   string
	Params []string
	Index  int
}

var (
	// StartStep is the virtual step preceding the first pipeline step.
	StartStep = &StepInfo{Name: "start", Index: -1}
	// EndStep is the virtual step following the last pipeline step.
	EndStep = &StepInfo{Name: "end", Index: -1}
)
