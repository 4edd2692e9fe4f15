package cli

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

const initCopy = "copy"

// ErrNotNumbers is returned when a built-in function receives something else than numbers.
var ErrNotNumbers = errors.New("expected a list of numbers")

// Builtins returns a registry holding the numeric functions available to configuration files.
func Builtins() (*gridpipe.Registry, error) {
	reg := gridpipe.NewRegistry()

	steps := map[string]model.StepFunc{
		"scale":  scale,
		"shift":  shift,
		"clip":   clip,
		"power":  power,
		"center": center,
	}
	for name, fn := range steps {
		err := reg.RegisterStep(name, fn)
		if err != nil {
			return nil, err
		}
	}

	evals := map[string]model.EvalFunc{
		"mean": mean,
		"sum":  sum,
		"max":  maximum,
	}
	for name, fn := range evals {
		err := reg.RegisterEval(name, fn)
		if err != nil {
			return nil, err
		}
	}

	err := reg.RegisterInit(initCopy, copyNumbers)
	if err != nil {
		return nil, err
	}

	return reg, nil
}

func numbers(v any) ([]float64, error) {
	if values, ok := v.([]float64); ok {
		return values, nil
	}

	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil, errors.Wrapf(ErrNotNumbers, "got %T", v)
	}

	values := make([]float64, len(items))

	for i, item := range items {
		values[i], err = cast.ToFloat64E(item)
		if err != nil {
			return nil, errors.Wrapf(ErrNotNumbers, "item %d: %v", i, err)
		}
	}

	return values, nil
}

func arg(args model.Args, name string) (float64, error) {
	value, err := cast.ToFloat64E(args[name])
	if err != nil {
		return 0, errors.Wrapf(err, "argument %q", name)
	}

	return value, nil
}

// apply maps fn over the input into a new slice. Cached inputs are never modified.
func apply(input any, fn func(float64) float64) (model.Output, error) {
	values, err := numbers(input)
	if err != nil {
		return model.Output{}, err
	}

	res := make([]float64, len(values))
	for i, v := range values {
		res[i] = fn(v)
	}

	return model.Plain(res), nil
}

func copyNumbers(ctx context.Context, raw any) (any, error) {
	values, err := numbers(raw)
	if err != nil {
		return nil, err
	}

	return append([]float64(nil), values...), nil
}

func scale(ctx context.Context, input any, args model.Args) (model.Output, error) {
	factor, err := arg(args, "factor")
	if err != nil {
		return model.Output{}, err
	}

	return apply(input, func(v float64) float64 { return v * factor })
}

func shift(ctx context.Context, input any, args model.Args) (model.Output, error) {
	offset, err := arg(args, "offset")
	if err != nil {
		return model.Output{}, err
	}

	return apply(input, func(v float64) float64 { return v + offset })
}

func clip(ctx context.Context, input any, args model.Args) (model.Output, error) {
	low, err := arg(args, "low")
	if err != nil {
		return model.Output{}, err
	}

	high, err := arg(args, "high")
	if err != nil {
		return model.Output{}, err
	}

	if low > high {
		return model.Output{}, errors.Errorf("low %v is greater than high %v", low, high)
	}

	return apply(input, func(v float64) float64 { return math.Max(low, math.Min(high, v)) })
}

func power(ctx context.Context, input any, args model.Args) (model.Output, error) {
	exponent, err := arg(args, "exponent")
	if err != nil {
		return model.Output{}, err
	}

	return apply(input, func(v float64) float64 { return math.Pow(v, exponent) })
}

// center subtracts the mean. The removed mean is reported as the evaluation payload.
func center(ctx context.Context, input any, args model.Args) (model.Output, error) {
	values, err := numbers(input)
	if err != nil {
		return model.Output{}, err
	}

	avg := average(values)

	out, err := apply(values, func(v float64) float64 { return v - avg })
	if err != nil {
		return model.Output{}, err
	}

	return model.WithSideValue(out.Value(), avg), nil
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	total := 0.0
	for _, v := range values {
		total += v
	}

	return total / float64(len(values))
}

func mean(ctx context.Context, output any) (any, error) {
	values, err := numbers(output)
	if err != nil {
		return nil, err
	}

	return average(values), nil
}

func sum(ctx context.Context, output any) (any, error) {
	values, err := numbers(output)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, v := range values {
		total += v
	}

	return total, nil
}

func maximum(ctx context.Context, output any) (any, error) {
	values, err := numbers(output)
	if err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return nil, errors.Wrap(ErrNotNumbers, "empty list")
	}

	res := values[0]
	for _, v := range values[1:] {
		res = math.Max(res, v)
	}

	return res, nil
}
