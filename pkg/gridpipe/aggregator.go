package gridpipe

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Loader reads a persisted artifact.
type Loader interface {
	Load(path string, v any) error
}

// EvaluationRow is one evaluation payload of one dataset.
//
// Value has been reloaded from the persisted msgpack result, so it holds the
// generic decoded form of the payload: integers come back as int64, floats as
// float64, strings as string, slices as []interface{} and structs or maps as
// map[string]interface{} keyed by field name.
type EvaluationRow struct {
	Value       any          `yaml:"value"`
	Dataset     string       `yaml:"dataset"`
	Combination string       `yaml:"combination"`
	Assignment  []Assignment `yaml:"assignment"`
}

// ElapsedRow is one timing of one dataset.
type ElapsedRow struct {
	Dataset     string        `yaml:"dataset"`
	Combination string        `yaml:"combination"`
	Assignment  []Assignment  `yaml:"assignment"`
	Elapsed     time.Duration `yaml:"elapsed"`
}

// Elapsed holds the merged timings of all datasets.
type Elapsed struct {
	Stepwise map[string][]ElapsedRow `yaml:"stepwise"`
	Total    []ElapsedRow            `yaml:"total"`
}

// Inconsistency reports a dataset whose combinations differ from the first dataset.
type Inconsistency struct {
	Dataset   string   `yaml:"dataset"`
	Reference string   `yaml:"reference"`
	Missing   []string `yaml:"missing,omitempty"`
	Extra     []string `yaml:"extra,omitempty"`
}

// AggregatedResult merges the results of every dataset, keyed by step.
type AggregatedResult struct {
	Evaluation      map[string][]EvaluationRow `yaml:"evaluation"`
	Elapsed         Elapsed                    `yaml:"elapsed"`
	Steps           []string                   `yaml:"steps"`
	Datasets        []string                   `yaml:"datasets"`
	Inconsistencies []Inconsistency            `yaml:"inconsistencies,omitempty"`
}

// Aggregate reloads the persisted result of every handle and merges them.
func Aggregate(loader Loader, handles []Handle, logger zerolog.Logger) (*AggregatedResult, error) {
	results := make([]*DatasetResult, len(handles))

	for i, handle := range handles {
		res := &DatasetResult{}

		err := loader.Load(handle.Path, res)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to load result of dataset %q", handle.Dataset)
		}

		results[i] = res
	}

	return Merge(logger, results...)
}

// Merge concatenates per-dataset results. Datasets are expected to share the
// same grid; differing combination sets are reported as inconsistencies and
// the union is kept.
func Merge(logger zerolog.Logger, results ...*DatasetResult) (*AggregatedResult, error) {
	agg := &AggregatedResult{
		Evaluation: make(map[string][]EvaluationRow),
		Elapsed:    Elapsed{Stepwise: make(map[string][]ElapsedRow)},
		Steps:      []string{},
		Datasets:   make([]string, 0, len(results)),
	}

	if len(results) == 0 {
		return agg, nil
	}

	agg.Steps = append(agg.Steps, results[0].Steps...)

	for _, res := range results {
		agg.Datasets = append(agg.Datasets, res.Dataset)

		err := agg.add(res)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %q", res.Dataset)
		}
	}

	agg.Inconsistencies = inconsistencies(results)
	for _, inc := range agg.Inconsistencies {
		logger.Warn().
			Str("dataset", inc.Dataset).
			Str("reference", inc.Reference).
			Strs("missing", inc.Missing).
			Strs("extra", inc.Extra).
			Msg("datasets do not share the same combinations")
	}

	return agg, nil
}

func (a *AggregatedResult) add(res *DatasetResult) error {
	for _, step := range res.Steps {
		for _, prefix := range res.Prefixes[step] {
			assignment, err := ParseCombinationName(prefix)
			if err != nil {
				return err
			}

			if payload, ok := res.Evaluations[step][prefix]; ok {
				a.Evaluation[step] = append(a.Evaluation[step], EvaluationRow{
					Dataset:     res.Dataset,
					Combination: prefix,
					Assignment:  assignment,
					Value:       payload,
				})
			}

			a.Elapsed.Stepwise[step] = append(a.Elapsed.Stepwise[step], ElapsedRow{
				Dataset:     res.Dataset,
				Combination: prefix,
				Assignment:  assignment,
				Elapsed:     res.Elapsed[step][prefix],
			})
		}
	}

	for _, name := range res.Order {
		assignment, err := ParseCombinationName(name)
		if err != nil {
			return err
		}

		a.Elapsed.Total = append(a.Elapsed.Total, ElapsedRow{
			Dataset:     res.Dataset,
			Combination: name,
			Assignment:  assignment,
			Elapsed:     res.Total[name],
		})
	}

	return nil
}

func inconsistencies(results []*DatasetResult) []Inconsistency {
	ref := results[0]
	res := []Inconsistency{}

	for _, other := range results[1:] {
		missing := difference(ref.Total, other.Total)
		extra := difference(other.Total, ref.Total)

		if len(missing) == 0 && len(extra) == 0 {
			continue
		}

		res = append(res, Inconsistency{
			Dataset:   other.Dataset,
			Reference: ref.Dataset,
			Missing:   missing,
			Extra:     extra,
		})
	}

	return res
}

// difference returns the sorted keys of a absent from b.
func difference(a, b map[string]time.Duration) []string {
	res := []string{}

	for name := range a {
		if _, ok := b[name]; !ok {
			res = append(res, name)
		}
	}

	sort.Strings(res)

	return res
}
