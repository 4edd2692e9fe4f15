package gridpipe

import "time"

// DatasetResult holds what the traversal of a grid produced for one dataset.
// Final outputs are kept in memory only; everything else is persisted.
type DatasetResult struct {
	// Results is the last step output per full combination name.
	Results map[string]any `codec:"-"`
	// Evaluations holds the evaluation payload per step, then per combination name prefix.
	Evaluations map[string]map[string]any `codec:"evaluations"`
	// Elapsed holds the computation time per step, then per combination name prefix.
	Elapsed map[string]map[string]time.Duration `codec:"elapsed"`
	// Total holds, per full combination name, the sum of the elapsed time of every step.
	Total map[string]time.Duration `codec:"total"`
	// Prefixes lists, per step, the combination name prefixes in the order they were computed.
	Prefixes map[string][]string `codec:"prefixes"`
	Dataset  string              `codec:"dataset"`
	Steps    []string            `codec:"steps"`
	// Order lists the full combination names in grid order.
	Order []string `codec:"order"`
}

func newDatasetResult(dataset string, steps []string) *DatasetResult {
	res := &DatasetResult{
		Dataset:     dataset,
		Steps:       steps,
		Results:     make(map[string]any),
		Evaluations: make(map[string]map[string]any, len(steps)),
		Elapsed:     make(map[string]map[string]time.Duration, len(steps)),
		Total:       make(map[string]time.Duration),
		Prefixes:    make(map[string][]string, len(steps)),
	}

	for _, step := range steps {
		res.Evaluations[step] = make(map[string]any)
		res.Elapsed[step] = make(map[string]time.Duration)
	}

	return res
}

// recordElapsed keeps the first time measured for a prefix.
func (r *DatasetResult) recordElapsed(step, prefix string, elapsed time.Duration) {
	if _, ok := r.Elapsed[step][prefix]; ok {
		return
	}

	r.Elapsed[step][prefix] = elapsed
	r.Prefixes[step] = append(r.Prefixes[step], prefix)
}

// recordEvaluation keeps the first payload written for a prefix.
func (r *DatasetResult) recordEvaluation(step, prefix string, payload any) {
	if _, ok := r.Evaluations[step][prefix]; ok {
		return
	}

	r.Evaluations[step][prefix] = payload
}

func (r *DatasetResult) recordResult(name string, output any, total time.Duration) {
	if _, ok := r.Total[name]; !ok {
		r.Order = append(r.Order, name)
	}

	r.Results[name] = output
	r.Total[name] = total
}
