package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Result is the outcome of one batch item
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult is the JSON a batch tool returns
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Step is one endpoint operation of a batch
type Step struct {
	Operation string            `json:"operation"`
	Args      map[string]string `json:"args,omitempty"`
	Params    map[string]any    `json:"params,omitempty"`
	Body      any               `json:"body,omitempty"`
}

// ID labels the step in the batch result, e.g. "2:files.get"
func (s Step) ID(index int) string {
	return fmt.Sprintf("%d:%s", index, s.Operation)
}

// ParseStringOrArray reads an ID list given as an array, a JSON array
// string or a single ID. A string that does not decode as an array of
// strings is one ID, so names like "[draft] notes.pdf" survive.
func ParseStringOrArray(param any, name string) ([]string, error) {
	var items []any
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", name)
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", name)
		}
		var ids []string
		if !strings.HasPrefix(v, "[") || json.Unmarshal([]byte(v), &ids) != nil {
			ids = []string{v}
		}
		items = make([]any, len(ids))
		for i, id := range ids {
			items[i] = id
		}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", name)
	}
	ids := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		switch {
		case !ok:
			return nil, fmt.Errorf("%s[%d] must be a string", name, i)
		case s == "":
			return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
		}
		ids[i] = s
	}
	return ids, nil
}

// ParseSteps reads the steps of a batch from an array of step objects or
// its JSON encoding. Every step must name an operation.
func ParseSteps(param any) ([]Step, error) {
	var raw []byte
	switch v := param.(type) {
	case nil:
		return nil, errors.New("steps is required")
	case string:
		raw = []byte(v)
	case []any:
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("steps: %w", err)
		}
	default:
		return nil, errors.New("steps must be an array of step objects")
	}

	var steps []Step
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("steps must be an array of step objects: %w", err)
	}
	if len(steps) == 0 {
		return nil, errors.New("steps cannot be empty")
	}
	for i, s := range steps {
		if s.Operation == "" {
			return nil, fmt.Errorf("steps[%d].operation is required", i)
		}
	}
	return steps, nil
}

// Summarize counts the outcomes of results
func Summarize(results []Result) BatchResult {
	br := BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == statusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// FormatResults renders Summarize(results) as indented JSON
func FormatResults(results []Result) string {
	out, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(out)
}

// ProcessBatch runs fn for every id. Failures are recorded and the batch
// goes on.
func ProcessBatch(ids []string, fn func(id string) (any, error)) []Result {
	results := make([]Result, len(ids))
	for i, id := range ids {
		results[i] = outcome(id)(fn(id))
	}
	return results
}

// RunSteps executes the steps in order. A failing step does not stop the
// batch. Once ctx is done the remaining steps fail with its error.
func RunSteps(ctx context.Context, steps []Step, fn func(ctx context.Context, step Step) (any, error)) []Result {
	results := make([]Result, len(steps))
	for i, step := range steps {
		id := step.ID(i)
		if err := ctx.Err(); err != nil {
			results[i] = NewErrorResult(id, err)
			continue
		}
		results[i] = outcome(id)(fn(ctx, step))
	}
	return results
}

func outcome(id string) func(any, error) Result {
	return func(res any, err error) Result {
		if err != nil {
			return NewErrorResult(id, err)
		}
		return NewSuccessResult(id, res)
	}
}

func NewSuccessResult(id string, result any) Result {
	return Result{ID: id, Status: statusSuccess, Result: result}
}

func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: statusError, Error: err.Error()}
}
