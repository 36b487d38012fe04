// Package driver defines the page-driver capability the pipelines
// consume. The embedded automation engine that actually navigates and
// evaluates scripts lives outside this module; everything here treats
// script content and selectors as opaque.
package driver

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

// PageDriver is the abstract capability to navigate a live remote page
// and extract structured records from it. It is a single shared,
// non-reentrant resource: at most one pipeline may use it at a time.
type PageDriver interface {
	// Load navigates to the given URL.
	Load(ctx context.Context, url string) error
	// IsLoading reports whether the page is still loading.
	IsLoading(ctx context.Context) (bool, error)
	// Evaluate runs an extraction script and returns its result. The
	// result is either a scalar (string/bool/float64) or a slice of
	// string-keyed field maps; DecodeRecords handles the latter.
	Evaluate(ctx context.Context, script string) (any, error)
}

// Record is one extracted row: a string-keyed field map.
type Record map[string]string

// Field returns the named field, or "" when absent.
func (r Record) Field(name string) string {
	return r[name]
}

// DecodeRecords coerces an Evaluate result into records. Drivers
// deserialize script output as []any of map[string]any; field values
// that are not strings are dropped rather than stringified, since the
// extraction scripts only emit strings for fields the pipelines read.
func DecodeRecords(result any) ([]Record, error) {
	if result == nil {
		return nil, nil
	}
	raw, ok := result.([]any)
	if !ok {
		return nil, eris.Errorf("driver: expected record array, got %T", result)
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, eris.Errorf("driver: expected record object, got %T", item)
		}
		rec := make(Record, len(m))
		for k, v := range m {
			if s, ok := v.(string); ok {
				rec[k] = s
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// NavigateAndWait loads a URL and polls until the driver reports the
// page finished loading, bounded by timeout. Exceeding the bound is a
// categorized timeout error, never an indefinite hang.
func NavigateAndWait(ctx context.Context, d PageDriver, url string, timeout time.Duration) error {
	if err := d.Load(ctx, url); err != nil {
		return resilience.Categorize(resilience.CategoryAutomation, eris.Wrapf(err, "driver: load %s", url))
	}
	return resilience.WaitUntil(ctx, "page load", resilience.WaitConfig{Timeout: timeout}, func(ctx context.Context) (bool, error) {
		loading, err := d.IsLoading(ctx)
		if err != nil {
			return false, resilience.Categorize(resilience.CategoryAutomation, eris.Wrap(err, "driver: loading state"))
		}
		return !loading, nil
	})
}

// EvaluateBool runs a script expected to yield a boolean. Non-boolean
// results are an automation error, not coerced to false.
func EvaluateBool(ctx context.Context, d PageDriver, script string) (bool, error) {
	result, err := d.Evaluate(ctx, script)
	if err != nil {
		return false, resilience.Categorize(resilience.CategoryAutomation, eris.Wrap(err, "driver: evaluate"))
	}
	b, ok := result.(bool)
	if !ok {
		return false, resilience.Categorize(resilience.CategoryAutomation, eris.Errorf("driver: expected bool, got %T", result))
	}
	return b, nil
}

// EvaluateString runs a script expected to yield a string.
func EvaluateString(ctx context.Context, d PageDriver, script string) (string, error) {
	result, err := d.Evaluate(ctx, script)
	if err != nil {
		return "", resilience.Categorize(resilience.CategoryAutomation, eris.Wrap(err, "driver: evaluate"))
	}
	s, ok := result.(string)
	if !ok {
		return "", resilience.Categorize(resilience.CategoryAutomation, eris.Errorf("driver: expected string, got %T", result))
	}
	return s, nil
}
