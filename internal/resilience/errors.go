// Package resilience provides the bounded-wait primitive and the error
// taxonomy shared by the discovery and automation pipelines.
package resilience

import "errors"

// Category classifies a failure for per-item reporting.
type Category string

const (
	// CategoryInput marks invalid caller input (bad URL, bad file format).
	// Surfaced immediately, before side effects.
	CategoryInput Category = "input"

	// CategoryAutomation marks a page-automation failure (element not
	// found, dialog timeout, send failure). Recorded per contact, the
	// loop continues.
	CategoryAutomation Category = "automation"

	// CategoryNetwork marks an API or transport failure (auth,
	// rate-limit, server error, credits exhausted).
	CategoryNetwork Category = "network"

	// CategoryTimeout marks an exceeded bounded wait.
	CategoryTimeout Category = "timeout"
)

// CategorizedError carries a machine-checkable category alongside a
// human-readable message.
type CategorizedError struct {
	Category Category
	Err      error
}

func (e *CategorizedError) Error() string {
	return string(e.Category) + ": " + e.Err.Error()
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// Categorize wraps err with a category. Returns nil for a nil err.
func Categorize(category Category, err error) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{Category: category, Err: err}
}

// CategoryOf extracts the category from an error chain. Uncategorized
// errors report CategoryAutomation, the engine's per-item default.
func CategoryOf(err error) Category {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return CategoryAutomation
}
