package page

import (
	"fmt"

	"github.com/wenzapen/trowel/fetch"
)

// ConfigurationError reports a unit that cannot run at all, such as one
// with no resolvable source. It is fatal to the unit, and fatal to the
// run when the unit is a root.
type ConfigurationError struct {
	Unit   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Unit, e.Reason)
}

// FetchError reports a failed document fetch, carrying the owning
// unit's identity so the branch is diagnosable without a rerun.
type FetchError struct {
	Unit   string
	Source string
	Status fetch.Status
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: fetch %s: %s: %v", e.Unit, e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: fetch %s: %s", e.Unit, e.Source, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failure inside extraction logic, carrying
// the owning unit's identity and source.
type ExtractionError struct {
	Unit   string
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s (%s): %v", e.Unit, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Unit, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
