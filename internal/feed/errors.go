package feed

import (
	"errors"
	"fmt"
)

// FetchError is the single failure kind of a fetch: transport errors,
// non-2xx responses, API error payloads and malformed JSON all map to it.
type FetchError struct {
	Op     string // "request", "status", "api" or "decode"
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch failed (%s, HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch failed (%s): %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
