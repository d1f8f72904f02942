package macromicro

import "fmt"

// FetchError reports a failed upstream fetch: a transport error, a timeout,
// or a non-2xx HTTP status. Dependent steps degrade gracefully when one is
// returned — a missing payload or image is not fatal to the session.
type FetchError struct {
	URL        string
	StatusCode int   // zero when the request never completed
	Err        error // underlying transport error, nil on status failures
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("macromicro: fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("macromicro: fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a chart-data payload that is present but missing the
// expected structure. Path names the first key or index that could not be
// reached.
type ParseError struct {
	Path string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("macromicro: malformed chart data: missing %s", e.Path)
}
