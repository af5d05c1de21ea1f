package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Resolution errors. ErrInvalidSource is the only run-fatal error:
	// an unrecognized, unreachable, or empty input source.
	ErrInvalidSource = fmt.Errorf("invalid source")

	// Per-track errors. All of these drop the affected track and let the
	// run continue.
	ErrMergeSkip      = fmt.Errorf("no usable title after all fallbacks")
	ErrStreamNotFound = fmt.Errorf("no matching stream found")
	ErrDownload       = fmt.Errorf("download failed")

	// ErrTagging keeps the downloaded file and only loses its tags.
	ErrTagging = fmt.Errorf("metadata tagging failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
