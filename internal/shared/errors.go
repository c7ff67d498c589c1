package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrProfileNotFound = fmt.Errorf("profile not found")

	// Playlist retrieval errors
	ErrInvalidURL         = fmt.Errorf("not a valid URL")
	ErrAPIRequest         = fmt.Errorf("request failed")
	ErrDecodePlaylist     = fmt.Errorf("failed to decode playlist")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Persistence errors
	ErrCheckRunNotFound = fmt.Errorf("check run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
