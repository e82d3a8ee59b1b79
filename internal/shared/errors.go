package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrStreamerNotFound   = fmt.Errorf("streamer not found")

	// Mirror write rejections, surfaced per operation in a sync pass
	ErrCreateRejected = fmt.Errorf("event create rejected")
	ErrUpdateRejected = fmt.Errorf("event update rejected")
	ErrDeleteRejected = fmt.Errorf("event delete rejected")

	// Schedule feed errors
	ErrUnknownRecurrence = fmt.Errorf("unsupported recurrence rule")
	ErrRecurrenceBound   = fmt.Errorf("recurrence advancement exceeded weekday search bound")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
