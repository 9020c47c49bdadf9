package models

// ValidationResult is the outcome of a temporal business-rule check. It is a
// plain value computed per call, never persisted, and never surfaced as an
// error: a rejected request is an expected outcome, not a failure.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
	// MinutesUntilEvent is the signed minute count between now and the
	// pickup moment (negative once the pickup has passed). Zero when the
	// input could not be parsed.
	MinutesUntilEvent int `json:"minutesUntilEvent,omitempty"`
}
