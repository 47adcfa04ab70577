package models

import (
	"fmt"
	"time"
)

// InvalidRangeError is returned when a range ends before it starts.
type InvalidRangeError struct {
	From time.Time
	To   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: to (%s) precedes from (%s)",
		e.To.UTC().Format(time.RFC3339), e.From.UTC().Format(time.RFC3339))
}

// ValidationError represents a rejected input field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
