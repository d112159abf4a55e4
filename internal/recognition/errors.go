// SPDX-License-Identifier: MIT
package recognition

import (
	"errors"
	"fmt"
	"time"
)

// ErrServiceUnavailable is matched by every *ServiceUnavailableError.
var ErrServiceUnavailable = errors.New("recognition: service unavailable")

// ServiceUnavailableError reports that the subsystems were not ready in time
// or failed to initialize.
type ServiceUnavailableError struct {
	Waited time.Duration // set when the readiness wait expired
	Err    error         // set when initialization failed
}

func (e *ServiceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recognition service unavailable: %v", e.Err)
	}
	return fmt.Sprintf("recognition service not ready after %s", e.Waited)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

func (e *ServiceUnavailableError) Is(target error) bool { return target == ErrServiceUnavailable }

// Outcome is how a classifier or transcription invocation ended.
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeRejected Outcome = "rejected"
	OutcomeTimedOut Outcome = "timed-out"
)

// ClassifierFailure records a classifier that errored, panicked or timed out.
// It never aborts a recognition call.
type ClassifierFailure struct {
	Classifier string
	Outcome    Outcome
	Err        error
}

func (e *ClassifierFailure) Error() string {
	return fmt.Sprintf("classifier %s %s: %v", e.Classifier, e.Outcome, e.Err)
}

func (e *ClassifierFailure) Unwrap() error { return e.Err }

// TranscriptionFailure records a failed transcription step. It never aborts a
// recognition call.
type TranscriptionFailure struct {
	Outcome Outcome
	Err     error
}

func (e *TranscriptionFailure) Error() string {
	return fmt.Sprintf("transcription %s: %v", e.Outcome, e.Err)
}

func (e *TranscriptionFailure) Unwrap() error { return e.Err }
