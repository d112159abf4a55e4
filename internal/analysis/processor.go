// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earshot/internal/audio"
)

// FeatureExtractor turns a decoded buffer into Features. Implementations must
// release any transient resources before returning, on success or failure.
type FeatureExtractor interface {
	// Extract fails with *audio.DecodeError for unusable input and with
	// *TimeoutError when the work exceeds the implementation's bound.
	Extract(ctx context.Context, buf *audio.Buffer) (Features, error)
}

// ErrTimeout is matched by every *TimeoutError via errors.Is.
var ErrTimeout = errors.New("analysis: timed out")

// TimeoutError reports an operation that exceeded its time bound.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Limit)
}

// Is reports whether target is ErrTimeout or context.DeadlineExceeded.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == context.DeadlineExceeded
}
