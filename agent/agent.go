package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scipunch/newsdesk/feed"
)

// Agent issues a single search-grounded news query against a remote
// generative API and returns the raw response text. Implementations make
// exactly one attempt per call; retrying is the caller's decision.
type Agent interface {
	// Query requests a fresh batch of news for the given language.
	// Failures are returned as *QueryError.
	Query(ctx context.Context, lang feed.Language, now time.Time) (string, error)

	// Name returns the agent identifier (e.g., "gemini")
	Name() string
}

// QueryError is a remote query failure classified at the adapter
// boundary, so callers branch on RateLimited instead of sniffing
// error strings at every call site.
type QueryError struct {
	RateLimited bool
	Err         error
}

func (e *QueryError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("remote query rate limited: %s", e.Err)
	}
	return fmt.Sprintf("remote query failed: %s", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Classify wraps err into a QueryError, detecting rate-limit responses
// by the markers the Gemini API embeds in its error strings.
func Classify(err error) *QueryError {
	return &QueryError{
		RateLimited: isRateLimited(err),
		Err:         err,
	}
}

// IsRateLimited reports whether err is (or wraps) a rate-limited QueryError.
func IsRateLimited(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.RateLimited
}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
