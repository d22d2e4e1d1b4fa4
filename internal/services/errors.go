package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrLookup marks candidate search failures. Non-fatal: the match engine
	// treats a tagged lookup failure as an empty candidate set.
	ErrLookup = errors.New("lookup error")
	// ErrScoring marks scoring failures for a single entry. Fatal only for
	// that entry, never for the run.
	ErrScoring = errors.New("scoring error")
	// ErrValidation marks permanent rejections by the target API. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks updates against a target ID the catalog does not know.
	// Permanent, never retried.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks per-request timeouts. Retryable.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks retryable failures: rate limits, 5xx, connection loss.
	ErrTransient = errors.New("transient failure")
	// ErrCancelled marks user-initiated aborts. Stops new work without
	// counting in-flight entries as failed.
	ErrCancelled = errors.New("cancelled")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, timeouts, connection errors).
// Cancellation and permanent markers are never retriable.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "429") || strings.Contains(message, "rate limit") {
		return true
	}
	// Server errors are typically transient (outages, deploys, overload).
	for _, code := range []string{"502", "503", "504"} {
		if strings.Contains(message, code) {
			return true
		}
	}
	for _, token := range []string{
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"temporary failure",
		"awaiting headers",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

// IsCancellation reports whether err stems from a caller-initiated abort.
func IsCancellation(err error) bool {
	return err != nil && (errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled))
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
