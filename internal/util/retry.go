// ABOUTME: Retry utilities for remote store operations with exponential backoff
// ABOUTME: Used by the Charm-backed cache to ride out transient sync failures
package util

import (
	"fmt"
	"math/rand"
	"time"
)

// MaxBackoff caps a single backoff interval before jitter
const MaxBackoff = 30 * time.Second

// CalculateBackoff returns exponential backoff with jitter.
// Base delay is doubled each attempt, with random jitter up to 25%.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > MaxBackoff || backoff <= 0 {
		backoff = MaxBackoff
	}
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	jitter := time.Duration(rand.Int63n(half)) - backoff/4
	return backoff + jitter
}

// Retry calls fn up to retries+1 times, sleeping with backoff between failures
func Retry(retries int, baseDelay time.Duration, sleep func(time.Duration), fn func() error) error {
	if retries < 0 {
		retries = 0
	}
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			sleep(CalculateBackoff(baseDelay, attempt))
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", retries+1, err)
}
