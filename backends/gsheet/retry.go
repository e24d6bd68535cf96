package gsheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"google.golang.org/api/googleapi"
)

// withRetry runs op, retrying transient API failures with jittered
// exponential backoff. Non-retryable errors return immediately.
func (b *Backend) withRetry(ctx context.Context, op func() error) error {
	bo := &backoff.Backoff{
		Min:    b.config.RetryMin,
		Max:    b.config.RetryMax,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= b.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bo.Duration()):
		}
	}

	if isQuota(err) {
		return fmt.Errorf("%w: giving up after %d attempts: %v", ErrQuotaExceeded, b.config.MaxRetries+1, err)
	}
	return fmt.Errorf("giving up after %d attempts: %w", b.config.MaxRetries+1, err)
}

func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return true
	}
	return false
}

func isQuota(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
