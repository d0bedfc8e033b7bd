package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/indigobot/server/internal/agent/model"
	errx "github.com/indigobot/server/internal/core/error"
	logx "github.com/indigobot/server/pkg/logger"
)

// Resilient retries a Completer on transient failures with jittered
// exponential backoff and an optional per-call timeout. With zero retries and
// no timeout it behaves exactly like the wrapped completer.
type Resilient struct {
	next       model.Completer
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
}

func NewResilient(next model.Completer, cfg model.RetryConfig) (*Resilient, error) {
	r := &Resilient{next: next, maxRetries: cfg.MaxRetries, baseDelay: 500 * time.Millisecond}
	if r.maxRetries < 0 {
		r.maxRetries = 0
	}
	if cfg.BaseDelay != "" {
		d, err := time.ParseDuration(cfg.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse LLM_RETRY_BASE_DELAY: %w", err)
		}
		r.baseDelay = d
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse LLM_TIMEOUT: %w", err)
		}
		r.timeout = d
	}
	return r, nil
}

func (r *Resilient) Complete(ctx context.Context, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		out, err := r.next.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}

		wait := r.backoff(attempt)
		logx.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying LLM call")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// isRetryable accepts rate limits, server errors and deadlines.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "deadline") ||
		errx.StatusOf(err) == http.StatusServiceUnavailable
}

func (r *Resilient) backoff(attempt int) time.Duration {
	backoff := float64(r.baseDelay) * float64(int(1)<<attempt)
	jitter := (rand.Float64() * 0.2) * backoff
	return time.Duration(backoff + jitter)
}

var _ model.Completer = (*Resilient)(nil)
