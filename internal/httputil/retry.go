// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client used to reach the
// text-generation endpoint.
package httputil

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// RetryTransport is an http.RoundTripper that retries HTTP 429 (Too Many
// Requests) with exponential backoff: RetryBaseDelay, then twice that, and so
// on. A Retry-After header given in seconds overrides the computed delay.
//
// Requests whose body cannot be replayed (no GetBody) are never retried.
// After MaxRetries the last 429 response is returned so the caller can
// inspect it.
type RetryTransport struct {
	// Base performs the requests. nil means http.DefaultTransport.
	Base http.RoundTripper

	// MaxRetries is the number of retries after the first attempt. Zero or
	// less means the default (3).
	MaxRetries int

	Log logrus.FieldLogger
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	maxRetries := t.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		attemptReq := req
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq = req.Clone(ctx)
			attemptReq.Body = body
		}

		resp, err := base.RoundTrip(attemptReq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || !replayable || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := retryDelay(resp, attempt)
		if t.Log != nil {
			t.Log.WithFields(logrus.Fields{
				"url":     req.URL.Redacted(),
				"attempt": attempt + 1,
				"max":     maxRetries,
				"backoff": backoff.String(),
			}).Warn("rate limited, retrying")
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func retryDelay(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}

// NewClient returns an http.Client whose transport retries 429 responses.
// A zero timeout leaves the client without a deadline.
func NewClient(maxRetries int, timeout time.Duration, log logrus.FieldLogger) *http.Client {
	return &http.Client{
		Transport: &RetryTransport{MaxRetries: maxRetries, Log: log},
		Timeout:   timeout,
	}
}
