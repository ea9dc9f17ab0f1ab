package storage

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"
)

const (
	defaultFetchTimeout = 30 * time.Second
	fetchAttempts       = 3
)

// HTTPImageFetcher implements ImageFetcher with retries on transient errors
type HTTPImageFetcher struct {
	client  *http.Client
	backoff time.Duration
}

// HTTPFetcherOption customises an HTTPImageFetcher.
type HTTPFetcherOption func(*HTTPImageFetcher)

// WithTimeout bounds a single request, body included.
func WithTimeout(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPImageFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithRetryBackoff sets the base delay; attempt n waits n*base.
func WithRetryBackoff(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPImageFetcher) {
		f.backoff = d
	}
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts ...HTTPFetcherOption) *HTTPImageFetcher {
	// Transport tuned for one image per request
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	f := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   defaultFetchTimeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}

	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/svg+xml, image/*;q=0.8, */*;q=0.5")
	req.Header.Set("User-Agent", "lineart-prep/1.0")

	// Retry logic (3 attempts) - only retry on transient errors
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < fetchAttempts; attempt++ {
		resp, err = h.client.Do(req)

		if err != nil {
			lastErr = err
		}

		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}

		if err == nil {
			resp.Body.Close()

			// 4xx client errors are non-retryable
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				if resp.StatusCode == http.StatusNotFound {
					return nil, fmt.Errorf("%w: %s (client error: status code 404)", ErrNotFound, imageURL)
				}
				return nil, fmt.Errorf("failed to fetch image: client error: status code %d", resp.StatusCode)
			}
			if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
			} else {
				lastErr = fmt.Errorf("unexpected status code %d", resp.StatusCode)
			}
		}
		resp = nil

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Sleep before next retry, but not after the last attempt
		if attempt < fetchAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * h.backoff):
			}
		}
	}

	if resp == nil {
		return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", fetchAttempts, lastErr)
	}
	defer resp.Body.Close()

	img, _, err := Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}
