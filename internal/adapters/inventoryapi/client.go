// internal/adapters/inventoryapi/client.go
package inventoryapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ivy_homes/internal/adapters/observability"
	"ivy_homes/internal/adapters/payload"
	"ivy_homes/internal/domain"
)

const maxBody = 16 << 20

type Client struct {
	base string
	hc   *retryablehttp.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("inventory API base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}

	c := &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}

	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 20 * time.Second
	rc.Logger = zlog{}
	// retries spend the same budget as first attempts
	rc.PrepareRetry = func(req *http.Request) error { return c.rl.Wait(req.Context()) }
	c.hc = rc

	return c, nil
}

func (c *Client) Name() string { return "api" }

// Load fetches the whole inventory. It tries the current endpoint first and
// falls back to the versioned one on 404.
func (c *Client) Load(ctx context.Context) ([]domain.Property, error) {
	candidates := []string{
		c.base + "/properties",    // preferred
		c.base + "/v1/properties", // versioned deployments
	}
	var out []domain.Property
	err := c.getFirst(ctx, candidates, func(body io.Reader) error {
		props, err := payload.Decode(body)
		out = props
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Internals ----

func (c *Client) getFirst(ctx context.Context, urls []string, decode func(io.Reader) error) error {
	var last error
	for _, u := range urls {
		if err := c.get(ctx, u, decode); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				last = err
				continue // try next pattern
			}
			return err // non-404: stop early
		}
		return nil
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// get performs a rate-limited GET. Transient failures (429, 5xx, network)
// are retried by retryablehttp, which honours Retry-After.
func (c *Client) get(ctx context.Context, url string, decode func(io.Reader) error) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ivy-homes/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("inventory_api", "properties", 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("inventory_api", "properties", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return decode(io.LimitReader(resp.Body, maxBody))
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", url, domain.ErrNotFound)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", url, domain.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", url, domain.ErrForbidden)
	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// zlog routes retryablehttp's leveled logging into zerolog.
type zlog struct{}

func (zlog) Error(msg string, kv ...interface{}) { log.Error().Fields(kv).Msg(msg) }
func (zlog) Info(msg string, kv ...interface{})  { log.Debug().Fields(kv).Msg(msg) }
func (zlog) Debug(msg string, kv ...interface{}) { log.Debug().Fields(kv).Msg(msg) }
func (zlog) Warn(msg string, kv ...interface{})  { log.Warn().Fields(kv).Msg(msg) }
