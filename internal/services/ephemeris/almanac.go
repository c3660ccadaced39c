package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"AstroSignal/internal/domain/models"
	"AstroSignal/pkg/config"
	xhttp "AstroSignal/pkg/http"
	applogger "AstroSignal/pkg/logger"
)

// AlmanacResponse is the remote almanac payload.
type AlmanacResponse struct {
	Body      string  `json:"body"`
	Longitude float64 `json:"longitude"`
}

// Almanac queries a remote almanac service:
// GET {base}/v1/longitude?body=<id>&time=<RFC3339>.
type Almanac struct {
	baseURL  string
	client   *xhttp.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	attempts int
	backoff  time.Duration
	l        *applogger.Logger
}

// NewAlmanac builds the client from the ephemeris.almanac config section.
func NewAlmanac(cfg *config.EphemerisConfig, l *applogger.Logger) *Almanac {
	ac := cfg.Almanac
	timeout := ac.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	limit := rate.Inf
	if ac.RPS > 0 {
		limit = rate.Limit(ac.RPS)
	}
	burst := ac.Burst
	if burst <= 0 {
		burst = 1
	}
	maxFailures := ac.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := ac.Breaker.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	a := &Almanac{
		baseURL:  strings.TrimRight(ac.URL, "/"),
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:  rate.NewLimiter(limit, burst),
		attempts: ac.MaxAttempts,
		backoff:  50 * time.Millisecond,
		l:        l,
	}
	if a.attempts <= 0 {
		a.attempts = 1
	}
	a.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "almanac",
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// a 4xx is the caller's fault, not an outage
			return err == nil || !xhttp.Retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if a.l != nil {
				a.l.Warn("circuit breaker state changed",
					applogger.String("name", name),
					applogger.String("from", from.String()),
					applogger.String("to", to.String()),
				)
			}
		},
	})
	return a
}

func (a *Almanac) Name() string { return "almanac" }

func (a *Almanac) Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error) {
	if t.IsZero() {
		return 0, fmt.Errorf("%w: zero time", models.ErrMalformedTimestamp)
	}
	if a.baseURL == "" {
		return 0, fmt.Errorf("%w: almanac url not configured", models.ErrEphemerisUnavailable)
	}

	var resp AlmanacResponse
	err := a.getWithRetry(ctx, body, t, &resp)
	if err != nil {
		return 0, fmt.Errorf("%w: almanac %s at %s: %w", models.ErrEphemerisUnavailable, body, t.UTC().Format(time.RFC3339), err)
	}
	if resp.Body != "" && !strings.EqualFold(resp.Body, string(body)) {
		return 0, fmt.Errorf("%w: almanac answered for %q, asked %q", models.ErrEphemerisUnavailable, resp.Body, body)
	}
	if math.IsNaN(resp.Longitude) || math.IsInf(resp.Longitude, 0) {
		return 0, fmt.Errorf("%w: almanac returned non-finite longitude", models.ErrEphemerisUnavailable)
	}
	return norm(resp.Longitude), nil
}

func (a *Almanac) get(ctx context.Context, body models.Body, t time.Time, dest *AlmanacResponse) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := a.breaker.Execute(func() (interface{}, error) {
		return nil, a.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    a.baseURL + "/v1/longitude",
			QueryParams: url.Values{
				"body": {string(body)},
				"time": {t.UTC().Format(time.RFC3339)},
			},
		}, dest)
	})
	return err
}

// getWithRetry retries transient failures with linear backoff.
func (a *Almanac) getWithRetry(ctx context.Context, body models.Body, t time.Time, dest *AlmanacResponse) error {
	var err error
	for i := 1; i <= a.attempts; i++ {
		err = a.get(ctx, body, t, dest)
		if err == nil {
			return nil
		}
		if !xhttp.Retryable(err) || errors.Is(err, gobreaker.ErrOpenState) || i == a.attempts {
			break
		}
		select {
		case <-time.After(time.Duration(i) * a.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
