package roundtrippers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productproxy/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// serverStatusError marks a 5xx answer as a failure for the breaker.
// The response itself is still handed back to the caller.
type serverStatusError struct {
	status int
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("record store answered %d", e.status)
}

// NewCircuitBreaker creates a breaker that trips on consecutive failures or on the error rate.
// Transport errors and 5xx answers count as failures; 4xx answers (e.g. not found) do not.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.Requests >= cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent))
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			}
		},
	}
	return gobreaker.NewCircuitBreaker[*http.Response](st)
}

// CircuitBreaker returns a RoundTripper that routes every request through cb.
// When the breaker is open the request fails with gobreaker.ErrOpenState without reaching next.
func CircuitBreaker(next http.RoundTripper, cb *gobreaker.CircuitBreaker[*http.Response]) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := cb.Execute(func() (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return resp, &serverStatusError{status: resp.StatusCode}
			}
			return resp, nil
		})
		var statusErr *serverStatusError
		if errors.As(err, &statusErr) {
			return resp, nil
		}
		return resp, err
	})
}
