package transfer

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

// CircuitBreakerTransport wraps a DaemonTransport so a misbehaving daemon
// opens a circuit instead of being hammered with retries forever, the
// same shape as the teacher's CircuitBreakerClient (execute/castResult
// over gobreaker), generalized with generics instead of per-method
// copy-paste since this interface is far smaller than Tautulli's.
type CircuitBreakerTransport struct {
	transport DaemonTransport
	cb        *gobreaker.CircuitBreaker[any]
	name      string
}

// NewCircuitBreakerTransport wraps transport with a breaker that opens
// after a 60% failure rate over at least 10 requests in a 1-minute
// window, and waits 2 minutes before probing again — the teacher's own
// tuning for an unreliable third-party API.
func NewCircuitBreakerTransport(transport DaemonTransport) *CircuitBreakerTransport {
	name := "transfer-daemon"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.StateToFloat("closed"))

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).Msg("transfer daemon circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.StateToFloat(to.String()))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &CircuitBreakerTransport{transport: transport, cb: cb, name: name}
}

func (c *CircuitBreakerTransport) execute(fn func() (any, error)) (any, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return result, nil
}

func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func (c *CircuitBreakerTransport) StartSearch(ctx context.Context, req SearchRequest) (string, error) {
	return castResult[string](c.execute(func() (any, error) { return c.transport.StartSearch(ctx, req) }))
}

func (c *CircuitBreakerTransport) PollResponses(ctx context.Context, searchID string) ([]RawResponse, error) {
	return castResult[[]RawResponse](c.execute(func() (any, error) { return c.transport.PollResponses(ctx, searchID) }))
}

func (c *CircuitBreakerTransport) DeleteSearch(ctx context.Context, searchID string) error {
	_, err := c.execute(func() (any, error) { return nil, c.transport.DeleteSearch(ctx, searchID) })
	return err
}

func (c *CircuitBreakerTransport) EnqueueDownload(ctx context.Context, username string, files []DownloadFile) (string, error) {
	return castResult[string](c.execute(func() (any, error) { return c.transport.EnqueueDownload(ctx, username, files) }))
}

func (c *CircuitBreakerTransport) AllDownloads(ctx context.Context) ([]DownloadStatus, error) {
	return castResult[[]DownloadStatus](c.execute(func() (any, error) { return c.transport.AllDownloads(ctx) }))
}

func (c *CircuitBreakerTransport) CancelDownload(ctx context.Context, username, downloadID string) error {
	_, err := c.execute(func() (any, error) { return nil, c.transport.CancelDownload(ctx, username, downloadID) })
	return err
}

func (c *CircuitBreakerTransport) ClearCompletedDownloads(ctx context.Context) error {
	_, err := c.execute(func() (any, error) { return nil, c.transport.ClearCompletedDownloads(ctx) })
	return err
}

func (c *CircuitBreakerTransport) ListSearchHistory(ctx context.Context) ([]SearchHistoryEntry, error) {
	return castResult[[]SearchHistoryEntry](c.execute(func() (any, error) { return c.transport.ListSearchHistory(ctx) }))
}

func (c *CircuitBreakerTransport) DeleteSearchHistory(ctx context.Context, searchID string) error {
	_, err := c.execute(func() (any, error) { return nil, c.transport.DeleteSearchHistory(ctx, searchID) })
	return err
}

func (c *CircuitBreakerTransport) Session(ctx context.Context) error {
	_, err := c.execute(func() (any, error) { return nil, c.transport.Session(ctx) })
	return err
}

var _ DaemonTransport = (*CircuitBreakerTransport)(nil)
