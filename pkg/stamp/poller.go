// Package stamp bridges "payment accepted" to "payment usable". A freshly
// purchased postage batch is not immediately valid network-wide; the node
// needs time to index and propagate it. The Poller repeatedly queries the
// batch status at a fixed interval until the batch is usable, the retry
// budget runs out, or the caller's context ends.
//
// A fixed interval (not exponential backoff) is deliberate: stamp propagation
// time is roughly bounded and operator-tunable, and bounded retries keep the
// tool from hanging forever against a node that never propagates.
package stamp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/swarmprov/swarmprov-go/pkg/gateway"
	"go.uber.org/zap"
)

// Defaults for the polling loop, matching config.DefaultPollRetries and
// config.DefaultPollInterval.
const (
	DefaultMaxAttempts = 12
	DefaultInterval    = 20 * time.Second
)

// ErrExhausted is returned when the batch never became usable within the
// attempt budget. It is fatal for the surrounding upload.
var ErrExhausted = errors.New("postage stamp never became usable")

// Outcome classifies a single status-check attempt.
type Outcome int

const (
	// OutcomeUsable: the batch exists and is usable; polling stops.
	OutcomeUsable Outcome = iota
	// OutcomeNotYet: the batch was found but is not yet usable.
	OutcomeNotYet
	// OutcomeAbsent: the gateway does not know the batch yet (404).
	OutcomeAbsent
	// OutcomeTransientFailure: the status query itself failed; tolerated
	// and retried rather than escalated.
	OutcomeTransientFailure
)

// String returns a short label for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeUsable:
		return "usable"
	case OutcomeNotYet:
		return "not-yet"
	case OutcomeAbsent:
		return "absent"
	case OutcomeTransientFailure:
		return "transient-failure"
	default:
		return "unknown"
	}
}

// Attempt describes one status-check attempt, delivered to the optional
// observer after the check completes.
type Attempt struct {
	// Number is the 1-based attempt index; Max is the attempt budget.
	Number int
	Max    int
	// Outcome classifies the attempt.
	Outcome Outcome
	// Status is the fetched batch status when Outcome is OutcomeUsable or
	// OutcomeNotYet; zero otherwise.
	Status gateway.StampStatus
	// Err is the fetch error when Outcome is OutcomeTransientFailure.
	Err error
}

// StatusFetcher is the slice of the gateway client the poller depends on.
// *gateway.Client satisfies it.
type StatusFetcher interface {
	GetStampStatus(ctx context.Context, stampID string) (gateway.StampStatus, bool, error)
}

// Poller drives the readiness loop for one or more batches.
type Poller struct {
	fetcher     StatusFetcher
	maxAttempts int
	interval    time.Duration

	// OnAttempt, when set, is invoked after every attempt with its
	// classification. Progress is also logged regardless.
	OnAttempt func(Attempt)

	// sleep is replaced in tests to avoid real waits.
	sleep func(time.Duration)
}

// NewPoller constructs a poller over fetcher. Non-positive maxAttempts or
// interval fall back to the package defaults.
func NewPoller(fetcher StatusFetcher, maxAttempts int, interval time.Duration) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:     fetcher,
		maxAttempts: maxAttempts,
		interval:    interval,
		sleep:       time.Sleep,
	}
}

// WaitUsable polls the batch status until it reports exists && usable.
//
// Per attempt: a fetch failure is tolerated as transient and retried; a 404
// means the batch has not been indexed yet and is likewise retried; a found
// batch that is not yet usable is retried. The fixed interval wait happens
// only between attempts — the poller returns immediately after the final
// check, successful or not. When the budget is exhausted, the returned error
// wraps ErrExhausted and names the batch and attempt count.
func (p *Poller) WaitUsable(ctx context.Context, stampID string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		a := Attempt{Number: attempt, Max: p.maxAttempts}

		status, found, err := p.fetcher.GetStampStatus(ctx, stampID)
		switch {
		case err != nil:
			a.Outcome = OutcomeTransientFailure
			a.Err = err
			zap.L().Warn("stamp status check failed, will retry",
				zap.String("stampID", stampID),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", p.maxAttempts),
				zap.Error(err))
		case !found:
			a.Outcome = OutcomeAbsent
			zap.L().Debug("stamp not yet indexed by gateway",
				zap.String("stampID", stampID),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", p.maxAttempts))
		case status.Exists && status.Usable:
			a.Outcome = OutcomeUsable
			a.Status = status
			p.notify(a)
			zap.L().Info("stamp is usable",
				zap.String("stampID", stampID),
				zap.Int("attempt", attempt))
			return nil
		default:
			a.Outcome = OutcomeNotYet
			a.Status = status
			zap.L().Debug("stamp found but not usable yet",
				zap.String("stampID", stampID),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", p.maxAttempts),
				zap.Bool("exists", status.Exists),
				zap.Bool("usable", status.Usable))
		}
		p.notify(a)

		if attempt < p.maxAttempts {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("stamp polling interrupted: %w", err)
			}
			p.sleep(p.interval)
		}
	}

	return fmt.Errorf("%w: batch %s after %d attempts", ErrExhausted, stampID, p.maxAttempts)
}

func (p *Poller) notify(a Attempt) {
	if p.OnAttempt != nil {
		p.OnAttempt(a)
	}
}
