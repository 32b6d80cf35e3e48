// Package breaker contains the circuit breaker contract used by the router
// plus a failure rate based breaker. A breaker is attached to a single backend
// connection. The router checks Closed before each call and reports the
// outcome with Pass or Fail.
package breaker

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Breaker is the circuit breaker interface the router uses. Implementations
// must be safe for concurrent use.
type Breaker interface {
	// Pass records a successful call
	Pass()

	// Fail records a failed call
	Fail()

	// Closed returns true if calls are allowed through. An open breaker that
	// has waited long enough may return true for a single trial call.
	Closed() bool
}

// Factory creates a breaker for the connection with the given name (usually
// the host:port address).
type Factory func(name string) Breaker

// Parameters configures the failure rate breaker. The struct uses kong
// annotations so it can be embedded in command line parameters.
type Parameters struct {
	Enabled      bool          `kong:"help='Enable circuit breakers for backend connections',default='false'"`
	FailureRate  float64       `kong:"help='Failure rate (0-1) that opens the breaker',default='0.5'"`
	FailureCount int           `kong:"help='Number of samples required before the breaker can open',default='10'"`
	ResetTimeout time.Duration `kong:"help='Time an open breaker waits before allowing a trial call',default='30s'"`
}

// DefaultParameters returns the same defaults as the command line parameters.
func DefaultParameters() Parameters {
	return Parameters{
		Enabled:      true,
		FailureRate:  0.5,
		FailureCount: 10,
		ResetTimeout: 30 * time.Second,
	}
}

// NewFactory returns a factory for failure rate breakers. If the breakers are
// disabled the returned factory is nil.
func NewFactory(params Parameters) Factory {
	if !params.Enabled {
		return nil
	}
	return func(name string) Breaker {
		return New(name, params)
	}
}

// State is the breaker state
type State int

// Breaker states
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// RateBreaker opens when the moving failure rate reaches the configured
// rate after at least FailureCount samples. After ResetTimeout a single
// trial call is let through; the breaker closes if it passes and opens
// again if it fails.
type RateBreaker struct {
	mutex    *sync.Mutex
	name     string
	params   Parameters
	state    State
	openedAt time.Time
	trial    bool
	failures *emaCalculator
	now      func() time.Time
}

// New creates a new failure rate breaker
func New(name string, params Parameters) *RateBreaker {
	return &RateBreaker{
		mutex:    &sync.Mutex{},
		name:     name,
		params:   params,
		state:    StateClosed,
		failures: newEMACalculator(params.FailureCount),
		now:      time.Now,
	}
}

// Pass records a successful call
func (b *RateBreaker) Pass() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	switch b.state {
	case StateClosed:
		b.failures.Add(0)
	case StateHalfOpen:
		b.close()
	}
}

// Fail records a failed call
func (b *RateBreaker) Fail() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	switch b.state {
	case StateClosed:
		rate := b.failures.Add(1)
		minCount := b.params.FailureCount
		if minCount < 1 {
			minCount = 1
		}
		if b.failures.Count() >= minCount && rate >= b.params.FailureRate {
			b.open()
		}
	case StateHalfOpen:
		b.open()
	}
}

// Closed returns true if a call may go through
func (b *RateBreaker) Closed() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.params.ResetTimeout {
			return false
		}
		b.state = StateHalfOpen
		b.trial = true
		return true
	default:
		// Half open, only one trial at a time
		if b.trial {
			return false
		}
		b.trial = true
		return true
	}
}

// Trip forces the breaker open
func (b *RateBreaker) Trip() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.open()
}

// Reset forces the breaker closed
func (b *RateBreaker) Reset() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.close()
}

// State returns the current state. An open breaker past its reset timeout is
// reported as open until the next call to Closed.
func (b *RateBreaker) State() State {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.state
}

// FailureRate returns the current moving failure rate.
func (b *RateBreaker) FailureRate() float64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.failures.Average()
}

func (b *RateBreaker) open() {
	wasOpen := b.state == StateOpen
	b.state = StateOpen
	b.openedAt = b.now()
	b.trial = false
	if !wasOpen {
		logrus.WithFields(logrus.Fields{
			"breaker":     b.name,
			"failureRate": b.failures.Average(),
		}).Warning("Circuit opened")
	}
}

func (b *RateBreaker) close() {
	wasClosed := b.state == StateClosed
	b.state = StateClosed
	b.trial = false
	b.failures.Reset()
	if !wasClosed {
		logrus.WithField("breaker", b.name).Info("Circuit closed")
	}
}
