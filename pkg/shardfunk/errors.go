package shardfunk

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lab5e/shardfunk/pkg/topology"
)

var (
	// ErrTimeout is returned when a call doesn't complete before the deadline
	ErrTimeout = errors.New("call timed out")

	// ErrBreakerOpen is returned when the breaker for the connection is open
	// and the call is never sent to the backend.
	ErrBreakerOpen = errors.New("breaker open")

	// ErrBackend marks errors reported by the backend driver. The driver's
	// own error is kept in the chain.
	ErrBackend = errors.New("backend error")

	// ErrConfiguration is returned when the topology is invalid
	ErrConfiguration = topology.ErrInvalidTopology

	// ErrNotSupported is returned when the driver lacks a feature, f.e.
	// transactions.
	ErrNotSupported = errors.New("not supported by driver")
)

func backendError(conn *Connection, command string, err error) error {
	return errors.Mark(errors.Wrapf(err, "%s [%s]", command, conn.address), ErrBackend)
}

func timeoutError(conn *Connection, command string, d time.Duration) error {
	return errors.Wrapf(ErrTimeout, "%s [%s] after %s", command, conn.address, d)
}

func breakerOpenError(conn *Connection, command string) error {
	return errors.Wrapf(ErrBreakerOpen, "%s [%s]", command, conn.address)
}

// ErrNoKeys is returned by multi-key commands called without keys
var ErrNoKeys = errors.New("no keys")
