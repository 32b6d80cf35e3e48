package shardfunk

// Driver is a connection to a single backend instance. Do issues the command
// asynchronously and calls done with the reply. done may be called from any
// goroutine, and it might be called long after the router has given up
// waiting for it.
type Driver interface {
	Do(command string, args []interface{}, done func(reply interface{}, err error))

	// Address is the host:port address of the backend
	Address() string

	// Close releases the connection
	Close() error
}

// Transactor is implemented by drivers that can run a list of commands as a
// single transaction.
type Transactor interface {
	Multi(commands [][]interface{}, done func(replies []interface{}, err error))
}

// Connection lifecycle event kinds
const (
	ConnError = "error"
	ConnEnd   = "end"
)

// ConnEvent is a lifecycle event from a driver.
type ConnEvent struct {
	Kind string
	Err  error
}

// Notifier is implemented by drivers that report lifecycle events. The
// events are logged and passed on to observers. They never influence routing.
type Notifier interface {
	Notify(fn func(ConnEvent))
}

// DriverFactory creates a driver for a backend. Driver options are captured
// by the factory.
type DriverFactory func(host string, port int) (Driver, error)
