package ctrl

import (
	"context"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/lab5e/shardfunk/pkg/redisdriver"
	"github.com/lab5e/shardfunk/pkg/shardfunk"
	"github.com/lab5e/shardfunk/pkg/topology"
)

// RunContext is the context passed on to the subcommands.
type RunContext struct {
	params  Parameters
	factory shardfunk.DriverFactory
	out     io.Writer
	errOut  io.Writer
}

// NewRunContext creates a new RunContext from the parameters. The commands
// connect to redis servers.
func NewRunContext(params Parameters) *RunContext {
	return &RunContext{
		params: params,
		factory: redisdriver.NewFactory(&redis.Options{
			Password:    params.Backend.Password,
			DB:          params.Backend.DB,
			DialTimeout: params.Backend.DialTimeout,
			MaxRetries:  params.Backend.MaxRetries,
		}),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// Parameters returns the command line parameters
func (r *RunContext) Parameters() Parameters {
	return r.params
}

// Topology reads the topology file
func (r *RunContext) Topology() ([]topology.HostRange, error) {
	return topology.Load(r.params.Topology)
}

// Router creates a router for the topology. The caller must close it.
func (r *RunContext) Router() (*shardfunk.Router, error) {
	ranges, err := r.Topology()
	if err != nil {
		return nil, err
	}
	router, err := shardfunk.New(ranges, shardfunk.Config{
		Parameters: r.params.Router,
		Factory:    r.factory,
	})
	if err != nil {
		return nil, err
	}
	if r.params.PreferReplica {
		return router.PreferReplica(), nil
	}
	return router, nil
}

// callContext returns the context for a single call
func (r *RunContext) callContext() (context.Context, context.CancelFunc) {
	if r.params.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.params.Timeout)
}
