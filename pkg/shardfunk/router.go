package shardfunk

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/lab5e/shardfunk/pkg/shardfunk/breaker"
	"github.com/lab5e/shardfunk/pkg/shardfunk/metrics"
	"github.com/lab5e/shardfunk/pkg/shardfunk/sharding"
	"github.com/lab5e/shardfunk/pkg/topology"
)

// Config holds the router parameters and its collaborators.
type Config struct {
	Parameters

	// Factory creates the backend drivers. Required.
	Factory DriverFactory

	// Breakers creates breakers for the connections. If it is nil the
	// breaker parameters are used.
	Breakers breaker.Factory

	// Sink is the metrics sink. If it is nil the sink named in the
	// parameters is used.
	Sink metrics.Sink

	// Logger is the log entry for the router. Defaults to the standard
	// logrus logger.
	Logger *logrus.Entry
}

// shardTable is shared by all of the policy variants of a router.
type shardTable struct {
	sets      []*ReplicaSet
	observer  *errorObserver
	metrics   metrics.Sink
	logger    *logrus.Entry
	stop      chan struct{}
	wg        *sync.WaitGroup
	closeOnce *sync.Once
}

// policy is the per-variant part of a router
type policy struct {
	preferReplica bool
	readTimeout   time.Duration
	writeTimeout  time.Duration
}

// Router routes commands to shards. Copies made with PreferReplica,
// WithReadTimeout and WithWriteTimeout share the shard table.
type Router struct {
	table  *shardTable
	policy policy
}

// New creates a new router. One driver is created for every primary and
// replica in the topology.
func New(ranges []topology.HostRange, config Config) (*Router, error) {
	if config.Factory == nil {
		return nil, errors.Wrap(ErrConfiguration, "missing driver factory")
	}
	shards, err := topology.Resolve(ranges)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.WithField("component", "shardfunk")
	}
	name := config.Name
	if name == "" {
		name = "shardfunk"
	}
	sink := config.Sink
	if sink == nil {
		sink = metrics.NewSinkFromString(config.Metrics, name)
	}
	breakers := config.Breakers
	if breakers == nil {
		breakers = breaker.NewFactory(config.Breaker)
	}

	table := &shardTable{
		observer:  newErrorObserver(),
		metrics:   sink,
		logger:    logger.WithField("router", name),
		stop:      make(chan struct{}),
		wg:        &sync.WaitGroup{},
		closeOnce: &sync.Once{},
	}

	var created []Driver
	newConnection := func(host string, port int) (*Connection, error) {
		d, err := config.Factory(host, port)
		if err != nil {
			return nil, errors.Wrapf(err, "creating driver for %s:%d", host, port)
		}
		created = append(created, d)
		c := &Connection{
			driver:  d,
			address: d.Address(),
		}
		if breakers != nil {
			c.breaker = breakers(c.address)
		}
		return c, nil
	}

	for i, desc := range shards {
		set, err := buildReplicaSet(i, desc, newConnection)
		if err != nil {
			for _, d := range created {
				d.Close()
			}
			return nil, err
		}
		table.sets = append(table.sets, set)
	}

	sink.SetShardCount(len(table.sets))
	for _, set := range table.sets {
		for _, c := range set.connections() {
			table.watchConnection(set, c)
			if config.UsePing {
				table.startPing(set, c)
			}
		}
	}
	table.logger.WithFields(logrus.Fields{
		"shards":  len(table.sets),
		"usePing": config.UsePing,
	}).Debug("Router created")

	return &Router{
		table: table,
		policy: policy{
			readTimeout:  config.ReadTimeout,
			writeTimeout: config.WriteTimeout,
		},
	}, nil
}

func buildReplicaSet(index int, desc topology.ShardDescriptor, connect func(string, int) (*Connection, error)) (*ReplicaSet, error) {
	primary, err := connect(desc.Host, desc.Port)
	if err != nil {
		return nil, err
	}
	var replicas []*Connection
	for _, host := range desc.SlaveHosts {
		replica, err := connect(host, desc.Port)
		if err != nil {
			return nil, err
		}
		replicas = append(replicas, replica)
	}
	return newReplicaSet(index, desc, primary, replicas), nil
}

// PreferReplica returns a router that sends read-only commands to the
// replicas for all shards.
func (r *Router) PreferReplica() *Router {
	p := r.policy
	p.preferReplica = true
	return &Router{table: r.table, policy: p}
}

// WithReadTimeout returns a router with another deadline for read-only
// commands. A zero duration disables the deadline.
func (r *Router) WithReadTimeout(d time.Duration) *Router {
	p := r.policy
	p.readTimeout = d
	return &Router{table: r.table, policy: p}
}

// WithWriteTimeout returns a router with another deadline for mutating
// commands. A zero duration disables the deadline.
func (r *Router) WithWriteTimeout(d time.Duration) *Router {
	p := r.policy
	p.writeTimeout = d
	return &Router{table: r.table, policy: p}
}

// PrefersReplica returns true if the router sends reads to replicas
// regardless of the shard's read preference.
func (r *Router) PrefersReplica() bool {
	return r.policy.preferReplica
}

// ReadTimeout returns the deadline for read-only commands
func (r *Router) ReadTimeout() time.Duration {
	return r.policy.readTimeout
}

// WriteTimeout returns the deadline for mutating commands
func (r *Router) WriteTimeout() time.Duration {
	return r.policy.writeTimeout
}

// ShardCount returns the number of shards
func (r *Router) ShardCount() int {
	return len(r.table.sets)
}

// ShardIndex returns the shard index for a key
func (r *Router) ShardIndex(key string) int {
	return sharding.Index(key, len(r.table.sets))
}

// ShardFor returns the replica set for a key
func (r *Router) ShardFor(key string) *ReplicaSet {
	return r.table.sets[r.ShardIndex(key)]
}

// Shards returns the replica sets in shard order
func (r *Router) Shards() []*ReplicaSet {
	ret := make([]*ReplicaSet, len(r.table.sets))
	copy(ret, r.table.sets)
	return ret
}

// SelectConnection returns the connection a command for the key starts on.
// Mutating commands always go to the primary. Read-only commands go to the
// next replica if the router or the shard prefers replicas.
func (r *Router) SelectConnection(key, command string) *Connection {
	_, conn := r.route(key, command)
	return conn
}

func (r *Router) route(key, command string) (*ReplicaSet, *Connection) {
	set := r.ShardFor(key)
	if IsReadOnly(command) {
		return set, set.readConnection(r.policy.preferReplica)
	}
	return set, set.primary
}

func (r *Router) timeoutFor(command string) time.Duration {
	if IsReadOnly(command) {
		return r.policy.readTimeout
	}
	return r.policy.writeTimeout
}

// Observe returns a channel with failure events. Events are dropped if the
// channel is full. The channel is closed when the router is closed or
// Unobserve is called.
func (r *Router) Observe() <-chan ErrorEvent {
	return r.table.observer.Observe()
}

// Unobserve stops events on the channel and closes it
func (r *Router) Unobserve(ch <-chan ErrorEvent) {
	r.table.observer.Unobserve(ch)
}

// Close stops the keep-alive pings and closes all of the connections. All
// variants of the router are closed.
func (r *Router) Close() error {
	var err error
	r.table.closeOnce.Do(func() {
		close(r.table.stop)
		r.table.wg.Wait()
		r.table.observer.Shutdown()
		for _, set := range r.table.sets {
			for _, c := range set.connections() {
				if cerr := c.driver.Close(); cerr != nil {
					err = errors.CombineErrors(err, errors.Wrapf(cerr, "closing %s", c.address))
				}
			}
		}
	})
	return err
}

// reportFailure logs the failure and passes it on to metrics and observers
func (t *shardTable) reportFailure(set *ReplicaSet, conn *Connection, command string, err error) {
	reason := metrics.ReasonBackend
	switch {
	case errors.Is(err, ErrTimeout):
		reason = metrics.ReasonTimeout
	case errors.Is(err, ErrBreakerOpen):
		reason = metrics.ReasonBreakerOpen
	}
	t.metrics.LogFailure(conn.address, command, reason)
	t.logger.WithError(err).WithFields(logrus.Fields{
		"address": conn.address,
		"command": command,
		"shard":   set.index,
		"primary": conn.primary,
	}).Debug("Call failed")
	t.observer.emit(ErrorEvent{
		Address: conn.address,
		Command: command,
		Shard:   set.index,
		Primary: conn.primary,
		Err:     err,
		Time:    time.Now(),
	})
}
