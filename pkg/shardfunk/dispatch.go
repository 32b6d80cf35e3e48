package shardfunk

import (
	"context"
	"sync/atomic"
	"time"
)

// Callback receives the result of a call. It is invoked exactly once per
// call, possibly from another goroutine.
type Callback func(reply interface{}, err error)

func noop(interface{}, error) {}

// CallOptions modifies a single call
type CallOptions struct {
	// ShardKey routes the call by this key rather than the storage key. Use
	// this to keep related keys on the same shard.
	ShardKey string
}

// invokeFunc sends the call to a driver
type invokeFunc func(d Driver, done func(reply interface{}, err error))

// call is the state for a single external call. It lives until the callback
// has been invoked.
type call struct {
	table     *shardTable
	command   string
	set       *ReplicaSet
	start     int
	timeout   time.Duration
	cascade   bool
	invoke    invokeFunc
	cb        Callback
	completed *int32
}

// attempt is a single dispatch to a connection. The first of the reply and
// the timer wins; the other is ignored.
type attempt struct {
	call  *call
	conn  *Connection
	timer *time.Timer
	done  *int32
}

// Execute sends a command for a key. The key is the first argument to the
// backend command, followed by args. Commands that aren't read-only go to the
// primary.
func (r *Router) Execute(command, key string, args []interface{}, cb Callback) {
	r.ExecuteWithOptions(CallOptions{}, command, key, args, cb)
}

// ExecuteWithOptions is Execute with per-call options.
func (r *Router) ExecuteWithOptions(opts CallOptions, command, key string, args []interface{}, cb Callback) {
	driverArgs := make([]interface{}, 0, len(args)+1)
	driverArgs = append(driverArgs, key)
	driverArgs = append(driverArgs, args...)

	shardKey := key
	if opts.ShardKey != "" {
		shardKey = opts.ShardKey
	}
	set, conn := r.route(shardKey, command)
	r.dispatch(set, conn, command, r.timeoutFor(command), true, func(d Driver, done func(interface{}, error)) {
		d.Do(command, driverArgs, done)
	}, cb)
}

// Do is a blocking version of Execute. The context only limits the wait; a
// call that has been sent can't be cancelled and its result is discarded if
// the context is done first.
func (r *Router) Do(ctx context.Context, command, key string, args ...interface{}) (interface{}, error) {
	return r.DoWithOptions(ctx, CallOptions{}, command, key, args...)
}

// DoWithOptions is Do with per-call options
func (r *Router) DoWithOptions(ctx context.Context, opts CallOptions, command, key string, args ...interface{}) (interface{}, error) {
	type result struct {
		reply interface{}
		err   error
	}
	ch := make(chan result, 1)
	r.ExecuteWithOptions(opts, command, key, args, func(reply interface{}, err error) {
		ch <- result{reply: reply, err: err}
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.reply, res.err
	}
}

// dispatch starts a call on conn. If cascade is set a failed replica hands
// the call over to the next replica, and to the primary when all replicas
// have been tried.
func (r *Router) dispatch(set *ReplicaSet, conn *Connection, command string, timeout time.Duration, cascade bool, invoke invokeFunc, cb Callback) {
	if cb == nil {
		cb = noop
	}
	c := &call{
		table:     r.table,
		command:   command,
		set:       set,
		start:     conn.position,
		timeout:   timeout,
		cascade:   cascade,
		invoke:    invoke,
		cb:        cb,
		completed: new(int32),
	}
	c.attempt(conn)
}

func (c *call) attempt(conn *Connection) {
	if conn.breaker != nil && !conn.breaker.Closed() {
		c.failed(conn, breakerOpenError(conn, c.command), false)
		return
	}
	a := &attempt{
		call: c,
		conn: conn,
		done: new(int32),
	}
	// A zero timeout means no deadline at all
	if c.timeout > 0 {
		a.timer = time.AfterFunc(c.timeout, a.expire)
	}
	c.table.metrics.LogRequest(conn.address, c.command)
	c.invoke(conn.driver, a.complete)
}

func (a *attempt) claim() bool {
	return atomic.CompareAndSwapInt32(a.done, 0, 1)
}

func (a *attempt) complete(reply interface{}, err error) {
	if !a.claim() {
		// Timed out already
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	if err != nil {
		a.call.failed(a.conn, backendError(a.conn, a.call.command, err), true)
		return
	}
	if a.conn.breaker != nil {
		a.conn.breaker.Pass()
	}
	a.call.finish(reply, nil)
}

func (a *attempt) expire() {
	if !a.claim() {
		return
	}
	a.call.failed(a.conn, timeoutError(a.conn, a.call.command, a.call.timeout), true)
}

// failed handles a failed attempt. The breaker isn't told about failures
// caused by the breaker itself.
func (c *call) failed(conn *Connection, err error, reportBreaker bool) {
	if reportBreaker && conn.breaker != nil {
		conn.breaker.Fail()
	}
	c.table.reportFailure(c.set, conn, c.command, err)

	if conn.primary || !c.cascade {
		c.finish(nil, err)
		return
	}

	next := c.set.replicas.SuccessorOf(conn)
	if next.position == c.start || c.set.replicas.Len() == 1 {
		next = c.set.primary
	}
	c.table.metrics.LogFailover(conn.address)
	c.attempt(next)
}

func (c *call) finish(reply interface{}, err error) {
	if !atomic.CompareAndSwapInt32(c.completed, 0, 1) {
		return
	}
	c.cb(reply, err)
}
