// Package redisdriver implements the router's backend driver on top of the
// go-redis client. Each driver owns a single client (with its own connection
// pool) for one backend address.
package redisdriver

//
//Copyright 2019 Telenor Digital AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/lab5e/shardfunk/pkg/shardfunk"
)

// Driver is a shardfunk.Driver for a single redis server. It also
// implements shardfunk.Transactor and shardfunk.Notifier.
type Driver struct {
	address   string
	client    *redis.Client
	ctx       context.Context
	cancel    context.CancelFunc
	mutex     *sync.Mutex
	listeners []func(shardfunk.ConnEvent)
	closeOnce *sync.Once
}

// NewFactory returns a driver factory. The options are copied for every
// driver and the address is set from the topology. A nil options value gives
// the go-redis defaults.
func NewFactory(opts *redis.Options) shardfunk.DriverFactory {
	return func(host string, port int) (shardfunk.Driver, error) {
		return New(host, port, opts)
	}
}

// New creates a driver for host:port. No connection is made until the first
// command is sent.
func New(host string, port int, opts *redis.Options) (*Driver, error) {
	if host == "" || port <= 0 {
		return nil, errors.Wrapf(shardfunk.ErrConfiguration, "invalid address %q:%d", host, port)
	}
	var o redis.Options
	if opts != nil {
		o = *opts
	}
	o.Addr = net.JoinHostPort(host, strconv.Itoa(port))

	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver{
		address:   o.Addr,
		client:    redis.NewClient(&o),
		ctx:       ctx,
		cancel:    cancel,
		mutex:     &sync.Mutex{},
		closeOnce: &sync.Once{},
	}
	d.client.AddHook(&eventHook{driver: d})
	return d, nil
}

// Address returns the host:port of the server
func (d *Driver) Address() string {
	return d.address
}

// Do sends the command on a separate goroutine. A missing key gives a nil
// reply rather than an error.
func (d *Driver) Do(command string, args []interface{}, done func(reply interface{}, err error)) {
	cmdArgs := make([]interface{}, 0, len(args)+1)
	cmdArgs = append(cmdArgs, command)
	cmdArgs = append(cmdArgs, args...)
	go func() {
		reply, err := d.client.Do(d.ctx, cmdArgs...).Result()
		if errors.Is(err, redis.Nil) {
			reply, err = nil, nil
		}
		done(reply, err)
	}()
}

// Multi runs the commands in a MULTI/EXEC block. The replies are returned
// in command order.
func (d *Driver) Multi(commands [][]interface{}, done func(replies []interface{}, err error)) {
	go func() {
		var pending []*redis.Cmd
		_, err := d.client.TxPipelined(d.ctx, func(pipe redis.Pipeliner) error {
			for _, c := range commands {
				pending = append(pending, pipe.Do(d.ctx, c...))
			}
			return nil
		})
		if err != nil && !errors.Is(err, redis.Nil) && !isReplyError(err) {
			done(nil, err)
			return
		}
		replies := make([]interface{}, len(pending))
		for i, cmd := range pending {
			v, cerr := cmd.Result()
			if cerr != nil && !errors.Is(cerr, redis.Nil) {
				replies[i] = cerr
				continue
			}
			replies[i] = v
		}
		done(replies, nil)
	}()
}

// isReplyError returns true for errors sent by the server as a reply. The
// connection is fine when these are returned.
func isReplyError(err error) bool {
	var rerr redis.Error
	return errors.As(err, &rerr)
}

// Ping checks the server synchronously
func (d *Driver) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Notify registers a listener for connection events
func (d *Driver) Notify(fn func(shardfunk.ConnEvent)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Close closes the client. Calls in progress fail and the listeners get an
// end event.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.cancel()
		err = d.client.Close()
		d.emit(shardfunk.ConnEvent{Kind: shardfunk.ConnEnd})
	})
	return err
}

func (d *Driver) emit(ev shardfunk.ConnEvent) {
	d.mutex.Lock()
	listeners := make([]func(shardfunk.ConnEvent), len(d.listeners))
	copy(listeners, d.listeners)
	d.mutex.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
