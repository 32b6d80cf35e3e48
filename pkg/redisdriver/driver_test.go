package redisdriver

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lab5e/gotoolbox/netutils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lab5e/shardfunk/pkg/shardfunk"
	"github.com/lab5e/shardfunk/pkg/topology"
)

func testOptions() *redis.Options {
	return &redis.Options{
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}
}

func TestNewDriver(t *testing.T) {
	assert := require.New(t)

	_, err := New("", 6379, nil)
	assert.True(errors.Is(err, shardfunk.ErrConfiguration))
	_, err = New("localhost", 0, nil)
	assert.True(errors.Is(err, shardfunk.ErrConfiguration))

	d, err := New("localhost", 6379, nil)
	assert.NoError(err)
	assert.Equal("localhost:6379", d.Address())

	ended := make(chan shardfunk.ConnEvent, 1)
	d.Notify(func(ev shardfunk.ConnEvent) { ended <- ev })
	assert.NoError(d.Close())
	assert.Equal(shardfunk.ConnEnd, (<-ended).Kind)

	// A second close doesn't emit anything
	d.Close()
	assert.Len(ended, 0)
}

func TestDriverUnreachable(t *testing.T) {
	assert := require.New(t)

	port, err := netutils.FreeTCPPort()
	assert.NoError(err)

	d, err := NewFactory(testOptions())("127.0.0.1", port)
	assert.NoError(err)
	defer d.Close()

	events := make(chan shardfunk.ConnEvent, 10)
	d.(shardfunk.Notifier).Notify(func(ev shardfunk.ConnEvent) {
		select {
		case events <- ev:
		default:
		}
	})

	done := make(chan error, 1)
	d.Do("get", []interface{}{"key"}, func(reply interface{}, err error) {
		done <- err
	})
	select {
	case err := <-done:
		assert.Error(err)
	case <-time.After(5 * time.Second):
		t.Fatal("No reply from driver")
	}

	select {
	case ev := <-events:
		assert.Equal(shardfunk.ConnError, ev.Kind)
		assert.Error(ev.Err)
	case <-time.After(time.Second):
		t.Fatal("No connection event")
	}

	assert.Error(d.(*Driver).Ping(context.Background()))
}

func TestDriverMultiUnreachable(t *testing.T) {
	assert := require.New(t)

	port, err := netutils.FreeTCPPort()
	assert.NoError(err)
	d, err := New("127.0.0.1", port, testOptions())
	assert.NoError(err)
	defer d.Close()

	done := make(chan error, 1)
	d.Multi([][]interface{}{{"incr", "key"}}, func(replies []interface{}, err error) {
		done <- err
	})
	select {
	case err := <-done:
		assert.Error(err)
	case <-time.After(5 * time.Second):
		t.Fatal("No reply from driver")
	}
}

func TestRouterWithRedisDriver(t *testing.T) {
	assert := require.New(t)

	port, err := netutils.FreeTCPPort()
	assert.NoError(err)

	params := shardfunk.DefaultParameters()
	params.UsePing = false
	params.ReadTimeout = 2 * time.Second
	r, err := shardfunk.New(
		[]topology.HostRange{topology.NewHostRange("127.0.0.1", port, 0, nil, topology.ReadPrimary)},
		shardfunk.Config{Parameters: params, Factory: NewFactory(testOptions())})
	assert.NoError(err)
	defer r.Close()

	_, err = r.Do(context.Background(), "get", "key")
	assert.True(errors.Is(err, shardfunk.ErrBackend))
}

func TestIsConnectionError(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()
	assert.False(isConnectionError(ctx, nil))
	assert.False(isConnectionError(ctx, redis.Nil))
	assert.True(isConnectionError(ctx, redis.ErrClosed))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(isConnectionError(cancelled, redis.ErrClosed))
}
