package shardfunk

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/lab5e/shardfunk/pkg/topology"
)

type multiResult struct {
	replies []interface{}
	err     error
	done    chan struct{}
	once    sync.Once
}

func (m *multiResult) callback(replies []interface{}, err error) {
	m.once.Do(func() {
		m.replies = replies
		m.err = err
		close(m.done)
	})
}

func (m *multiResult) wait(t *testing.T) {
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Multi callback wasn't invoked")
	}
}

func TestMulti(t *testing.T) {
	assert := require.New(t)

	r, factory := newTestRouter(t, generateHostRanges(2, 2, 1, topology.ReadReplica), testParameters())
	set := r.ShardFor("key")

	res := &multiResult{done: make(chan struct{})}
	r.PreferReplica().Multi("key", [][]interface{}{{"incr", "key"}, {"expire", "key", 10}}, res.callback)
	res.wait(t)
	assert.NoError(res.err)
	addr := set.Primary().Address()
	assert.Equal([]interface{}{"incr@" + addr, "expire@" + addr}, res.replies)
	assert.True(factory.driver(addr).sawCommand("multi"))
}

func TestMultiWithoutTransactions(t *testing.T) {
	assert := require.New(t)

	factory := newMockFactory()
	factory.doOnly = true
	r, err := New(generateHostRanges(1, 1, 0, topology.ReadPrimary), Config{Parameters: testParameters(), Factory: factory.create})
	assert.NoError(err)
	defer r.Close()

	res := &multiResult{done: make(chan struct{})}
	r.Multi("key", [][]interface{}{{"incr", "key"}}, res.callback)
	res.wait(t)
	assert.True(errors.Is(res.err, ErrNotSupported))
	assert.Nil(res.replies)
}

func TestMultiTimeout(t *testing.T) {
	assert := require.New(t)

	params := testParameters()
	params.WriteTimeout = 10 * time.Millisecond
	factory := newMockFactory()
	factory.doOnly = true
	r, err := New(generateHostRanges(1, 1, 0, topology.ReadPrimary), Config{Parameters: params, Factory: factory.create})
	assert.NoError(err)
	defer r.Close()

	// A driver that doesn't complete the transaction
	hung := &hungTransactor{Driver: r.Shards()[0].Primary().driver}
	r.Shards()[0].Primary().driver = hung

	res := &multiResult{done: make(chan struct{})}
	r.Multi("key", [][]interface{}{{"incr", "key"}}, res.callback)
	res.wait(t)
	assert.True(errors.Is(res.err, ErrTimeout))
}

type hungTransactor struct {
	Driver
}

func (h *hungTransactor) Multi([][]interface{}, func([]interface{}, error)) {}

func TestZaddZremMulti(t *testing.T) {
	assert := require.New(t)

	r, factory := newTestRouter(t, generateHostRanges(1, 2, 2, topology.ReadReplica), testParameters())
	set := r.ShardFor("zset")
	primary := factory.driver(set.Primary().Address())

	res := newResult()
	r.PreferReplica().ZaddMulti("zset", []interface{}{1, "a", 2, "b"}, res.callback)
	waitFor(t, res)
	assert.NoError(res.err)

	res = newResult()
	r.ZremMulti("zset", []interface{}{"a", "b"}, res.callback)
	waitFor(t, res)
	assert.NoError(res.err)

	calls := primary.commands()
	assert.Len(calls, 2)
	assert.Equal("zadd", calls[0].command)
	assert.Equal([]interface{}{"zset", 1, "a", 2, "b"}, calls[0].args)
	assert.Equal("zrem", calls[1].command)
	assert.Equal([]interface{}{"zset", "a", "b"}, calls[1].args)
	assert.Equal(2, factory.totalCalls())
}

func TestZaddMultiNeverCascades(t *testing.T) {
	assert := require.New(t)

	r, factory := newTestRouter(t, generateHostRanges(1, 1, 2, topology.ReadReplica), testParameters())
	factory.driver(r.Shards()[0].Primary().Address()).setResponder(respondError)

	res := newResult()
	r.ZaddMulti("zset", []interface{}{1, "a"}, res.callback)
	waitFor(t, res)
	assert.True(errors.Is(res.err, ErrBackend))
	assert.Equal(1, factory.totalCalls())
}

type keysResult struct {
	keys  []string
	err   error
	count int
	mutex sync.Mutex
	done  chan struct{}
}

func (k *keysResult) callback(keys []string, err error) {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	k.count++
	if k.count == 1 {
		k.keys = keys
		k.err = err
		close(k.done)
	}
}

func TestKeys(t *testing.T) {
	assert := require.New(t)

	r, factory := newTestRouter(t, generateHostRanges(1, 3, 0, topology.ReadPrimary), testParameters())
	for _, d := range factory.all() {
		d.setResponder(func(address, command string, args []interface{}, done func(interface{}, error)) {
			go done([]interface{}{"shared", "key-" + address, []byte("bytes")}, nil)
		})
	}

	res := &keysResult{done: make(chan struct{})}
	r.Keys("*", res.callback)
	<-res.done
	assert.NoError(res.err)
	assert.Equal([]string{"bytes", "key-hostname1:6379", "key-hostname1:6380", "key-hostname1:6381", "shared"}, res.keys)
	for _, d := range factory.all() {
		calls := d.commands()
		assert.Len(calls, 1)
		assert.Equal("keys", calls[0].command)
		assert.Equal([]interface{}{"*"}, calls[0].args)
	}
}

func TestKeysUsesReplicas(t *testing.T) {
	assert := require.New(t)

	r, factory := newTestRouter(t, generateHostRanges(1, 2, 1, topology.ReadPrimary), testParameters())
	for _, d := range factory.all() {
		d.setResponder(func(address, command string, args []interface{}, done func(interface{}, error)) {
			go done([]string{address}, nil)
		})
	}
	res := &keysResult{done: make(chan struct{})}
	r.PreferReplica().Keys("*", res.callback)
	<-res.done
	assert.NoError(res.err)
	assert.Equal([]string{"hostname1-slave1:6379", "hostname1-slave1:6380"}, res.keys)
	assert.Equal(0, factory.driver("hostname1:6379").callCount())
}

func TestKeysError(t *testing.T) {
	assert := require.New(t)

	r, factory := newTestRouter(t, generateHostRanges(1, 3, 0, topology.ReadPrimary), testParameters())
	for _, d := range factory.all() {
		d.setResponder(func(address, command string, args []interface{}, done func(interface{}, error)) {
			go done([]interface{}{"a"}, nil)
		})
	}
	factory.driver("hostname1:6380").setResponder(respondError)

	res := &keysResult{done: make(chan struct{})}
	r.Keys("*", res.callback)
	<-res.done
	assert.True(errors.Is(res.err, errMock))
	assert.Empty(res.keys)

	time.Sleep(20 * time.Millisecond)
	res.mutex.Lock()
	defer res.mutex.Unlock()
	assert.Equal(1, res.count)
}

func TestToStrings(t *testing.T) {
	assert := require.New(t)

	s, err := toStrings(nil)
	assert.NoError(err)
	assert.Empty(s)

	s, err = toStrings([]string{"a"})
	assert.NoError(err)
	assert.Equal([]string{"a"}, s)

	s, err = toStrings([]interface{}{"a", []byte("b"), 3})
	assert.NoError(err)
	assert.Equal([]string{"a", "b", "3"}, s)

	_, err = toStrings(42)
	assert.Error(err)
}
