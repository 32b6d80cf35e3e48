package shardfunk

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/lab5e/shardfunk/pkg/topology"
)

// mockResponder handles a call on a mock driver. It may call done at any
// time, or never.
type mockResponder func(address, command string, args []interface{}, done func(interface{}, error))

// respondAddress replies with the driver address from another goroutine
func respondAddress(address, command string, args []interface{}, done func(interface{}, error)) {
	go done(address, nil)
}

type mockCall struct {
	command string
	args    []interface{}
}

type mockDriver struct {
	address  string
	mutex    *sync.Mutex
	respond  mockResponder
	calls    []mockCall
	notify   func(ConnEvent)
	closed   bool
	closeErr error
}

func newMockDriver(address string) *mockDriver {
	return &mockDriver{
		address: address,
		mutex:   &sync.Mutex{},
		respond: respondAddress,
	}
}

func (m *mockDriver) Do(command string, args []interface{}, done func(interface{}, error)) {
	m.mutex.Lock()
	m.calls = append(m.calls, mockCall{command: command, args: args})
	respond := m.respond
	m.mutex.Unlock()
	respond(m.address, command, args, done)
}

func (m *mockDriver) Multi(commands [][]interface{}, done func([]interface{}, error)) {
	m.mutex.Lock()
	m.calls = append(m.calls, mockCall{command: "multi", args: []interface{}{commands}})
	m.mutex.Unlock()
	go func() {
		ret := make([]interface{}, len(commands))
		for i, c := range commands {
			ret[i] = fmt.Sprintf("%s@%s", c[0], m.address)
		}
		done(ret, nil)
	}()
}

func (m *mockDriver) Notify(fn func(ConnEvent)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.notify = fn
}

func (m *mockDriver) Address() string {
	return m.address
}

func (m *mockDriver) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	return m.closeErr
}

func (m *mockDriver) setResponder(r mockResponder) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.respond = r
}

// commands returns the commands the driver has seen, pings excluded
func (m *mockDriver) commands() []mockCall {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var ret []mockCall
	for _, c := range m.calls {
		if c.command != "ping" {
			ret = append(ret, c)
		}
	}
	return ret
}

func (m *mockDriver) callCount() int {
	return len(m.commands())
}

func (m *mockDriver) sawCommand(command string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, c := range m.calls {
		if c.command == command {
			return true
		}
	}
	return false
}

func (m *mockDriver) isClosed() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.closed
}

// doOnlyDriver hides the optional interfaces of the mock
type doOnlyDriver struct {
	d *mockDriver
}

func (o *doOnlyDriver) Do(command string, args []interface{}, done func(interface{}, error)) {
	o.d.Do(command, args, done)
}

func (o *doOnlyDriver) Address() string {
	return o.d.Address()
}

func (o *doOnlyDriver) Close() error {
	return o.d.Close()
}

type mockFactory struct {
	mutex   *sync.Mutex
	drivers map[string]*mockDriver
	order   []string
	failOn  string
	doOnly  bool
}

func newMockFactory() *mockFactory {
	return &mockFactory{
		mutex:   &sync.Mutex{},
		drivers: make(map[string]*mockDriver),
	}
}

func (f *mockFactory) create(host string, port int) (Driver, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	address := fmt.Sprintf("%s:%d", host, port)
	if address == f.failOn {
		return nil, errors.Newf("can't connect to %s", address)
	}
	d := newMockDriver(address)
	f.drivers[address] = d
	f.order = append(f.order, address)
	if f.doOnly {
		return &doOnlyDriver{d: d}, nil
	}
	return d, nil
}

func (f *mockFactory) driver(address string) *mockDriver {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.drivers[address]
}

func (f *mockFactory) all() []*mockDriver {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var ret []*mockDriver
	for _, a := range f.order {
		ret = append(ret, f.drivers[a])
	}
	return ret
}

func (f *mockFactory) totalCalls() int {
	n := 0
	for _, d := range f.all() {
		n += d.callCount()
	}
	return n
}

// generateHostRanges creates masters hosts named hostname1, hostname2...
// with ports from 6379 and up. Master n gets the replica hosts
// hostnamen-slave1, hostnamen-slave2...
func generateHostRanges(masters, ports, slaves int, pref topology.ReadPreference) []topology.HostRange {
	var ret []topology.HostRange
	for i := 1; i <= masters; i++ {
		end := 0
		if ports > 1 {
			end = 6379 + ports - 1
		}
		var slaveHosts []string
		for j := 1; j <= slaves; j++ {
			slaveHosts = append(slaveHosts, fmt.Sprintf("hostname%d-slave%d", i, j))
		}
		ret = append(ret, topology.NewHostRange(fmt.Sprintf("hostname%d", i), 6379, end, slaveHosts, pref))
	}
	return ret
}

func testParameters() Parameters {
	p := DefaultParameters()
	p.UsePing = false
	return p
}

func newTestRouter(t *testing.T, ranges []topology.HostRange, params Parameters) (*Router, *mockFactory) {
	factory := newMockFactory()
	r, err := New(ranges, Config{Parameters: params, Factory: factory.create})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, factory
}

// result collects callback invocations
type result struct {
	mutex *sync.Mutex
	count int
	reply interface{}
	err   error
	done  chan struct{}
}

func newResult() *result {
	return &result{mutex: &sync.Mutex{}, done: make(chan struct{})}
}

func (r *result) callback(reply interface{}, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.count++
	if r.count == 1 {
		r.reply = reply
		r.err = err
		close(r.done)
	}
}

func (r *result) invocations() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.count
}
