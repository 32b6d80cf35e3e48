package shardfunk

import (
	"sync"
	"time"
)

// ErrorEvent is emitted when a call to a backend connection or a keep-alive
// ping fails. Failures that are handled by trying another connection are
// reported as well.
type ErrorEvent struct {
	Address string    // Address is the host:port of the connection
	Command string    // Command is the command that failed
	Shard   int       // Shard is the shard index
	Primary bool      // Primary is set if the connection is the shard primary
	Err     error     // Err is the error returned to the caller
	Time    time.Time // Time is when the failure happened
}

const observerBufferSize = 32

// errorObserver fans out error events to subscribers. Slow subscribers
// lose events.
type errorObserver struct {
	mutex       *sync.Mutex
	subscribers []chan ErrorEvent
	shutdown    bool
}

func newErrorObserver() *errorObserver {
	return &errorObserver{
		mutex:       &sync.Mutex{},
		subscribers: make([]chan ErrorEvent, 0),
	}
}

func (e *errorObserver) Observe() <-chan ErrorEvent {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	ret := make(chan ErrorEvent, observerBufferSize)
	if e.shutdown {
		close(ret)
		return ret
	}
	e.subscribers = append(e.subscribers, ret)
	return ret
}

func (e *errorObserver) Unobserve(ch <-chan ErrorEvent) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for i, v := range e.subscribers {
		if v == ch {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			close(v)
			return
		}
	}
}

func (e *errorObserver) Shutdown() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, v := range e.subscribers {
		close(v)
	}
	e.subscribers = make([]chan ErrorEvent, 0)
	e.shutdown = true
}

func (e *errorObserver) emit(ev ErrorEvent) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, v := range e.subscribers {
		select {
		case v <- ev:
		default:
		}
	}
}
