package shardfunk

import "sync/atomic"

// Rotation is a round robin cursor over a fixed list of connections. Each
// connection gets a fixed position when the rotation is created.
type Rotation struct {
	items  []*Connection
	cursor *uint64
}

func newRotation(items []*Connection) *Rotation {
	list := make([]*Connection, len(items))
	copy(list, items)
	for i := range list {
		list[i].position = i
	}
	return &Rotation{
		items:  list,
		cursor: new(uint64),
	}
}

// Obtain returns the connection at the cursor and moves the cursor one step.
// N calls visit all N connections once, in position order.
func (r *Rotation) Obtain() *Connection {
	n := atomic.AddUint64(r.cursor, 1) - 1
	return r.items[n%uint64(len(r.items))]
}

// SuccessorOf returns the connection after c. The shared cursor isn't
// touched so a failover walk doesn't skew the read distribution.
func (r *Rotation) SuccessorOf(c *Connection) *Connection {
	return r.items[(c.position+1)%len(r.items)]
}

// Len returns the number of connections in the rotation
func (r *Rotation) Len() int {
	return len(r.items)
}

// Connections returns a copy of the connections in position order
func (r *Rotation) Connections() []*Connection {
	ret := make([]*Connection, len(r.items))
	copy(ret, r.items)
	return ret
}
