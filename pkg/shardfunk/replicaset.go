package shardfunk

import (
	"github.com/lab5e/shardfunk/pkg/shardfunk/breaker"
	"github.com/lab5e/shardfunk/pkg/topology"
)

// Connection is a backend connection owned by a replica set.
type Connection struct {
	driver   Driver
	address  string
	primary  bool
	position int
	breaker  breaker.Breaker
}

// Address returns the host:port address of the backend
func (c *Connection) Address() string {
	return c.address
}

// IsPrimary returns true for the primary connection of a shard
func (c *Connection) IsPrimary() bool {
	return c.primary
}

// Position is the connection's position in the replica rotation. The
// primary has position -1 unless the shard has no replicas.
func (c *Connection) Position() int {
	return c.position
}

// Breaker returns the breaker for the connection. It is nil if breakers
// aren't used.
func (c *Connection) Breaker() breaker.Breaker {
	return c.breaker
}

// Driver returns the backend driver
func (c *Connection) Driver() Driver {
	return c.driver
}

// ReplicaSet is a single shard: one primary plus a rotation of replicas. If
// there are no replicas the rotation holds the primary.
type ReplicaSet struct {
	index          int
	descriptor     topology.ShardDescriptor
	primary        *Connection
	replicas       *Rotation
	readPreference topology.ReadPreference
}

func newReplicaSet(index int, desc topology.ShardDescriptor, primary *Connection, replicas []*Connection) *ReplicaSet {
	primary.primary = true
	primary.position = -1
	if len(replicas) == 0 {
		replicas = []*Connection{primary}
	}
	return &ReplicaSet{
		index:          index,
		descriptor:     desc,
		primary:        primary,
		replicas:       newRotation(replicas),
		readPreference: desc.ReadPreference,
	}
}

// Index is the shard index
func (s *ReplicaSet) Index() int {
	return s.index
}

// Descriptor returns the shard descriptor the set was built from
func (s *ReplicaSet) Descriptor() topology.ShardDescriptor {
	return s.descriptor
}

// Primary returns the primary connection
func (s *ReplicaSet) Primary() *Connection {
	return s.primary
}

// Replicas returns the replica rotation
func (s *ReplicaSet) Replicas() *Rotation {
	return s.replicas
}

// ReadPreference returns the configured read preference
func (s *ReplicaSet) ReadPreference() topology.ReadPreference {
	return s.readPreference
}

// NextReplica returns the next replica in the rotation
func (s *ReplicaSet) NextReplica() *Connection {
	return s.replicas.Obtain()
}

// readConnection returns the connection a read should start on
func (s *ReplicaSet) readConnection(preferReplica bool) *Connection {
	if preferReplica || s.readPreference == topology.ReadReplica {
		return s.replicas.Obtain()
	}
	return s.primary
}

// connections returns the distinct connections in the set
func (s *ReplicaSet) connections() []*Connection {
	ret := []*Connection{s.primary}
	for _, c := range s.replicas.items {
		if c != s.primary {
			ret = append(ret, c)
		}
	}
	return ret
}
