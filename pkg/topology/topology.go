package topology

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
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrInvalidTopology is returned (wrapped) for all topology validation errors.
var ErrInvalidTopology = errors.New("invalid topology")

// ReadPreference controls where read-only commands are sent for a shard.
type ReadPreference string

// Read preferences. The zero value sends reads to the primary.
const (
	ReadPrimary ReadPreference = ""
	ReadReplica ReadPreference = "slave"
)

// HostRange is a single entry in the topology configuration. A host with a
// port range expands into one shard per port. The replica hosts listen on the
// same port as the primary.
type HostRange struct {
	Host           string         `yaml:"host" json:"host"`
	PortRange      []int          `yaml:"port_range" json:"port_range"`
	SlaveHosts     []string       `yaml:"slaveHosts,omitempty" json:"slaveHosts,omitempty"`
	ReadPreference ReadPreference `yaml:"readPreference,omitempty" json:"readPreference,omitempty"`
}

// NewHostRange creates a host range covering [startPort, endPort]. An end port
// of 0 gives a single shard on startPort.
func NewHostRange(host string, startPort, endPort int, slaveHosts []string, pref ReadPreference) HostRange {
	ports := []int{startPort}
	if endPort != 0 {
		ports = append(ports, endPort)
	}
	return HostRange{
		Host:           host,
		PortRange:      ports,
		SlaveHosts:     slaveHosts,
		ReadPreference: pref,
	}
}

// Ports returns the first and last port in the range.
func (h HostRange) Ports() (int, int, error) {
	switch len(h.PortRange) {
	case 1:
		return h.PortRange[0], h.PortRange[0], nil
	case 2:
		return h.PortRange[0], h.PortRange[1], nil
	default:
		return 0, 0, errors.Wrapf(ErrInvalidTopology, "host %q needs a port or a port pair, got %v", h.Host, h.PortRange)
	}
}

func (h HostRange) validate() error {
	if h.Host == "" {
		return errors.Wrap(ErrInvalidTopology, "missing host name")
	}
	start, end, err := h.Ports()
	if err != nil {
		return err
	}
	if !validPort(start) || !validPort(end) {
		return errors.Wrapf(ErrInvalidTopology, "host %q has an out of range port in %v", h.Host, h.PortRange)
	}
	if end < start {
		return errors.Wrapf(ErrInvalidTopology, "host %q: end port %d is below start port %d", h.Host, end, start)
	}
	for _, s := range h.SlaveHosts {
		if s == "" {
			return errors.Wrapf(ErrInvalidTopology, "host %q has an empty replica host", h.Host)
		}
	}
	switch h.ReadPreference {
	case ReadPrimary, ReadReplica:
	default:
		return errors.Wrapf(ErrInvalidTopology, "host %q has unknown read preference %q", h.Host, h.ReadPreference)
	}
	return nil
}

func validPort(p int) bool {
	return p > 0 && p < 65536
}

// ShardDescriptor describes a single shard endpoint: the primary's host
// and port plus the replica hosts.
type ShardDescriptor struct {
	Host           string
	Port           int
	SlaveHosts     []string
	ReadPreference ReadPreference
}

// Address returns the host:port string for the primary
func (s ShardDescriptor) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReplicaAddresses returns the host:port strings for the replicas.
func (s ShardDescriptor) ReplicaAddresses() []string {
	ret := make([]string, len(s.SlaveHosts))
	for i, h := range s.SlaveHosts {
		ret[i] = fmt.Sprintf("%s:%d", h, s.Port)
	}
	return ret
}

// Resolve expands the host ranges into a flat list of shards. The order is
// the order of the ranges followed by the port order inside each range. The
// shard index for a key depends on this order so it must never change.
func Resolve(ranges []HostRange) ([]ShardDescriptor, error) {
	if len(ranges) == 0 {
		return nil, errors.Wrap(ErrInvalidTopology, "no host ranges")
	}
	var ret []ShardDescriptor
	for i, r := range ranges {
		if err := r.validate(); err != nil {
			return nil, errors.Wrapf(err, "range %d", i)
		}
		start, end, _ := r.Ports()
		for port := start; port <= end; port++ {
			ret = append(ret, ShardDescriptor{
				Host:           r.Host,
				Port:           port,
				SlaveHosts:     append([]string(nil), r.SlaveHosts...),
				ReadPreference: r.ReadPreference,
			})
		}
	}
	return ret, nil
}
