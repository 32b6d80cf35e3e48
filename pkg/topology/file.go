package topology

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk topology format. JSON is a subset of YAML so both
// formats are accepted.
//
//	shards:
//	  - host: box1.redis
//	    port_range: [6370, 6372]
//	  - host: box3.redis
//	    port_range: [6379]
//	    slaveHosts: [box3.redis.slave1, box3.redis.slave2]
//	    readPreference: slave
type Config struct {
	Shards []HostRange `yaml:"shards" json:"shards"`
}

// Parse reads a topology from r and validates it. A document with a
// top-level sequence is also accepted for compatibility with plain range
// lists.
func Parse(r io.Reader) ([]HostRange, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading topology")
	}
	var node yaml.Node
	if err := yaml.Unmarshal(buf, &node); err != nil {
		return nil, errors.Wrapf(ErrInvalidTopology, "malformed topology: %v", err)
	}
	if len(node.Content) == 0 {
		return nil, errors.Wrap(ErrInvalidTopology, "empty topology")
	}

	var ranges []HostRange
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		err = yaml.NewDecoder(bytes.NewReader(buf)).Decode(&ranges)
	case yaml.MappingNode:
		var cfg Config
		err = yaml.NewDecoder(bytes.NewReader(buf)).Decode(&cfg)
		ranges = cfg.Shards
	default:
		return nil, errors.Wrap(ErrInvalidTopology, "topology must be a list of host ranges")
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidTopology, "malformed topology: %v", err)
	}
	if _, err := Resolve(ranges); err != nil {
		return nil, err
	}
	return ranges, nil
}

// Load reads a topology file.
func Load(filename string) ([]HostRange, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening topology file %s", filename)
	}
	defer f.Close()
	return Parse(f)
}
