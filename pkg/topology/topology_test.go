package topology

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestResolveOrder(t *testing.T) {
	assert := require.New(t)

	shards, err := Resolve([]HostRange{
		NewHostRange("box1.redis", 6370, 6372, nil, ReadPrimary),
		NewHostRange("box2.redis", 10000, 0, nil, ReadPrimary),
		NewHostRange("box3.redis", 6379, 6380, []string{"box3.slave1", "box3.slave2"}, ReadReplica),
	})
	assert.NoError(err)

	var addrs []string
	for _, s := range shards {
		addrs = append(addrs, s.Address())
	}
	assert.Equal([]string{
		"box1.redis:6370",
		"box1.redis:6371",
		"box1.redis:6372",
		"box2.redis:10000",
		"box3.redis:6379",
		"box3.redis:6380",
	}, addrs)

	for _, s := range shards[:4] {
		assert.Empty(s.SlaveHosts)
		assert.Equal(ReadPrimary, s.ReadPreference)
	}
	for _, s := range shards[4:] {
		assert.Equal(ReadReplica, s.ReadPreference)
		assert.Equal([]string{fmt.Sprintf("box3.slave1:%d", s.Port), fmt.Sprintf("box3.slave2:%d", s.Port)}, s.ReplicaAddresses())
	}
}

func TestResolveSinglePort(t *testing.T) {
	assert := require.New(t)

	shards, err := Resolve([]HostRange{{Host: "localhost", PortRange: []int{3000}}})
	assert.NoError(err)
	assert.Len(shards, 1)
	assert.Equal("localhost:3000", shards[0].Address())
}

func TestResolveSharesNothing(t *testing.T) {
	assert := require.New(t)

	slaves := []string{"a", "b"}
	shards, err := Resolve([]HostRange{NewHostRange("h", 1, 2, slaves, ReadReplica)})
	assert.NoError(err)
	slaves[0] = "changed"
	shards[0].SlaveHosts[1] = "changed"
	assert.Equal([]string{"a", "b"}, shards[1].SlaveHosts)
}

func TestResolveErrors(t *testing.T) {
	assert := require.New(t)

	bad := [][]HostRange{
		nil,
		{{Host: "", PortRange: []int{1}}},
		{{Host: "h"}},
		{{Host: "h", PortRange: []int{1, 2, 3}}},
		{{Host: "h", PortRange: []int{0}}},
		{{Host: "h", PortRange: []int{70000}}},
		{{Host: "h", PortRange: []int{10, 5}}},
		{{Host: "h", PortRange: []int{1}, SlaveHosts: []string{""}}},
		{{Host: "h", PortRange: []int{1}, ReadPreference: "nearest"}},
	}
	for i, ranges := range bad {
		_, err := Resolve(ranges)
		assert.Error(err, "Expected error for case %d", i)
		assert.True(errors.Is(err, ErrInvalidTopology), "Case %d should be a topology error", i)
	}
}

func TestParse(t *testing.T) {
	assert := require.New(t)

	const doc = `
shards:
  - host: box1.redis
    port_range: [6370, 6372]
  - host: box3.redis
    port_range: [6379]
    slaveHosts: [box3.redis.slave1, box3.redis.slave2]
    readPreference: slave
`
	ranges, err := Parse(strings.NewReader(doc))
	assert.NoError(err)
	assert.Len(ranges, 2)
	assert.Equal(ReadReplica, ranges[1].ReadPreference)

	shards, err := Resolve(ranges)
	assert.NoError(err)
	assert.Len(shards, 4)

	// Plain JSON list
	ranges, err = Parse(strings.NewReader(`[{"host":"localhost","port_range":[3000]}]`))
	assert.NoError(err)
	assert.Len(ranges, 1)

	_, err = Parse(strings.NewReader(`"just a string"`))
	assert.True(errors.Is(err, ErrInvalidTopology))

	_, err = Parse(strings.NewReader(``))
	assert.True(errors.Is(err, ErrInvalidTopology))

	_, err = Parse(strings.NewReader(`shards: [{host: x, port_range: [5, 1]}]`))
	assert.True(errors.Is(err, ErrInvalidTopology))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	require.Error(t, err)
}
