package ctrl

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/lab5e/shardfunk/pkg/shardfunk/sharding"
	"github.com/lab5e/shardfunk/pkg/topology"
)

// ShardsCommand is the subcommand that shows the shard table
type ShardsCommand struct {
}

// Run prints the resolved shard table. No connections are made.
func (c *ShardsCommand) Run(args *RunContext) error {
	shards, err := resolve(args)
	if err != nil {
		return err
	}

	table := tabwriter.NewWriter(args.out, 1, 3, 1, ' ', 0)
	table.Write([]byte("Shard\tPrimary\tReplicas\tReads\n"))
	for i, s := range shards {
		replicas := strings.Join(s.ReplicaAddresses(), ",")
		if replicas == "" {
			replicas = "-"
		}
		reads := "primary"
		if s.ReadPreference == topology.ReadReplica || (args.params.PreferReplica && len(s.SlaveHosts) > 0) {
			reads = "replica"
		}
		table.Write([]byte(fmt.Sprintf("%d\t%s\t%s\t%s\n", i, s.Address(), replicas, reads)))
	}
	table.Flush()
	fmt.Fprintf(args.out, "\nTotal shards: %d\n", len(shards))
	return nil
}

// RouteCommand shows the shard for a list of keys
type RouteCommand struct {
	Keys []string `kong:"arg,help='Keys to look up'"`
}

// Run prints the shard index and the primary for each key. No connections
// are made.
func (c *RouteCommand) Run(args *RunContext) error {
	shards, err := resolve(args)
	if err != nil {
		return err
	}
	table := tabwriter.NewWriter(args.out, 1, 3, 1, ' ', 0)
	table.Write([]byte("Key\tHash\tShard\tPrimary\n"))
	for _, k := range c.Keys {
		index := sharding.Index(k, len(shards))
		table.Write([]byte(fmt.Sprintf("%s\t%04x\t%d\t%s\n", k, sharding.HashPrefix(k), index, shards[index].Address())))
	}
	table.Flush()
	return nil
}

func resolve(args *RunContext) ([]topology.ShardDescriptor, error) {
	ranges, err := args.Topology()
	if err != nil {
		fmt.Fprintf(args.errOut, "Unable to read topology: %v\n", err)
		return nil, errStd
	}
	shards, err := topology.Resolve(ranges)
	if err != nil {
		fmt.Fprintf(args.errOut, "Invalid topology: %v\n", err)
		return nil, errStd
	}
	return shards, nil
}
