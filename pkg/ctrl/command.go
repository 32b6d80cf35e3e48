package ctrl

import (
	"time"

	"github.com/cockroachdb/errors"
	gotoolbox "github.com/lab5e/gotoolbox/toolbox"

	"github.com/lab5e/shardfunk/pkg/shardfunk"
)

// CommandList contains all of the commands for the shardctl utility
type CommandList struct {
	Shards ShardsCommand `kong:"cmd,help='Show the shard table'"`
	Route  RouteCommand  `kong:"cmd,help='Show the shard for keys'"`
	Get    GetCommand    `kong:"cmd,help='Get the value of a key'"`
	Set    SetCommand    `kong:"cmd,help='Set the value of a key'"`
	Del    DelCommand    `kong:"cmd,help='Remove a key'"`
	Keys   KeysCommand   `kong:"cmd,help='List keys matching a pattern on all shards'"`
	Watch  WatchCommand  `kong:"cmd,help='Keep the connections open and log errors'"`
}

// BackendParameters holds the redis client configuration
type BackendParameters struct {
	Password    string        `kong:"help='Password for the redis servers'"`
	DB          int           `kong:"help='Database number',default='0'"`
	DialTimeout time.Duration `kong:"help='Connect timeout',default='5s'"`
	MaxRetries  int           `kong:"help='Retries on network errors (-1 to disable)',default='0'"`
}

// Parameters is the main parameter struct for the shardctl utility
type Parameters struct {
	Topology      string                  `kong:"help='Topology file (YAML or JSON)',type='existingfile',required,short='t'"`
	PreferReplica bool                    `kong:"help='Send reads to replicas for all shards',short='r'"`
	Timeout       time.Duration           `kong:"help='Time to wait for a reply',default='5s'"`
	Router        shardfunk.Parameters    `kong:"embed"`
	Backend       BackendParameters       `kong:"embed,prefix='redis-'"`
	Log           gotoolbox.LogParameters `kong:"embed,prefix='log-'"`
	Commands      CommandList             `kong:"embed"`
}

// We won't be using the errors returned from the commands in Kong so this is
// a placeholder error that we'll return on errors
var errStd = errors.New("error")
