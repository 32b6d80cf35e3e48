package shardfunk

import "strings"

// CommandInfo describes how a command is routed
type CommandInfo struct {
	ReadOnly bool
}

// ReadOnlyCommands is the list of commands that may be sent to a replica.
// sunion and mget assume all of the keys live on the same shard.
var ReadOnlyCommands = []string{
	"sismember",
	"get",
	"mget",
	"exists",
	"hgetall",
	"llen",
	"lrange",
	"scard",
	"smembers",
	"srandmember",
	"sunion",
	"zrevrange",
	"zcard",
	"zcount",
	"zscore",
	"zrange",
	"zrangebyscore",
}

// ShardableCommands is the list of commands with typed methods on the
// router. Commands not in this list can still be sent with Execute.
var ShardableCommands = []string{
	"sadd",
	"expire",
	"ttl",
	"sismember",
	"srem",
	"get",
	"mget",
	"exists",
	"scard",
	"smembers",
	"sunion",
	"hdel",
	"hget",
	"hincrby",
	"hset",
	"hmset",
	"hgetall",
	"llen",
	"lpush",
	"lrange",
	"ltrim",
	"set",
	"setnx",
	"setex",
	"psetex",
	"del",
	"srandmember",
	"zrevrange",
	"incr",
	"zadd",
	"zcard",
	"zcount",
	"zrem",
	"zscore",
	"zrange",
	"zrangebyscore",
	"zremrangebyrank",
	"zremrangebyscore",
}

var commandTable = buildCommandTable()

func buildCommandTable() map[string]CommandInfo {
	ret := make(map[string]CommandInfo)
	for _, c := range ShardableCommands {
		ret[c] = CommandInfo{ReadOnly: false}
	}
	for _, c := range ReadOnlyCommands {
		ret[c] = CommandInfo{ReadOnly: true}
	}
	return ret
}

// LookupCommand returns the routing info for a command. Unknown commands are
// treated as mutating.
func LookupCommand(command string) (CommandInfo, bool) {
	info, ok := commandTable[strings.ToLower(command)]
	return info, ok
}

// IsReadOnly returns true if the command can be sent to a replica
func IsReadOnly(command string) bool {
	info, _ := LookupCommand(command)
	return info.ReadOnly
}
