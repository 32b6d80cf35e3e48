package shardfunk

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// The typed methods below forward to ExecuteWithOptions. Keys are always the
// first backend argument. Variadic backend arguments are passed as slices.

func (r *Router) forward(opts CallOptions, command, key string, cb Callback, args ...interface{}) {
	r.ExecuteWithOptions(opts, command, key, args, cb)
}

// forwardKeys sends a multi-key command routed by the first key
func (r *Router) forwardKeys(opts CallOptions, command string, keys []string, cb Callback) {
	if len(keys) == 0 {
		if cb != nil {
			cb(nil, errors.Wrapf(ErrNoKeys, "%s", command))
		}
		return
	}
	args := make([]interface{}, 0, len(keys)-1)
	for _, k := range keys[1:] {
		args = append(args, k)
	}
	r.ExecuteWithOptions(opts, command, keys[0], args, cb)
}

func stringArgs(values []string) []interface{} {
	ret := make([]interface{}, len(values))
	for i, v := range values {
		ret[i] = v
	}
	return ret
}

// Sadd adds members to the set at key
func (r *Router) Sadd(key string, members []interface{}, cb Callback) {
	r.SaddWithOptions(CallOptions{}, key, members, cb)
}

// SaddWithOptions adds members to the set at key
func (r *Router) SaddWithOptions(opts CallOptions, key string, members []interface{}, cb Callback) {
	r.forward(opts, "sadd", key, cb, members...)
}

// Expire sets a timeout in seconds on key
func (r *Router) Expire(key string, seconds int64, cb Callback) {
	r.ExpireWithOptions(CallOptions{}, key, seconds, cb)
}

// ExpireWithOptions sets a timeout in seconds on key
func (r *Router) ExpireWithOptions(opts CallOptions, key string, seconds int64, cb Callback) {
	r.forward(opts, "expire", key, cb, seconds)
}

// TTL returns the remaining time to live for key
func (r *Router) TTL(key string, cb Callback) {
	r.TTLWithOptions(CallOptions{}, key, cb)
}

// TTLWithOptions returns the remaining time to live for key
func (r *Router) TTLWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "ttl", key, cb)
}

// Sismember checks if member is in the set at key
func (r *Router) Sismember(key string, member interface{}, cb Callback) {
	r.SismemberWithOptions(CallOptions{}, key, member, cb)
}

// SismemberWithOptions checks if member is in the set at key
func (r *Router) SismemberWithOptions(opts CallOptions, key string, member interface{}, cb Callback) {
	r.forward(opts, "sismember", key, cb, member)
}

// Srem removes members from the set at key
func (r *Router) Srem(key string, members []interface{}, cb Callback) {
	r.SremWithOptions(CallOptions{}, key, members, cb)
}

// SremWithOptions removes members from the set at key
func (r *Router) SremWithOptions(opts CallOptions, key string, members []interface{}, cb Callback) {
	r.forward(opts, "srem", key, cb, members...)
}

// Get returns the value of key
func (r *Router) Get(key string, cb Callback) {
	r.GetWithOptions(CallOptions{}, key, cb)
}

// GetWithOptions returns the value of key
func (r *Router) GetWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "get", key, cb)
}

// Mget returns the values of keys. The call is routed by the first key, so
// all of the keys must live on the same shard. Use a shard key to ensure
// this.
func (r *Router) Mget(keys []string, cb Callback) {
	r.MgetWithOptions(CallOptions{}, keys, cb)
}

// MgetWithOptions returns the values of keys
func (r *Router) MgetWithOptions(opts CallOptions, keys []string, cb Callback) {
	r.forwardKeys(opts, "mget", keys, cb)
}

// Exists checks if key exists
func (r *Router) Exists(key string, cb Callback) {
	r.ExistsWithOptions(CallOptions{}, key, cb)
}

// ExistsWithOptions checks if key exists
func (r *Router) ExistsWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "exists", key, cb)
}

// Scard returns the number of members in the set at key
func (r *Router) Scard(key string, cb Callback) {
	r.ScardWithOptions(CallOptions{}, key, cb)
}

// ScardWithOptions returns the number of members in the set at key
func (r *Router) ScardWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "scard", key, cb)
}

// Smembers returns the members of the set at key
func (r *Router) Smembers(key string, cb Callback) {
	r.SmembersWithOptions(CallOptions{}, key, cb)
}

// SmembersWithOptions returns the members of the set at key
func (r *Router) SmembersWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "smembers", key, cb)
}

// Sunion returns the union of the sets at keys. Like Mget the call is
// routed by the first key.
func (r *Router) Sunion(keys []string, cb Callback) {
	r.SunionWithOptions(CallOptions{}, keys, cb)
}

// SunionWithOptions returns the union of the sets at keys
func (r *Router) SunionWithOptions(opts CallOptions, keys []string, cb Callback) {
	r.forwardKeys(opts, "sunion", keys, cb)
}

// Hdel removes fields from the hash at key
func (r *Router) Hdel(key string, fields []string, cb Callback) {
	r.HdelWithOptions(CallOptions{}, key, fields, cb)
}

// HdelWithOptions removes fields from the hash at key
func (r *Router) HdelWithOptions(opts CallOptions, key string, fields []string, cb Callback) {
	r.forward(opts, "hdel", key, cb, stringArgs(fields)...)
}

// Hget returns a field from the hash at key
func (r *Router) Hget(key, field string, cb Callback) {
	r.HgetWithOptions(CallOptions{}, key, field, cb)
}

// HgetWithOptions returns a field from the hash at key
func (r *Router) HgetWithOptions(opts CallOptions, key, field string, cb Callback) {
	r.forward(opts, "hget", key, cb, field)
}

// Hincrby increments a field in the hash at key
func (r *Router) Hincrby(key, field string, increment int64, cb Callback) {
	r.HincrbyWithOptions(CallOptions{}, key, field, increment, cb)
}

// HincrbyWithOptions increments a field in the hash at key
func (r *Router) HincrbyWithOptions(opts CallOptions, key, field string, increment int64, cb Callback) {
	r.forward(opts, "hincrby", key, cb, field, increment)
}

// Hset sets a field in the hash at key
func (r *Router) Hset(key, field string, value interface{}, cb Callback) {
	r.HsetWithOptions(CallOptions{}, key, field, value, cb)
}

// HsetWithOptions sets a field in the hash at key
func (r *Router) HsetWithOptions(opts CallOptions, key, field string, value interface{}, cb Callback) {
	r.forward(opts, "hset", key, cb, field, value)
}

// Hmset sets several fields in the hash at key. The fields are sent in
// sorted order.
func (r *Router) Hmset(key string, values map[string]interface{}, cb Callback) {
	r.HmsetWithOptions(CallOptions{}, key, values, cb)
}

// HmsetWithOptions sets several fields in the hash at key
func (r *Router) HmsetWithOptions(opts CallOptions, key string, values map[string]interface{}, cb Callback) {
	fields := make([]string, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	args := make([]interface{}, 0, len(values)*2)
	for _, f := range fields {
		args = append(args, f, values[f])
	}
	r.forward(opts, "hmset", key, cb, args...)
}

// Hgetall returns all fields in the hash at key
func (r *Router) Hgetall(key string, cb Callback) {
	r.HgetallWithOptions(CallOptions{}, key, cb)
}

// HgetallWithOptions returns all fields in the hash at key
func (r *Router) HgetallWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "hgetall", key, cb)
}

// Llen returns the length of the list at key
func (r *Router) Llen(key string, cb Callback) {
	r.LlenWithOptions(CallOptions{}, key, cb)
}

// LlenWithOptions returns the length of the list at key
func (r *Router) LlenWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "llen", key, cb)
}

// Lpush prepends values to the list at key
func (r *Router) Lpush(key string, values []interface{}, cb Callback) {
	r.LpushWithOptions(CallOptions{}, key, values, cb)
}

// LpushWithOptions prepends values to the list at key
func (r *Router) LpushWithOptions(opts CallOptions, key string, values []interface{}, cb Callback) {
	r.forward(opts, "lpush", key, cb, values...)
}

// Lrange returns a range of elements from the list at key
func (r *Router) Lrange(key string, start, stop int64, cb Callback) {
	r.LrangeWithOptions(CallOptions{}, key, start, stop, cb)
}

// LrangeWithOptions returns a range of elements from the list at key
func (r *Router) LrangeWithOptions(opts CallOptions, key string, start, stop int64, cb Callback) {
	r.forward(opts, "lrange", key, cb, start, stop)
}

// Ltrim trims the list at key to a range
func (r *Router) Ltrim(key string, start, stop int64, cb Callback) {
	r.LtrimWithOptions(CallOptions{}, key, start, stop, cb)
}

// LtrimWithOptions trims the list at key to a range
func (r *Router) LtrimWithOptions(opts CallOptions, key string, start, stop int64, cb Callback) {
	r.forward(opts, "ltrim", key, cb, start, stop)
}

// Set sets the value of key
func (r *Router) Set(key string, value interface{}, cb Callback) {
	r.SetWithOptions(CallOptions{}, key, value, cb)
}

// SetWithOptions sets the value of key
func (r *Router) SetWithOptions(opts CallOptions, key string, value interface{}, cb Callback) {
	r.forward(opts, "set", key, cb, value)
}

// Setnx sets the value of key if it doesn't exist
func (r *Router) Setnx(key string, value interface{}, cb Callback) {
	r.SetnxWithOptions(CallOptions{}, key, value, cb)
}

// SetnxWithOptions sets the value of key if it doesn't exist
func (r *Router) SetnxWithOptions(opts CallOptions, key string, value interface{}, cb Callback) {
	r.forward(opts, "setnx", key, cb, value)
}

// Setex sets the value of key with a timeout in seconds
func (r *Router) Setex(key string, seconds int64, value interface{}, cb Callback) {
	r.SetexWithOptions(CallOptions{}, key, seconds, value, cb)
}

// SetexWithOptions sets the value of key with a timeout in seconds
func (r *Router) SetexWithOptions(opts CallOptions, key string, seconds int64, value interface{}, cb Callback) {
	r.forward(opts, "setex", key, cb, seconds, value)
}

// Psetex sets the value of key with a timeout in milliseconds
func (r *Router) Psetex(key string, milliseconds int64, value interface{}, cb Callback) {
	r.PsetexWithOptions(CallOptions{}, key, milliseconds, value, cb)
}

// PsetexWithOptions sets the value of key with a timeout in milliseconds
func (r *Router) PsetexWithOptions(opts CallOptions, key string, milliseconds int64, value interface{}, cb Callback) {
	r.forward(opts, "psetex", key, cb, milliseconds, value)
}

// Del removes key
func (r *Router) Del(key string, cb Callback) {
	r.DelWithOptions(CallOptions{}, key, cb)
}

// DelWithOptions removes key
func (r *Router) DelWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "del", key, cb)
}

// Srandmember returns a random member of the set at key
func (r *Router) Srandmember(key string, cb Callback) {
	r.SrandmemberWithOptions(CallOptions{}, key, cb)
}

// SrandmemberWithOptions returns a random member of the set at key
func (r *Router) SrandmemberWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "srandmember", key, cb)
}

// Zrevrange returns a range of members from the sorted set at key, highest
// score first
func (r *Router) Zrevrange(key string, start, stop int64, cb Callback) {
	r.ZrevrangeWithOptions(CallOptions{}, key, start, stop, cb)
}

// ZrevrangeWithOptions returns a range of members from the sorted set at
// key, highest score first
func (r *Router) ZrevrangeWithOptions(opts CallOptions, key string, start, stop int64, cb Callback) {
	r.forward(opts, "zrevrange", key, cb, start, stop)
}

// Incr increments the value of key
func (r *Router) Incr(key string, cb Callback) {
	r.IncrWithOptions(CallOptions{}, key, cb)
}

// IncrWithOptions increments the value of key
func (r *Router) IncrWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "incr", key, cb)
}

// Zadd adds a member to the sorted set at key. Use ZaddMulti for several
// members.
func (r *Router) Zadd(key string, score float64, member interface{}, cb Callback) {
	r.ZaddWithOptions(CallOptions{}, key, score, member, cb)
}

// ZaddWithOptions adds a member to the sorted set at key
func (r *Router) ZaddWithOptions(opts CallOptions, key string, score float64, member interface{}, cb Callback) {
	r.forward(opts, "zadd", key, cb, score, member)
}

// Zcard returns the number of members in the sorted set at key
func (r *Router) Zcard(key string, cb Callback) {
	r.ZcardWithOptions(CallOptions{}, key, cb)
}

// ZcardWithOptions returns the number of members in the sorted set at key
func (r *Router) ZcardWithOptions(opts CallOptions, key string, cb Callback) {
	r.forward(opts, "zcard", key, cb)
}

// Zcount counts the members of the sorted set at key with scores in the
// range. The limits use the backend syntax, f.e. "-inf" or "(5".
func (r *Router) Zcount(key, min, max string, cb Callback) {
	r.ZcountWithOptions(CallOptions{}, key, min, max, cb)
}

// ZcountWithOptions counts the members of the sorted set at key with scores
// in the range
func (r *Router) ZcountWithOptions(opts CallOptions, key, min, max string, cb Callback) {
	r.forward(opts, "zcount", key, cb, min, max)
}

// Zrem removes members from the sorted set at key
func (r *Router) Zrem(key string, members []interface{}, cb Callback) {
	r.ZremWithOptions(CallOptions{}, key, members, cb)
}

// ZremWithOptions removes members from the sorted set at key
func (r *Router) ZremWithOptions(opts CallOptions, key string, members []interface{}, cb Callback) {
	r.forward(opts, "zrem", key, cb, members...)
}

// Zscore returns the score of member in the sorted set at key
func (r *Router) Zscore(key string, member interface{}, cb Callback) {
	r.ZscoreWithOptions(CallOptions{}, key, member, cb)
}

// ZscoreWithOptions returns the score of member in the sorted set at key
func (r *Router) ZscoreWithOptions(opts CallOptions, key string, member interface{}, cb Callback) {
	r.forward(opts, "zscore", key, cb, member)
}

// Zrange returns a range of members from the sorted set at key
func (r *Router) Zrange(key string, start, stop int64, cb Callback) {
	r.ZrangeWithOptions(CallOptions{}, key, start, stop, cb)
}

// ZrangeWithOptions returns a range of members from the sorted set at key
func (r *Router) ZrangeWithOptions(opts CallOptions, key string, start, stop int64, cb Callback) {
	r.forward(opts, "zrange", key, cb, start, stop)
}

// Zrangebyscore returns the members of the sorted set at key with scores in
// the range
func (r *Router) Zrangebyscore(key, min, max string, cb Callback) {
	r.ZrangebyscoreWithOptions(CallOptions{}, key, min, max, cb)
}

// ZrangebyscoreWithOptions returns the members of the sorted set at key
// with scores in the range
func (r *Router) ZrangebyscoreWithOptions(opts CallOptions, key, min, max string, cb Callback) {
	r.forward(opts, "zrangebyscore", key, cb, min, max)
}

// Zremrangebyrank removes a range of members by rank from the sorted set
func (r *Router) Zremrangebyrank(key string, start, stop int64, cb Callback) {
	r.ZremrangebyrankWithOptions(CallOptions{}, key, start, stop, cb)
}

// ZremrangebyrankWithOptions removes a range of members by rank from the
// sorted set
func (r *Router) ZremrangebyrankWithOptions(opts CallOptions, key string, start, stop int64, cb Callback) {
	r.forward(opts, "zremrangebyrank", key, cb, start, stop)
}

// Zremrangebyscore removes the members with scores in the range from the
// sorted set
func (r *Router) Zremrangebyscore(key, min, max string, cb Callback) {
	r.ZremrangebyscoreWithOptions(CallOptions{}, key, min, max, cb)
}

// ZremrangebyscoreWithOptions removes the members with scores in the range
// from the sorted set
func (r *Router) ZremrangebyscoreWithOptions(opts CallOptions, key, min, max string, cb Callback) {
	r.forward(opts, "zremrangebyscore", key, cb, min, max)
}
