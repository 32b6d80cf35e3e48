package shardfunk

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// MultiCallback receives the replies from a transaction
type MultiCallback func(replies []interface{}, err error)

// KeysCallback receives the matched keys
type KeysCallback func(keys []string, err error)

// Multi runs a list of commands as a transaction on the primary of the shard
// for key. Each command is a command name followed by its arguments. All of
// the keys in the transaction must live on the same shard. The write timeout
// applies and the call is never retried on another connection.
func (r *Router) Multi(key string, commands [][]interface{}, cb MultiCallback) {
	if cb == nil {
		cb = func([]interface{}, error) {}
	}
	set := r.ShardFor(key)
	conn := set.primary
	r.dispatch(set, conn, "multi", r.policy.writeTimeout, false, func(d Driver, done func(interface{}, error)) {
		tx, ok := d.(Transactor)
		if !ok {
			done(nil, errors.Wrapf(ErrNotSupported, "transactions on %s", d.Address()))
			return
		}
		tx.Multi(commands, func(replies []interface{}, err error) {
			done(replies, err)
		})
	}, func(reply interface{}, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		replies, _ := reply.([]interface{})
		cb(replies, nil)
	})
}

// ZaddMulti adds several score/member pairs to the sorted set at key in a
// single call. The pairs are flattened as score1, member1, score2, ...
func (r *Router) ZaddMulti(key string, scoreMembers []interface{}, cb Callback) {
	r.writeMulti("zadd", key, scoreMembers, cb)
}

// ZremMulti removes several members from the sorted set at key in a single
// call.
func (r *Router) ZremMulti(key string, members []interface{}, cb Callback) {
	r.writeMulti("zrem", key, members, cb)
}

func (r *Router) writeMulti(command, key string, args []interface{}, cb Callback) {
	driverArgs := make([]interface{}, 0, len(args)+1)
	driverArgs = append(driverArgs, key)
	driverArgs = append(driverArgs, args...)

	set := r.ShardFor(key)
	r.dispatch(set, set.primary, command, r.policy.writeTimeout, false, func(d Driver, done func(interface{}, error)) {
		d.Do(command, driverArgs, done)
	}, cb)
}

// Keys runs the keys command on every shard and returns the union of the
// matched keys in sorted order. Each shard is queried on the connection a
// read would use, with the read timeout. The first error aborts the call.
func (r *Router) Keys(pattern string, cb KeysCallback) {
	if cb == nil {
		cb = func([]string, error) {}
	}
	var (
		mutex     = &sync.Mutex{}
		remaining = len(r.table.sets)
		found     = make(map[string]bool)
		completed bool
	)
	for _, set := range r.table.sets {
		conn := set.readConnection(r.policy.preferReplica)
		r.dispatch(set, conn, "keys", r.policy.readTimeout, true, func(d Driver, done func(interface{}, error)) {
			d.Do("keys", []interface{}{pattern}, done)
		}, func(reply interface{}, err error) {
			mutex.Lock()
			defer mutex.Unlock()
			if completed {
				return
			}
			if err == nil {
				var keys []string
				keys, err = toStrings(reply)
				for _, k := range keys {
					found[k] = true
				}
			}
			if err != nil {
				completed = true
				cb([]string{}, err)
				return
			}
			remaining--
			if remaining > 0 {
				return
			}
			completed = true
			ret := make([]string, 0, len(found))
			for k := range found {
				ret = append(ret, k)
			}
			sort.Strings(ret)
			cb(ret, nil)
		})
	}
}

// toStrings converts a list reply into strings
func toStrings(reply interface{}) ([]string, error) {
	switch v := reply.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []interface{}:
		ret := make([]string, 0, len(v))
		for _, e := range v {
			switch s := e.(type) {
			case string:
				ret = append(ret, s)
			case []byte:
				ret = append(ret, string(s))
			default:
				ret = append(ret, fmt.Sprint(s))
			}
		}
		return ret, nil
	default:
		return nil, errors.Newf("unexpected reply type %T", reply)
	}
}
