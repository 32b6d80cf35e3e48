package ctrl

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lab5e/shardfunk/pkg/shardfunk"
)

// GetCommand reads a single key
type GetCommand struct {
	Key      string `kong:"arg,help='Key to read'"`
	ShardKey string `kong:"help='Route by this key instead',short='s'"`
}

// Run executes the get operation
func (c *GetCommand) Run(args *RunContext) error {
	return runCommand(args, c.ShardKey, "get", c.Key)
}

// SetCommand writes a single key
type SetCommand struct {
	Key      string `kong:"arg,help='Key to write'"`
	Value    string `kong:"arg,help='Value'"`
	ShardKey string `kong:"help='Route by this key instead',short='s'"`
}

// Run executes the set operation
func (c *SetCommand) Run(args *RunContext) error {
	return runCommand(args, c.ShardKey, "set", c.Key, c.Value)
}

// DelCommand removes a single key
type DelCommand struct {
	Key      string `kong:"arg,help='Key to remove'"`
	ShardKey string `kong:"help='Route by this key instead',short='s'"`
}

// Run executes the del operation
func (c *DelCommand) Run(args *RunContext) error {
	return runCommand(args, c.ShardKey, "del", c.Key)
}

func runCommand(args *RunContext, shardKey, command, key string, cmdArgs ...interface{}) error {
	router, err := args.Router()
	if err != nil {
		fmt.Fprintf(args.errOut, "Unable to create router: %v\n", err)
		return errStd
	}
	defer router.Close()

	ctx, done := args.callContext()
	defer done()
	var reply interface{}
	timeCall(func() {
		reply, err = router.DoWithOptions(ctx, shardfunk.CallOptions{ShardKey: shardKey}, command, key, cmdArgs...)
	}, command)
	if err != nil {
		fmt.Fprintf(args.errOut, "Error running %s: %v\n", command, err)
		return errStd
	}
	printReply(args, reply)
	return nil
}

func printReply(args *RunContext, reply interface{}) {
	switch v := reply.(type) {
	case nil:
		fmt.Fprintln(args.out, "(nil)")
	case []interface{}:
		for i, e := range v {
			fmt.Fprintf(args.out, "%d) %v\n", i+1, e)
		}
	default:
		fmt.Fprintf(args.out, "%v\n", v)
	}
}

// KeysCommand lists keys on all shards
type KeysCommand struct {
	Pattern string `kong:"arg,optional,help='Key pattern',default='*'"`
}

// Run executes the keys operation
func (c *KeysCommand) Run(args *RunContext) error {
	router, err := args.Router()
	if err != nil {
		fmt.Fprintf(args.errOut, "Unable to create router: %v\n", err)
		return errStd
	}
	defer router.Close()

	type result struct {
		keys []string
		err  error
	}
	ch := make(chan result, 1)
	router.Keys(c.Pattern, func(keys []string, err error) {
		ch <- result{keys: keys, err: err}
	})

	ctx, done := args.callContext()
	defer done()
	select {
	case <-ctx.Done():
		fmt.Fprintf(args.errOut, "Error listing keys: %v\n", ctx.Err())
		return errStd
	case res := <-ch:
		if res.err != nil {
			fmt.Fprintf(args.errOut, "Error listing keys: %v\n", res.err)
			return errStd
		}
		for _, k := range res.keys {
			fmt.Fprintln(args.out, k)
		}
		fmt.Fprintf(args.out, "\n%d keys\n", len(res.keys))
	}
	return nil
}

// timeCall times the call and logs the execution time in milliseconds
func timeCall(call func(), description string) {
	start := time.Now()
	call()
	diff := time.Since(start)
	logrus.Debugf("%s took %f ms to execute", description, float64(diff)/float64(time.Millisecond))
}
