package redisdriver

import (
	"context"
	"net"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/lab5e/shardfunk/pkg/shardfunk"
)

// eventHook turns dial and network errors into connection events. Replies
// with errors and cancelled calls are not connection errors.
type eventHook struct {
	driver *Driver
}

func (h *eventHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil && ctx.Err() == nil {
			h.driver.emit(shardfunk.ConnEvent{Kind: shardfunk.ConnError, Err: errors.Wrapf(err, "dial %s", addr)})
		}
		return conn, err
	}
}

func (h *eventHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.check(ctx, err)
		return err
	}
}

func (h *eventHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		h.check(ctx, err)
		return err
	}
}

func (h *eventHook) check(ctx context.Context, err error) {
	if !isConnectionError(ctx, err) {
		return
	}
	h.driver.emit(shardfunk.ConnEvent{Kind: shardfunk.ConnError, Err: err})
}

func isConnectionError(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, redis.Nil) || isReplyError(err) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, redis.ErrClosed)
}
