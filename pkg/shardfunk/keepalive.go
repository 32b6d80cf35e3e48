package shardfunk

import (
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// pingInterval is the time between keep-alive pings on a connection
var pingInterval = 150 * time.Second

// watchConnection subscribes to lifecycle events if the driver reports them
func (t *shardTable) watchConnection(set *ReplicaSet, c *Connection) {
	n, ok := c.driver.(Notifier)
	if !ok {
		return
	}
	n.Notify(func(ev ConnEvent) {
		fields := logrus.Fields{
			"address": c.address,
			"shard":   set.index,
			"primary": c.primary,
		}
		switch ev.Kind {
		case ConnEnd:
			t.logger.WithFields(fields).Info("Connection ended")
			t.observer.emit(ErrorEvent{
				Address: c.address,
				Command: ConnEnd,
				Shard:   set.index,
				Primary: c.primary,
				Err:     errors.Newf("connection to %s ended", c.address),
				Time:    time.Now(),
			})
		default:
			t.logger.WithFields(fields).WithError(ev.Err).Warning("Connection error")
			t.observer.emit(ErrorEvent{
				Address: c.address,
				Command: ConnError,
				Shard:   set.index,
				Primary: c.primary,
				Err:     ev.Err,
				Time:    time.Now(),
			})
		}
	})
}

// startPing sends a ping on the connection every pingInterval until the
// table is closed. The first ping is sent at a random offset so the
// connections don't ping in lockstep.
func (t *shardTable) startPing(set *ReplicaSet, c *Connection) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		initial := time.Duration(rand.Int63n(int64(pingInterval) + 1))
		timer := time.NewTimer(initial)
		defer timer.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-timer.C:
				t.ping(set, c)
				timer.Reset(pingInterval)
			}
		}
	}()
}

func (t *shardTable) ping(set *ReplicaSet, c *Connection) {
	c.driver.Do("ping", nil, func(_ interface{}, err error) {
		if err == nil {
			return
		}
		t.logger.WithError(err).WithFields(logrus.Fields{
			"address": c.address,
			"shard":   set.index,
		}).Warning("Ping failed")
		t.observer.emit(ErrorEvent{
			Address: c.address,
			Command: "ping",
			Shard:   set.index,
			Primary: c.primary,
			Err:     backendError(c, "ping", err),
			Time:    time.Now(),
		})
	})
}
