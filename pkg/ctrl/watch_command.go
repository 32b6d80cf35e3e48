package ctrl

import (
	"fmt"
	"net"
	"net/http"

	gotoolbox "github.com/lab5e/gotoolbox/toolbox"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// WatchCommand keeps the router running and logs all errors
type WatchCommand struct {
	MetricsEndpoint string `kong:"help='Serve Prometheus metrics on this address, f.e. :9100'"`
}

// Run executes the watch operation. It returns when the process is
// interrupted.
func (c *WatchCommand) Run(args *RunContext) error {
	if c.MetricsEndpoint != "" {
		listener, err := net.Listen("tcp", c.MetricsEndpoint)
		if err != nil {
			fmt.Fprintf(args.errOut, "Unable to listen on %s: %v\n", c.MetricsEndpoint, err)
			return errStd
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Handler: mux}
		go srv.Serve(listener)
		defer srv.Close()
		logrus.WithField("endpoint", listener.Addr().String()).Info("Serving metrics")
	}

	args.params.Router.UsePing = true
	router, err := args.Router()
	if err != nil {
		fmt.Fprintf(args.errOut, "Unable to create router: %v\n", err)
		return errStd
	}

	events := router.Observe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			logrus.WithError(ev.Err).WithFields(logrus.Fields{
				"address": ev.Address,
				"command": ev.Command,
				"shard":   ev.Shard,
				"primary": ev.Primary,
			}).Warning("Backend error")
		}
	}()

	logrus.WithField("shards", router.ShardCount()).Info("Watching connections. Press Ctrl+C to stop")
	gotoolbox.WaitForSignal()

	err = router.Close()
	<-done
	if err != nil {
		logrus.WithError(err).Warning("Error closing connections")
	}
	return nil
}
