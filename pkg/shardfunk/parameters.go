package shardfunk

import (
	"time"

	"github.com/lab5e/shardfunk/pkg/shardfunk/breaker"
	"github.com/lab5e/shardfunk/pkg/shardfunk/metrics"
)

// Parameters is the router configuration. The struct uses annotations from
// Kong (https://github.com/alecthomas/kong) so it can be embedded in the
// command line parameters for a service. Use DefaultParameters when the
// struct isn't populated by Kong.
type Parameters struct {
	Name         string             `kong:"help='Router name for logs and metrics',default='shardfunk'"`
	UsePing      bool               `kong:"help='Send keep-alive pings to all backend connections',default='true'"`
	ReadTimeout  time.Duration      `kong:"help='Deadline for read-only commands (0 = none)',default='0s'"`
	WriteTimeout time.Duration      `kong:"help='Deadline for mutating commands (0 = none)',default='0s'"`
	Metrics      string             `kong:"help='Metrics sink to use',enum='blackhole,prometheus',default='blackhole'"`
	Breaker      breaker.Parameters `kong:"embed,prefix='breaker-'"`
}

// DefaultParameters returns the same defaults as the Kong annotations
func DefaultParameters() Parameters {
	p := Parameters{
		Name:    "shardfunk",
		UsePing: true,
		Metrics: metrics.NoSink,
		Breaker: breaker.DefaultParameters(),
	}
	p.Breaker.Enabled = false
	return p
}
