package metrics

// Sink is the metrics sink for the router. Implement this interface to write
// to other kinds of systems.
type Sink interface {
	// SetShardCount reports the number of shards in the table
	SetShardCount(shards int)

	// LogRequest counts a call dispatched to a backend connection
	LogRequest(address, command string)

	// LogFailure counts a failed call. The reason is one of the Reason constants.
	LogFailure(address, command, reason string)

	// LogFailover counts a cascade step away from a failed connection
	LogFailover(address string)
}

// Failure reasons
const (
	ReasonBackend     = "backend"
	ReasonTimeout     = "timeout"
	ReasonBreakerOpen = "breaker"
)

// The list of supported metrics
const (
	PrometheusSink = "prometheus"
	NoSink         = "blackhole"
)

// NewSinkFromString returns a named sink
func NewSinkFromString(name string, routerID string) Sink {
	switch name {
	case PrometheusSink:
		return NewPrometheusSink(routerID)
	default:
		return NewBlackHoleSink()
	}
}
