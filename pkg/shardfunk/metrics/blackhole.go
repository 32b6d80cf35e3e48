package metrics

// NewBlackHoleSink creates a metrics sink that discards all metrics
func NewBlackHoleSink() Sink {
	return &blackHoleSink{}
}

type blackHoleSink struct {
}

func (b *blackHoleSink) SetShardCount(shards int) {
	// do nothing
}

func (b *blackHoleSink) LogRequest(address, command string) {
	// do nothing
}

func (b *blackHoleSink) LogFailure(address, command, reason string) {
	// do nothing
}

func (b *blackHoleSink) LogFailover(address string) {
	// do nothing
}
