package breaker

// emaCalculator calculates the exponential moving average (ema) for a
// series of samples. The breaker feeds it 1 for failures and 0 for passes so
// the average is the recent failure rate. The type is not thread safe.
type emaCalculator struct {
	m     float64
	ema   float64
	count int
}

// newEMACalculator creates a new calculator with a span of n samples, ie
// the weight of a new sample is 2/(n+1).
func newEMACalculator(n int) *emaCalculator {
	if n < 1 {
		n = 1
	}
	return &emaCalculator{
		m:     2.0 / (float64(n) + 1.0),
		ema:   0.0,
		count: 0,
	}
}

// Add adds a new sample and returns the new moving average. The first
// samples use a growing weight so the average converges without a bias
// towards the initial value.
func (e *emaCalculator) Add(x float64) float64 {
	e.count++
	m := e.m
	if cm := 1.0 / float64(e.count); cm > m {
		m = cm
	}
	e.ema = (x-e.ema)*m + e.ema
	return e.ema
}

// Average returns the current average
func (e *emaCalculator) Average() float64 {
	return e.ema
}

// Count returns the number of samples since the last reset
func (e *emaCalculator) Count() int {
	return e.count
}

// Reset clears the samples
func (e *emaCalculator) Reset() {
	e.ema = 0.0
	e.count = 0
}
