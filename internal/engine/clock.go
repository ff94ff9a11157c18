package engine

// Clock is a monotonic logical clock for event ordering.
//
// Every delivered event is stamped with a strictly increasing seq number.
// Seq values are never derived from wall-clock time, so a replayed
// simulation stamps identical values.
//
// Clock is not safe for concurrent use; each Engine owns one.
type Clock struct {
	seq int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last value handed out without incrementing.
func (c *Clock) Current() int64 {
	return c.seq
}

// Reset rewinds the clock to 0.
func (c *Clock) Reset() {
	c.seq = 0
}
