package engine

// Cycle describes a repeating network state: the state after press
// Start+Length equals the state after press Start, so every later press
// repeats presses Start+1..Start+Length.
type Cycle struct {
	Start  int64 `json:"start"`
	Length int64 `json:"length"`
}

// Reduce maps press index n to the smallest press index with the same
// network state.
func (c Cycle) Reduce(n int64) int64 {
	if n < c.Start || c.Length == 0 {
		return n
	}
	return c.Start + (n-c.Start)%c.Length
}

// CycleDetector remembers the press index after which each network state
// was first seen.
//
// States are compared as raw packed vectors (Network.StateVector), so a
// reported repeat is exact, never a hash collision. Memory grows by one
// vector per observed press; callers bound it with a QuotaEnforcer.
//
// CycleDetector is not safe for concurrent use.
type CycleDetector struct {
	history map[string]int64
}

// NewCycleDetector creates a new cycle detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{
		history: make(map[string]int64),
	}
}

// Observe records state as seen after press. If the state was seen before,
// it returns the cycle it closes and true, and records nothing.
func (c *CycleDetector) Observe(state []byte, press int64) (Cycle, bool) {
	key := string(state)
	if first, ok := c.history[key]; ok {
		return Cycle{Start: first, Length: press - first}, true
	}
	c.history[key] = press
	return Cycle{}, false
}

// HistorySize returns the number of distinct states recorded.
func (c *CycleDetector) HistorySize() int {
	return len(c.history)
}
