package testutil

// FixedRunIDGenerator returns the same run ID every time, so repeated runs
// of a scenario produce byte-identical traces.
//
// Unlike engine.FixedGenerator, which hands out IDs in sequence and panics
// when exhausted, this generator never runs out. It is stateless and safe
// for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id. An empty id becomes
// "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID. Implements engine.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
