package testutil

// DefaultRunID is used by FixedIDGenerator when no ID is given.
const DefaultRunID = "test-run-default"

// FixedIDGenerator returns the same run ID on every call, so golden reports
// are byte-identical across test runs.
//
// Unlike engine.FixedGenerator, which hands out a list of IDs once each,
// this generator never runs out.
//
// Thread-safety: FixedIDGenerator is immutable and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id. An empty id means
// DefaultRunID.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
