package accumulator

// MaxCardinality is the number of observations kept per accumulator. Older
// observations are evicted once the ring is full.
const MaxCardinality = 366
