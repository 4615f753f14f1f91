package ports

// RNG provides the injected randomness behind candidate generation and
// simulated testing. The engine is fully deterministic given a fixed
// implementation; production sources must be reproducible for a fixed seed.
type RNG interface {
	// Float64 returns a uniform draw from [0, 1).
	Float64() float64

	// Uniform returns a uniform draw from [min, max).
	Uniform(min, max float64) float64

	// IntN returns a uniform draw from [0, n). Panics if n <= 0.
	IntN(n int) int
}
