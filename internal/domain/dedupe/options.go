package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithNormalizer replaces the key normalizer. A nil normalizer compares
// keys byte for byte.
func WithNormalizer(fn func(string) string) Option {
	return func(d *inMemoryDeduper) {
		d.normalize = fn
	}
}

// WithCapacity presizes the seen set.
func WithCapacity(n int) Option {
	return func(d *inMemoryDeduper) {
		if n > 0 {
			d.capacity = n
		}
	}
}
