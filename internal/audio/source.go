package audio

// Source produces 16-bit PCM samples from a capture device. Implementations
// deliver samples through the callback passed to Start until Stop is called.
type Source interface {
	// Start begins capture, invoking onSamples from the capture thread.
	Start(onSamples func(samples []int16)) error
	// Stop ends capture. The callback is not invoked after Stop returns.
	Stop() error
	// Close releases device resources. The source is unusable afterwards.
	Close() error
}
