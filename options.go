package kunquat

import "github.com/cbegin/kunquat-go/internal/master"

// Options configures a Handle's render graph: voice pool capacity,
// output sample rate, render chunk size, and the master RNG seed that
// makes a fixed configuration reproducible (spec.md §8 property 6).
// This follows the teacher's own per-engine DefaultParams()/PlayerOption
// convention rather than a bag of setters.
type Options struct {
	MaxVoices  int
	AudioRate  int32
	BufferSize int
	Seed       int64
}

// DefaultOptions returns the Options a Handle is built with when no
// Option overrides them.
func DefaultOptions() Options {
	return Options{
		MaxVoices:  master.DefaultVoices,
		AudioRate:  44100,
		BufferSize: 1024,
		Seed:       1,
	}
}

// Option mutates an Options value at Handle construction time.
type Option func(*Options)

// WithMaxVoices sets the voice pool capacity (P in spec.md §3).
func WithMaxVoices(n int) Option {
	return func(o *Options) { o.MaxVoices = n }
}

// WithAudioRate sets the initial output sample rate in Hz.
func WithAudioRate(rate int32) Option {
	return func(o *Options) { o.AudioRate = rate }
}

// WithBufferSize sets the initial render chunk size in frames.
func WithBufferSize(n int) Option {
	return func(o *Options) { o.BufferSize = n }
}

// WithSeed sets the master RNG seed channel and voice RNGs are
// deterministically derived from.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}
