package transcription

import "time"

// Result is a normalized transcription, independent of which provider
// produced it.
type Result struct {
	// Text is the full transcript.
	Text string `json:"text"`
	// Provider identifies the provider that produced the transcript.
	Provider string `json:"provider"`
	// Confidence is a fixed per-provider confidence score.
	Confidence float64 `json:"confidence"`
	// Language is the transcript language code.
	Language string `json:"language,omitempty"`
	// Duration is the audio duration in seconds. Estimated from the audio
	// size when the provider does not report it.
	Duration float64 `json:"duration"`
	// Segments are timed portions of the transcript. Synthesized when the
	// provider does not report them.
	Segments []Segment `json:"segments,omitempty"`
}

// Segment is a timed portion of a transcript.
type Segment struct {
	// Index is the zero-based segment position.
	Index int `json:"index"`
	// Text is the segment text.
	Text string `json:"text"`
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
}

// Attempt records the outcome of a single provider dispatch.
type Attempt struct {
	// Provider identifies the attempted provider.
	Provider string
	// Err is the dispatch failure, nil on success.
	Err error
	// Elapsed is how long the attempt took.
	Elapsed time.Duration
}
