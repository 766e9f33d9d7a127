package transcription

import "strings"

// Fixed confidence scores. The providers do not report confidence for these
// request shapes, so the normalized result carries a per-provider constant.
const (
	primaryConfidence   = 0.9
	secondaryConfidence = 0.85
)

// estimateDuration approximates the audio duration in seconds from its size
// in bytes. Used when the provider does not report a duration.
func estimateDuration(sizeBytes int64) float64 {
	return float64(sizeBytes) / 2000
}

// synthesizeSegments splits text into sentence segments and distributes the
// duration evenly across them. Zero sentences yields zero segments.
func synthesizeSegments(text string, duration float64) []Segment {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	per := duration / float64(len(sentences))
	segments := make([]Segment, len(sentences))
	for i, sentence := range sentences {
		segments[i] = Segment{
			Index: i,
			Text:  sentence,
			Start: float64(i) * per,
			End:   float64(i+1) * per,
		}
	}
	return segments
}

// splitSentences splits on sentence-ending punctuation, keeping the
// punctuation with the sentence. Whitespace-only fragments are dropped.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// normalize builds a Result with the fixed confidence for the provider,
// estimating duration and synthesizing segments when the provider reported
// neither.
func normalize(provider, text, language string, confidence, reportedDuration float64, audioSize int64, reported []Segment) *Result {
	duration := reportedDuration
	if duration <= 0 {
		duration = estimateDuration(audioSize)
	}
	segments := reported
	if len(segments) == 0 {
		segments = synthesizeSegments(text, duration)
	}
	return &Result{
		Text:       text,
		Provider:   provider,
		Confidence: confidence,
		Language:   language,
		Duration:   duration,
		Segments:   segments,
	}
}
