package transcription

import (
	"context"

	"github.com/skillsenselab/medscribe/internal/audio"
)

// Credentials are the resolved secrets a provider needs to dispatch.
type Credentials struct {
	// APIKey authenticates against the provider.
	APIKey string
	// BaseURL is the provider endpoint root.
	BaseURL string
}

// Provider transcribes a recording. Credential resolution is a separate
// step from dispatch: an orchestrator that cannot resolve credentials for
// a provider skips it without spending a network attempt.
type Provider interface {
	// ID returns a short provider name for logs and metrics.
	ID() string
	// Credentials resolves the secrets needed to dispatch.
	Credentials(ctx context.Context) (Credentials, error)
	// Transcribe dispatches the recording and returns a normalized result.
	Transcribe(ctx context.Context, h *audio.Handle, creds Credentials) (*Result, error)
}
