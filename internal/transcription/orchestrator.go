package transcription

import (
	"context"
	"os"
	"time"

	"github.com/skillsenselab/medscribe/internal/audio"
	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/httpclient"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/observability"
)

// Orchestrator runs the provider fallback sequence: the primary speech
// provider first, then the generative fallback. Attempts are strictly
// sequential and a success on either provider returns immediately.
type Orchestrator struct {
	primary   Provider
	secondary Provider
	log       *logger.Logger
	metrics   *observability.Metrics

	// rateLimitDelay is the pause inserted before the fallback attempt when
	// the primary was rate limited.
	rateLimitDelay time.Duration
}

// NewOrchestrator creates an orchestrator. metrics may be nil, in which
// case metric recording is skipped.
func NewOrchestrator(primary, secondary Provider, log *logger.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		primary:        primary,
		secondary:      secondary,
		log:            log.WithComponent("transcription"),
		metrics:        metrics,
		rateLimitDelay: time.Second,
	}
}

// Transcribe transcribes the recording, falling back to the secondary
// provider when the primary cannot serve. The handle is released on every
// exit path.
func (o *Orchestrator) Transcribe(ctx context.Context, h *audio.Handle) (*Result, error) {
	if h == nil {
		return nil, errors.InvalidInput("handle", "no recording to transcribe")
	}
	defer func() {
		if err := h.Release(); err != nil {
			o.log.Warn("release recording failed", logger.Fields("error", err.Error()))
		}
	}()

	if path := h.Path(); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.InvalidInput("handle", "recording file does not exist")
		}
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrAudioBytes, h.Size())

	// Primary: a credential resolution failure skips the provider without
	// spending a network attempt.
	var primaryErr error
	creds, err := o.primary.Credentials(ctx)
	if err != nil {
		primaryErr = err
		o.log.Warn("primary credentials unavailable, skipping to fallback", logger.Fields(
			logger.FieldProvider, o.primary.ID(),
			"error", err.Error(),
		))
	} else {
		result, err := o.attempt(ctx, o.primary, h, creds)
		if err == nil {
			return result, nil
		}
		primaryErr = err
		if httpclient.IsRateLimit(err) {
			o.log.Warn("primary rate limited, delaying fallback", logger.Fields(
				logger.FieldProvider, o.primary.ID(),
				"delay", o.rateLimitDelay.String(),
			))
			select {
			case <-time.After(o.rateLimitDelay):
			case <-ctx.Done():
				return nil, errors.Transcription(primaryErr, ctx.Err())
			}
		}
	}

	if o.metrics != nil {
		o.metrics.RecordFallback(ctx, fallbackReason(primaryErr))
	}

	// Secondary: a credential resolution failure here is terminal and the
	// composite error carries both causes.
	creds, err = o.secondary.Credentials(ctx)
	if err != nil {
		composite := errors.Transcription(primaryErr, err)
		observability.SetSpanError(ctx, composite)
		return nil, composite
	}

	result, err := o.attempt(ctx, o.secondary, h, creds)
	if err == nil {
		return result, nil
	}
	composite := errors.Transcription(primaryErr, err)
	observability.SetSpanError(ctx, composite)
	return nil, composite
}

// attempt dispatches a single provider and records the outcome.
func (o *Orchestrator) attempt(ctx context.Context, p Provider, h *audio.Handle, creds Credentials) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanProviderAttempt)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrProvider, p.ID())

	start := time.Now()
	result, err := p.Transcribe(ctx, h, creds)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
		o.log.Warn("provider attempt failed", logger.Fields(
			logger.FieldProvider, p.ID(),
			logger.FieldDuration, elapsed.String(),
			"error", err.Error(),
		))
	} else {
		o.log.Info("transcription succeeded", logger.Fields(
			logger.FieldProvider, p.ID(),
			logger.FieldDuration, elapsed.String(),
			"chars", len(result.Text),
		))
	}
	if o.metrics != nil {
		o.metrics.RecordTranscription(ctx, p.ID(), status, elapsed)
	}
	return result, err
}

func fallbackReason(primaryErr error) string {
	switch {
	case primaryErr == nil:
		return "unknown"
	case httpclient.IsRateLimit(primaryErr):
		return "rate_limit"
	case errors.HasCode(primaryErr, errors.ErrCodeConfiguration):
		return "credentials"
	default:
		return "provider_error"
	}
}
