package notes

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/skillsenselab/medscribe/internal/credentials"
	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/httpclient"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/observability"
	"github.com/skillsenselab/medscribe/internal/transcription"
)

// noteInstructionTemplate is the fixed instruction sent to the generative
// provider. The transcript is appended below it.
const noteInstructionTemplate = `You are a clinical documentation assistant. Rewrite the dictated transcript below into a structured medical note in markdown with exactly these sections:

## Subjective
## Objective
## Assessment
## Plan

When a procedure or diagnosis is named, state it on its own line as "Diagnosis: <name>" or "Procedure: <name>" inside the Assessment section. Finish the note with a single line starting with "Tags:" followed by up to five comma-separated keywords. Do not invent clinical facts that are not in the transcript.

Transcript:
%s`

// Compiler turns a transcript into a structured note via the generative
// provider, then extracts the procedure type and tags locally.
type Compiler struct {
	resolver   *credentials.Resolver
	transport  transcription.Transport
	model      string
	extractors []Extractor
	log        *logger.Logger
	metrics    *observability.Metrics
}

// NewCompiler creates a compiler. extractors defaults to DefaultExtractors
// when nil; metrics may be nil.
func NewCompiler(resolver *credentials.Resolver, transport transcription.Transport, model string, extractors []Extractor, log *logger.Logger, metrics *observability.Metrics) *Compiler {
	if extractors == nil {
		extractors = DefaultExtractors()
	}
	return &Compiler{
		resolver:   resolver,
		transport:  transport,
		model:      model,
		extractors: extractors,
		log:        log.WithComponent("notes"),
		metrics:    metrics,
	}
}

// generateRequest is the generative provider payload (text parts only).
type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

// generateResponse is the generation response shape.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Compile generates a structured note from the transcript.
func (c *Compiler) Compile(ctx context.Context, transcript string) (*CompiledNote, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.InvalidInput("transcript", "must not be empty")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanNoteCompile)
	defer span.End()

	creds, err := c.creds(ctx)
	if err != nil {
		return nil, err
	}

	payload := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{{Text: fmt.Sprintf(noteInstructionTemplate, transcript)}},
		}},
	}

	resp, err := c.transport.PostGenerative(ctx, creds, c.model, payload)
	if err != nil {
		genErr := classifyGenerationError(err)
		observability.SetSpanError(ctx, genErr)
		if c.metrics != nil {
			c.metrics.RecordNoteGenerated(ctx, "error")
		}
		return nil, genErr
	}

	var parsed generateResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, errors.Generation(0, fmt.Errorf("parse response: %w", err))
	}
	content := ""
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		content = strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	}
	if content == "" {
		return nil, errors.Generation(0, stderrors.New("provider returned no content"))
	}

	note := &CompiledNote{
		Content:       content,
		ProcedureType: extractProcedureType(content, c.extractors),
		Tags:          extractTags(content),
	}
	c.log.Info("note compiled", logger.Fields(
		"chars", len(note.Content),
		"procedure_type", note.ProcedureType,
		"tags", len(note.Tags),
	))
	if c.metrics != nil {
		c.metrics.RecordNoteGenerated(ctx, "ok")
	}
	return note, nil
}

func (c *Compiler) creds(ctx context.Context) (transcription.Credentials, error) {
	key, err := c.resolver.Resolve(ctx, credentials.KeyGeminiAPIKey)
	if err != nil {
		return transcription.Credentials{}, err
	}
	baseURL, err := c.resolver.Resolve(ctx, credentials.KeyGeminiBaseURL)
	if err != nil {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return transcription.Credentials{APIKey: key, BaseURL: baseURL}, nil
}

// classifyGenerationError maps transport failures to a GenerationError,
// carrying the provider status code for caller-facing messaging.
func classifyGenerationError(err error) error {
	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) {
		return errors.Generation(httpErr.StatusCode, err)
	}
	return errors.Generation(0, err)
}
