package transcription

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/skillsenselab/medscribe/internal/audio"
	"github.com/skillsenselab/medscribe/internal/credentials"
	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/httpclient"
)

const defaultWhisperBaseURL = "https://api.openai.com/v1"

// WhisperProvider is the primary speech provider. It POSTs the recording as
// multipart form data to the transcriptions endpoint.
type WhisperProvider struct {
	resolver  *credentials.Resolver
	transport Transport
	model     string
	language  string
}

// NewWhisperProvider creates the speech provider.
func NewWhisperProvider(resolver *credentials.Resolver, transport Transport, model, language string) *WhisperProvider {
	return &WhisperProvider{
		resolver:  resolver,
		transport: transport,
		model:     model,
		language:  language,
	}
}

// ID implements Provider.
func (p *WhisperProvider) ID() string { return "whisper" }

// Credentials resolves the API key and endpoint. A missing base URL falls
// back to the public endpoint; a missing key is an error.
func (p *WhisperProvider) Credentials(ctx context.Context) (Credentials, error) {
	key, err := p.resolver.Resolve(ctx, credentials.KeyOpenAIAPIKey)
	if err != nil {
		return Credentials{}, err
	}
	baseURL, err := p.resolver.Resolve(ctx, credentials.KeyOpenAIBaseURL)
	if err != nil {
		baseURL = defaultWhisperBaseURL
	}
	return Credentials{APIKey: key, BaseURL: baseURL}, nil
}

// whisperResponse is the provider's transcription response shape.
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe implements Provider.
func (p *WhisperProvider) Transcribe(ctx context.Context, h *audio.Handle, creds Credentials) (*Result, error) {
	data, err := h.Bytes()
	if err != nil {
		return nil, errors.Provider(p.ID(), err)
	}

	body := buildSpeechBody(h, data, p.model, p.language)
	resp, err := p.transport.PostSpeech(ctx, creds, body)
	if err != nil {
		return nil, errors.Provider(p.ID(), err)
	}

	var parsed whisperResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, errors.Provider(p.ID(), fmt.Errorf("parse response: %w", err))
	}

	language := parsed.Language
	if language == "" {
		language = p.language
	}
	var reported []Segment
	for i, s := range parsed.Segments {
		reported = append(reported, Segment{Index: i, Text: s.Text, Start: s.Start, End: s.End})
	}
	return normalize(p.ID(), parsed.Text, language, primaryConfidence, parsed.Duration, h.Size(), reported), nil
}

// buildSpeechBody assembles the multipart transcription request.
func buildSpeechBody(h *audio.Handle, data []byte, model, language string) *httpclient.MultipartBody {
	fields := map[string]string{"model": model}
	if language != "" {
		fields["language"] = language
	}
	return &httpclient.MultipartBody{
		Fields: fields,
		Files: []httpclient.FileField{{
			FieldName:   "file",
			FileName:    h.FileName(),
			ContentType: h.MIMEType(),
			Data:        data,
		}},
	}
}
