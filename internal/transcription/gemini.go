package transcription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skillsenselab/medscribe/internal/audio"
	"github.com/skillsenselab/medscribe/internal/credentials"
	"github.com/skillsenselab/medscribe/internal/errors"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const geminiTranscribePrompt = "Transcribe this audio recording verbatim. " +
	"Return only the spoken words, with sentence punctuation, and nothing else."

// GeminiProvider is the fallback generative provider. The recording travels
// inline as base64 in a JSON generation request.
type GeminiProvider struct {
	resolver  *credentials.Resolver
	transport Transport
	model     string
	language  string
}

// NewGeminiProvider creates the generative fallback provider.
func NewGeminiProvider(resolver *credentials.Resolver, transport Transport, model, language string) *GeminiProvider {
	return &GeminiProvider{
		resolver:  resolver,
		transport: transport,
		model:     model,
		language:  language,
	}
}

// ID implements Provider.
func (p *GeminiProvider) ID() string { return "gemini" }

// Credentials resolves the API key and endpoint. A missing base URL falls
// back to the public endpoint; a missing key is an error.
func (p *GeminiProvider) Credentials(ctx context.Context) (Credentials, error) {
	key, err := p.resolver.Resolve(ctx, credentials.KeyGeminiAPIKey)
	if err != nil {
		return Credentials{}, err
	}
	baseURL, err := p.resolver.Resolve(ctx, credentials.KeyGeminiBaseURL)
	if err != nil {
		baseURL = defaultGeminiBaseURL
	}
	return Credentials{APIKey: key, BaseURL: baseURL}, nil
}

// geminiRequest is the generation request payload.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// geminiResponse is the generation response shape.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Transcribe implements Provider.
func (p *GeminiProvider) Transcribe(ctx context.Context, h *audio.Handle, creds Credentials) (*Result, error) {
	data, err := h.Bytes()
	if err != nil {
		return nil, errors.Provider(p.ID(), err)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: geminiTranscribePrompt},
				{InlineData: &geminiInlineData{
					MIMEType: h.MIMEType(),
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}

	resp, err := p.transport.PostGenerative(ctx, creds, p.model, payload)
	if err != nil {
		return nil, errors.Provider(p.ID(), err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, errors.Provider(p.ID(), fmt.Errorf("parse response: %w", err))
	}

	text := ""
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		text = strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	}
	return normalize(p.ID(), text, p.language, secondaryConfidence, 0, h.Size(), nil), nil
}
