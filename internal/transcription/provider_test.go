package transcription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/skillsenselab/medscribe/internal/audio"
	"github.com/skillsenselab/medscribe/internal/credentials"
	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/logger"
)

func resolverWith(values map[string]string) *credentials.Resolver {
	return credentials.NewResolver("native", nil, credentials.Config{Values: values}, logger.NewDefault("test"))
}

func TestWhisperProviderTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		data, _ := io.ReadAll(f)
		f.Close()
		if string(data) != "audio-bytes" {
			t.Errorf("file content = %q", string(data))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":     "Patient presents well. Follow up in two weeks.",
			"language": "en",
			"duration": 12.0,
		})
	}))
	defer srv.Close()

	resolver := resolverWith(map[string]string{
		credentials.KeyOpenAIAPIKey:  "sk-test",
		credentials.KeyOpenAIBaseURL: srv.URL,
	})
	p := NewWhisperProvider(resolver, NewNativeTransport(), "whisper-1", "en")

	creds, err := p.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	h := audio.NewBlobHandle("take.wav", []byte("audio-bytes"))
	result, err := p.Transcribe(context.Background(), h, creds)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Provider != "whisper" {
		t.Errorf("provider = %q", result.Provider)
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", result.Confidence)
	}
	if result.Duration != 12.0 {
		t.Errorf("duration = %v, want reported 12.0", result.Duration)
	}
	if len(result.Segments) != 2 {
		t.Errorf("segments = %d, want 2 synthesized sentences", len(result.Segments))
	}
}

func TestWhisperProviderMissingKey(t *testing.T) {
	p := NewWhisperProvider(resolverWith(nil), NewNativeTransport(), "whisper-1", "en")
	_, err := p.Credentials(context.Background())
	if !errors.HasCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("error = %v, want CONFIGURATION_ERROR", err)
	}
}

func TestWhisperProviderDefaultBaseURL(t *testing.T) {
	p := NewWhisperProvider(resolverWith(map[string]string{
		credentials.KeyOpenAIAPIKey: "sk-test",
	}), NewNativeTransport(), "whisper-1", "en")
	creds, err := p.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.BaseURL != defaultWhisperBaseURL {
		t.Errorf("base URL = %q", creds.BaseURL)
	}
}

func TestWhisperProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	resolver := resolverWith(map[string]string{
		credentials.KeyOpenAIAPIKey:  "sk-test",
		credentials.KeyOpenAIBaseURL: srv.URL,
	})
	p := NewWhisperProvider(resolver, NewNativeTransport(), "whisper-1", "en")
	creds, _ := p.Credentials(context.Background())

	_, err := p.Transcribe(context.Background(), audio.NewBlobHandle("take.wav", []byte("x")), creds)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.HasCode(err, errors.ErrCodeProvider) {
		t.Errorf("code: %v", err)
	}
}

func TestGeminiProviderTranscribe(t *testing.T) {
	audioData := []byte("inline-audio")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-1.5-flash:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "gm-test" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Fatalf("unexpected payload shape: %+v", req)
		}
		inline := req.Contents[0].Parts[1].InlineData
		if inline == nil {
			t.Fatal("missing inline_data part")
		}
		if inline.MIMEType != "audio/wav" {
			t.Errorf("mime = %q", inline.MIMEType)
		}
		if inline.Data != base64.StdEncoding.EncodeToString(audioData) {
			t.Error("inline data is not the base64 recording")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "Transcribed text here."}},
				},
			}},
		})
	}))
	defer srv.Close()

	resolver := resolverWith(map[string]string{
		credentials.KeyGeminiAPIKey:  "gm-test",
		credentials.KeyGeminiBaseURL: srv.URL,
	})
	p := NewGeminiProvider(resolver, NewNativeTransport(), "gemini-1.5-flash", "en")

	creds, err := p.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	h := audio.NewBlobHandle("take.wav", audioData)
	result, err := p.Transcribe(context.Background(), h, creds)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "Transcribed text here." {
		t.Errorf("text = %q", result.Text)
	}
	if result.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", result.Confidence)
	}
	wantDuration := float64(len(audioData)) / 2000
	if result.Duration != wantDuration {
		t.Errorf("duration = %v, want %v", result.Duration, wantDuration)
	}
}

func TestGeminiProviderEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	resolver := resolverWith(map[string]string{
		credentials.KeyGeminiAPIKey:  "gm-test",
		credentials.KeyGeminiBaseURL: srv.URL,
	})
	p := NewGeminiProvider(resolver, NewNativeTransport(), "gemini-1.5-flash", "en")
	creds, _ := p.Credentials(context.Background())

	result, err := p.Transcribe(context.Background(), audio.NewBlobHandle("take.wav", []byte("x")), creds)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "" {
		t.Errorf("text = %q, want empty", result.Text)
	}
}

func TestProxyTransportRoutes(t *testing.T) {
	var sawWhisper, sawGemini bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "proxied-key" {
			t.Errorf("x-api-key = %q", got)
		}
		switch r.URL.Path {
		case "/api/whisper":
			sawWhisper = true
			w.Write([]byte(`{"text":"ok"}`))
		case "/api/gemini":
			sawGemini = true
			if got := r.URL.Query().Get("model"); got != "gemini-1.5-flash" {
				t.Errorf("model query = %q", got)
			}
			w.Write([]byte(`{"candidates":[]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	tr := NewProxyTransport(srv.URL)
	creds := Credentials{APIKey: "proxied-key", BaseURL: "ignored"}

	if _, err := tr.PostSpeech(context.Background(), creds, buildSpeechBody(audio.NewBlobHandle("t.wav", []byte("x")), []byte("x"), "whisper-1", "en")); err != nil {
		t.Fatalf("PostSpeech: %v", err)
	}
	if _, err := tr.PostGenerative(context.Background(), creds, "gemini-1.5-flash", map[string]string{"a": "b"}); err != nil {
		t.Fatalf("PostGenerative: %v", err)
	}
	if !sawWhisper || !sawGemini {
		t.Errorf("routes hit: whisper=%v gemini=%v", sawWhisper, sawGemini)
	}
}
