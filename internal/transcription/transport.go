package transcription

import (
	"context"
	"net/http"
	"time"

	"github.com/skillsenselab/medscribe/internal/httpclient"
)

// Transport carries provider calls over the wire. NativeTransport talks to
// the providers directly; ProxyTransport routes the same logical calls
// through the same-origin proxy so browser deployments never hold the
// provider key in a cross-origin request.
type Transport interface {
	// PostSpeech sends a multipart transcription request to the speech
	// provider.
	PostSpeech(ctx context.Context, creds Credentials, body *httpclient.MultipartBody) (*httpclient.Response, error)
	// PostGenerative sends a JSON generation request to the generative
	// provider for the given model.
	PostGenerative(ctx context.Context, creds Credentials, model string, payload any) (*httpclient.Response, error)
}

const (
	nativeTimeout = 30 * time.Second
	proxyTimeout  = 60 * time.Second
)

// NativeTransport dispatches directly to provider endpoints.
type NativeTransport struct{}

// NewNativeTransport creates a direct transport.
func NewNativeTransport() *NativeTransport { return &NativeTransport{} }

// PostSpeech POSTs the multipart body to {base}/audio/transcriptions with a
// Bearer key.
func (t *NativeTransport) PostSpeech(ctx context.Context, creds Credentials, body *httpclient.MultipartBody) (*httpclient.Response, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: creds.BaseURL,
		Timeout: nativeTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/audio/transcriptions",
		Body:   body,
		Auth:   httpclient.BearerAuth(creds.APIKey),
	})
}

// PostGenerative POSTs the JSON payload to {base}/models/{model}:generateContent
// with the provider's key header.
func (t *NativeTransport) PostGenerative(ctx context.Context, creds Credentials, model string, payload any) (*httpclient.Response, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: creds.BaseURL,
		Timeout: nativeTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/models/" + model + ":generateContent",
		Body:   payload,
		Auth:   httpclient.APIKeyAuth(creds.APIKey, "x-goog-api-key"),
	})
}

// ProxyTransport dispatches through the same-origin proxy. The key travels
// in the x-api-key header and is attached to the upstream call server-side.
type ProxyTransport struct {
	// Origin is the proxy base URL (same origin as the web app).
	Origin string
}

// NewProxyTransport creates a transport routed through origin.
func NewProxyTransport(origin string) *ProxyTransport {
	return &ProxyTransport{Origin: origin}
}

// PostSpeech relays the multipart body through POST /api/whisper.
func (t *ProxyTransport) PostSpeech(ctx context.Context, creds Credentials, body *httpclient.MultipartBody) (*httpclient.Response, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: t.Origin,
		Timeout: proxyTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/whisper",
		Body:   body,
		Auth:   httpclient.APIKeyAuth(creds.APIKey, "x-api-key"),
	})
}

// PostGenerative relays the JSON payload through POST /api/gemini with the
// model as a query parameter.
func (t *ProxyTransport) PostGenerative(ctx context.Context, creds Credentials, model string, payload any) (*httpclient.Response, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: t.Origin,
		Timeout: proxyTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/gemini",
		Query:  map[string]string{"model": model},
		Body:   payload,
		Auth:   httpclient.APIKeyAuth(creds.APIKey, "x-api-key"),
	})
}
