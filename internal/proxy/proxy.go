package proxy

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/medscribe/internal/httpclient"
	"github.com/skillsenselab/medscribe/internal/logger"
)

const (
	defaultWhisperUpstream = "https://api.openai.com/v1"
	defaultGeminiUpstream  = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel     = "gemini-1.5-flash"

	// Proxied transcription rides the browser's 60 second budget, so the
	// upstream leg gets the full window.
	upstreamTimeout = 60 * time.Second
)

// Handler relays browser transcription calls to the providers. The client
// sends its key in the x-api-key header; the relay attaches it upstream in
// the provider's own header so the key never rides a cross-origin request.
type Handler struct {
	// WhisperUpstream is the speech provider base URL.
	WhisperUpstream string
	// GeminiUpstream is the generative provider base URL.
	GeminiUpstream string
	// DefaultModel is used when the model query parameter is absent.
	DefaultModel string

	log *logger.Logger
}

// NewHandler creates a relay handler with public provider endpoints as
// defaults.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{
		WhisperUpstream: defaultWhisperUpstream,
		GeminiUpstream:  defaultGeminiUpstream,
		DefaultModel:    defaultGeminiModel,
		log:             log.WithComponent("proxy"),
	}
}

// Register mounts the relay routes on the engine.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/api/whisper", h.RelayWhisper)
	r.POST("/api/gemini", h.RelayGemini)
}

// RelayWhisper forwards the multipart transcription request to the speech
// provider, attaching the client key as a Bearer token.
func (h *Handler) RelayWhisper(c *gin.Context) {
	apiKey := c.GetHeader("x-api-key")
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing x-api-key header", "status": http.StatusUnauthorized})
		return
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL: h.WhisperUpstream,
		Timeout: upstreamTimeout,
	})
	if err != nil {
		h.relayFailure(c, err)
		return
	}

	resp, err := client.Do(c.Request.Context(), &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/audio/transcriptions",
		Headers: map[string]string{
			"Content-Type": c.GetHeader("Content-Type"),
		},
		Body: c.Request.Body,
		Auth: httpclient.BearerAuth(apiKey),
	})
	h.relay(c, resp, err)
}

// RelayGemini forwards the JSON generation request to the generative
// provider. The model query parameter selects the target model path.
func (h *Handler) RelayGemini(c *gin.Context) {
	apiKey := c.GetHeader("x-api-key")
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing x-api-key header", "status": http.StatusUnauthorized})
		return
	}

	model := c.Query("model")
	if model == "" {
		model = h.DefaultModel
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body", "status": http.StatusBadRequest})
		return
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL: h.GeminiUpstream,
		Timeout: upstreamTimeout,
	})
	if err != nil {
		h.relayFailure(c, err)
		return
	}

	resp, err := client.Do(c.Request.Context(), &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/models/" + model + ":generateContent",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: body,
		Auth: httpclient.APIKeyAuth(apiKey, "x-goog-api-key"),
	})
	h.relay(c, resp, err)
}

// relay writes the upstream response through verbatim. Provider error
// statuses keep their status and body; transport-level failures become an
// {error, status} JSON body.
func (h *Handler) relay(c *gin.Context, resp *httpclient.Response, err error) {
	if resp != nil {
		contentType := resp.Headers["Content-Type"]
		if contentType == "" {
			contentType = "application/json"
		}
		if err != nil {
			h.log.Warn("provider returned error status", logger.Fields(
				logger.FieldStatus, resp.StatusCode,
				"path", c.Request.URL.Path,
			))
		}
		c.Data(resp.StatusCode, contentType, resp.Body)
		return
	}
	h.relayFailure(c, err)
}

func (h *Handler) relayFailure(c *gin.Context, err error) {
	h.log.Error("relay failed", logger.Fields(
		"path", c.Request.URL.Path,
		"error", err.Error(),
	))
	c.JSON(http.StatusBadGateway, gin.H{
		"error":  err.Error(),
		"status": http.StatusBadGateway,
	})
}
