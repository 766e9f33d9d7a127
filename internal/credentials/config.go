package credentials

// Well-known credential names resolved by the transcription and note
// generation providers.
const (
	KeyOpenAIAPIKey  = "OPENAI_API_KEY"
	KeyOpenAIBaseURL = "OPENAI_BASE_URL"
	KeyGeminiAPIKey  = "GEMINI_API_KEY"
	KeyGeminiBaseURL = "GEMINI_BASE_URL"
)

// Config holds credential resolution settings.
type Config struct {
	// StorePath is the location of the encrypted credential store file.
	StorePath string `mapstructure:"store_path"`
	// StoreKey encrypts the credential store. Required on native platforms
	// when the store is used.
	StoreKey string `mapstructure:"store_key"`
	// Values are credentials bundled with the configuration file. Intended
	// for development setups; production deployments should rely on the
	// secure store (native) or environment variables (web).
	Values map[string]string `mapstructure:"values"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.StorePath == "" {
		c.StorePath = "credentials.enc"
	}
}
