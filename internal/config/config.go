package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults applied when the environment leaves a setting unset.
const (
	DefaultModel            = "gemini-2.0-flash-live-001"
	DefaultHTTPPort         = "8080"
	DefaultInputSampleRate  = 16000
	DefaultOutputSampleRate = 24000
	DefaultFrameSamples     = 4096

	DefaultSystemInstruction = "You are a friendly scheduling assistant for GreenGuard, " +
		"a residential solar panel maintenance company. Help customers book a site " +
		"visit: collect their name, address and preferred time, then call the " +
		"book_site_visit tool. Keep answers short and conversational."
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	GeminiAPIKey      string
	Model             string
	SystemInstruction string

	InputSampleRate  int
	OutputSampleRate int
	FrameSamples     int

	HTTPPort  string
	JWTSecret string
}

// Load reads the configuration from the environment. GEMINI_API_KEY is the
// only required setting.
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:             getenv("GREENGUARD_MODEL", DefaultModel),
		SystemInstruction: getenv("GREENGUARD_SYSTEM_INSTRUCTION", DefaultSystemInstruction),
		HTTPPort:          getenv("PORT", DefaultHTTPPort),
		JWTSecret:         os.Getenv("GREENGUARD_JWT_SECRET"),
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	var err error
	if cfg.InputSampleRate, err = getenvInt("GREENGUARD_INPUT_SAMPLE_RATE", DefaultInputSampleRate); err != nil {
		return nil, err
	}
	if cfg.OutputSampleRate, err = getenvInt("GREENGUARD_OUTPUT_SAMPLE_RATE", DefaultOutputSampleRate); err != nil {
		return nil, err
	}
	if cfg.FrameSamples, err = getenvInt("GREENGUARD_FRAME_SAMPLES", DefaultFrameSamples); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
