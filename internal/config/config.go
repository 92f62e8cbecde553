package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultFAQPort        = "5000"
	DefaultAssistantPort  = "8080"
	DefaultFAQThreshold   = 0.3
	DefaultFAQFallback    = "Desculpe, não entendi sua pergunta. Poderia tentar reformulá-la?"
	DefaultRegion         = "us-central1"
	DefaultVertexModel    = "gemini-2.0-flash"
	DefaultSearchProvider = "tavily"
	DefaultSearchResults  = 5
	DefaultSearchTimeout  = 15 * time.Second
)

type Config struct {
	Port               string
	LogLevel           string
	ServiceName        string
	CORSAllowedOrigins []string

	FAQThreshold  float64
	FAQFallback   string
	FAQFile       string
	FAQCollection string

	ProjectID         string
	Region            string
	VertexModel       string
	VertexTemperature *float32

	SearchProvider     string
	SearchEndpoint     string
	SearchAPIKey       string
	SearchAPIKeySecret string
	SearchMaxResults   int
	SearchTimeout      time.Duration

	parseErrs []error
}

func New() *Config {
	threshold, thresholdErr := parseFloat("FAQTHRESHOLD", DefaultFAQThreshold)

	cfg := &Config{
		Port:               os.Getenv("PORT"),
		LogLevel:           os.Getenv("LOGLEVEL"),
		ServiceName:        os.Getenv("SERVICENAME"),
		CORSAllowedOrigins: splitList(os.Getenv("CORSALLOWEDORIGINS")),

		FAQThreshold:  threshold,
		FAQFallback:   getString("FAQFALLBACK", DefaultFAQFallback),
		FAQFile:       os.Getenv("FAQFILE"),
		FAQCollection: os.Getenv("FAQCOLLECTION"),

		ProjectID:         os.Getenv("PROJECTID"),
		Region:            getString("REGION", DefaultRegion),
		VertexModel:       getString("VERTEXMODEL", DefaultVertexModel),
		VertexTemperature: getFloat32Ptr("VERTEXTEMPERATURE"),

		SearchProvider:     strings.ToLower(getString("SEARCHPROVIDER", DefaultSearchProvider)),
		SearchEndpoint:     os.Getenv("SEARCHENDPOINT"),
		SearchAPIKey:       os.Getenv("SEARCHAPIKEY"),
		SearchAPIKeySecret: os.Getenv("SEARCHAPIKEYSECRET"),
		SearchMaxResults:   getInt("SEARCHMAXRESULTS", DefaultSearchResults),
		SearchTimeout:      getDuration("SEARCHTIMEOUT", DefaultSearchTimeout),
	}
	if thresholdErr != nil {
		cfg.parseErrs = append(cfg.parseErrs, thresholdErr)
	}
	return cfg
}

// Addr returns the listen address, using fallbackPort when PORT is unset.
func (c *Config) Addr(fallbackPort string) string {
	port := c.Port
	if port == "" {
		port = fallbackPort
	}
	return ":" + strings.TrimPrefix(port, ":")
}

// ValidateAssistant reports every credential the assistant cannot start
// without: the Vertex project and a search API key (inline or as a secret).
func (c *Config) ValidateAssistant() error {
	var missing []error
	if c.ProjectID == "" {
		missing = append(missing, errors.New("PROJECTID is required"))
	}
	if c.SearchAPIKey == "" && c.SearchAPIKeySecret == "" {
		missing = append(missing, errors.New("SEARCHAPIKEY or SEARCHAPIKEYSECRET is required"))
	}
	return errors.Join(missing...)
}

// ValidateFAQ checks the matcher settings, including values New could not parse.
func (c *Config) ValidateFAQ() error {
	if err := errors.Join(c.parseErrs...); err != nil {
		return err
	}
	if math.IsNaN(c.FAQThreshold) || c.FAQThreshold < 0 || c.FAQThreshold >= 1 {
		return errors.New("FAQTHRESHOLD must be in [0, 1)")
	}
	if c.FAQFile != "" && c.FAQCollection != "" {
		return errors.New("FAQFILE and FAQCOLLECTION are mutually exclusive")
	}
	if c.FAQCollection != "" && c.ProjectID == "" {
		return errors.New("PROJECTID is required when FAQCOLLECTION is set")
	}
	return nil
}

// ---- Helpers ----

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseFloat returns fallback when key is unset and an error when it is set
// but not a number.
func parseFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid number %q", key, raw)
	}
	return v, nil
}

func getFloat32Ptr(key string) *float32 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 32)
	if err != nil {
		return nil
	}
	f := float32(v)
	return &f
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
