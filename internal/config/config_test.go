package config

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "FAQTHRESHOLD", "FAQFALLBACK", "REGION", "VERTEXMODEL", "VERTEXTEMPERATURE",
		"SEARCHPROVIDER", "SEARCHMAXRESULTS", "SEARCHTIMEOUT", "CORSALLOWEDORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := New()

	if cfg.FAQThreshold != DefaultFAQThreshold {
		t.Fatalf("threshold mismatch: %v", cfg.FAQThreshold)
	}
	if cfg.FAQFallback != DefaultFAQFallback {
		t.Fatalf("fallback mismatch: %q", cfg.FAQFallback)
	}
	if cfg.Region != DefaultRegion || cfg.VertexModel != DefaultVertexModel {
		t.Fatalf("vertex defaults mismatch: %s %s", cfg.Region, cfg.VertexModel)
	}
	if cfg.VertexTemperature != nil {
		t.Fatalf("expected nil temperature")
	}
	if cfg.SearchProvider != DefaultSearchProvider || cfg.SearchMaxResults != DefaultSearchResults {
		t.Fatalf("search defaults mismatch: %s %d", cfg.SearchProvider, cfg.SearchMaxResults)
	}
	if cfg.SearchTimeout != DefaultSearchTimeout {
		t.Fatalf("timeout mismatch: %v", cfg.SearchTimeout)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if addr := cfg.Addr(DefaultFAQPort); addr != ":5000" {
		t.Fatalf("addr mismatch: %s", addr)
	}
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FAQTHRESHOLD", "0.45")
	t.Setenv("VERTEXTEMPERATURE", "0.2")
	t.Setenv("SEARCHPROVIDER", "Bing")
	t.Setenv("SEARCHMAXRESULTS", "3")
	t.Setenv("SEARCHTIMEOUT", "5s")
	t.Setenv("CORSALLOWEDORIGINS", "https://passabola.app, http://localhost:3000,")

	cfg := New()

	if cfg.FAQThreshold != 0.45 {
		t.Fatalf("threshold mismatch: %v", cfg.FAQThreshold)
	}
	if cfg.VertexTemperature == nil || *cfg.VertexTemperature != float32(0.2) {
		t.Fatalf("temperature mismatch: %v", cfg.VertexTemperature)
	}
	if cfg.SearchProvider != "bing" || cfg.SearchMaxResults != 3 || cfg.SearchTimeout != 5*time.Second {
		t.Fatalf("search overrides mismatch: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:3000" {
		t.Fatalf("origins mismatch: %v", cfg.CORSAllowedOrigins)
	}
	if addr := cfg.Addr(DefaultFAQPort); addr != ":9090" {
		t.Fatalf("addr mismatch: %s", addr)
	}
}

func TestValidateAssistantReportsEveryMissingCredential(t *testing.T) {
	cfg := &Config{}

	err := cfg.ValidateAssistant()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "PROJECTID") || !strings.Contains(err.Error(), "SEARCHAPIKEY") {
		t.Fatalf("expected both credentials in error, got %q", err.Error())
	}

	cfg.ProjectID = "p"
	cfg.SearchAPIKeySecret = "projects/p/secrets/search/versions/latest"
	if err := cfg.ValidateAssistant(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFAQ(t *testing.T) {
	if err := (&Config{FAQThreshold: 1.5}).ValidateFAQ(); err == nil {
		t.Fatalf("expected threshold error")
	}
	if err := (&Config{FAQThreshold: 0.3, FAQFile: "a.json", FAQCollection: "faq"}).ValidateFAQ(); err == nil {
		t.Fatalf("expected exclusive source error")
	}
	if err := (&Config{FAQThreshold: 0.3, FAQCollection: "faq"}).ValidateFAQ(); err == nil {
		t.Fatalf("expected project error")
	}
	if err := (&Config{FAQThreshold: math.NaN()}).ValidateFAQ(); err == nil {
		t.Fatalf("expected NaN threshold error")
	}
	if err := (&Config{FAQThreshold: 0.3}).ValidateFAQ(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFAQReportsUnparsableThreshold(t *testing.T) {
	t.Setenv("FAQFILE", "")
	t.Setenv("FAQCOLLECTION", "")
	t.Setenv("FAQTHRESHOLD", "0,5")

	err := New().ValidateFAQ()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "FAQTHRESHOLD") {
		t.Fatalf("expected key in error, got %q", err.Error())
	}

	t.Setenv("FAQTHRESHOLD", "NaN")
	if err := New().ValidateFAQ(); err == nil {
		t.Fatalf("expected NaN threshold error")
	}

	t.Setenv("FAQTHRESHOLD", "")
	if err := New().ValidateFAQ(); err != nil {
		t.Fatalf("unexpected error for unset threshold: %v", err)
	}
}
