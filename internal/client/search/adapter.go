package searchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/passabola/chatbot/internal/dto"
	"github.com/passabola/chatbot/internal/errs"
)

const (
	ProviderTavily = "tavily"
	ProviderBing   = "bing"

	DefaultTavilyEndpoint = "https://api.tavily.com/search"
	DefaultBingEndpoint   = "https://api.bing.microsoft.com/v7.0/search"

	serviceName = "search"

	// provider error bodies are only kept for the log line
	maxErrorBody = 512
)

type Adapter struct {
	provider   string
	endpoint   string
	apiKey     string
	maxResults int
	client     *http.Client
	log        *slog.Logger
}

func NewAdapter(log *slog.Logger, provider, endpoint, apiKey string, maxResults int, timeout time.Duration) (*Adapter, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	switch provider {
	case ProviderTavily:
		if endpoint == "" {
			endpoint = DefaultTavilyEndpoint
		}
	case ProviderBing:
		if endpoint == "" {
			endpoint = DefaultBingEndpoint
		}
	default:
		return nil, fmt.Errorf("unsupported search provider %q", provider)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("search api key is required")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("search max results must be positive")
	}

	return &Adapter{
		provider:   provider,
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: maxResults,
		client:     &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

func (a *Adapter) Provider() string {
	return a.provider
}

func (a *Adapter) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}

	var (
		results []dto.SearchResult
		err     error
	)
	start := time.Now()
	switch a.provider {
	case ProviderBing:
		results, err = a.searchBing(ctx, query)
	default:
		results, err = a.searchTavily(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	if a.log != nil {
		a.log.Debug("web search completed",
			"provider", a.provider,
			"results", len(results),
			"duration", time.Since(start),
		)
	}
	return results, nil
}

func (a *Adapter) searchTavily(ctx context.Context, query string) ([]dto.SearchResult, error) {
	payload, err := json.Marshal(map[string]any{
		"api_key":     a.apiKey,
		"query":       query,
		"max_results": a.maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := a.do(req, &body); err != nil {
		return nil, err
	}

	results := make([]dto.SearchResult, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, dto.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return a.limit(results), nil
}

func (a *Adapter) searchBing(ctx context.Context, query string) ([]dto.SearchResult, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(a.maxResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.apiKey)

	var body struct {
		WebPages struct {
			Value []struct {
				Name    string `json:"name"`
				URL     string `json:"url"`
				Snippet string `json:"snippet"`
			} `json:"value"`
		} `json:"webPages"`
	}
	if err := a.do(req, &body); err != nil {
		return nil, err
	}

	results := make([]dto.SearchResult, 0, len(body.WebPages.Value))
	for _, v := range body.WebPages.Value {
		results = append(results, dto.SearchResult{Title: v.Name, URL: v.URL, Snippet: v.Snippet})
	}
	return a.limit(results), nil
}

func (a *Adapter) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, a.provider+" request failed", isTransient(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return errs.NewExternalServiceError(
			serviceName,
			fmt.Sprintf("%s returned status %d: %s", a.provider, resp.StatusCode, strings.TrimSpace(string(snippet))),
			transient,
			nil,
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewExternalServiceError(serviceName, a.provider+" response decode failed", false, err)
	}
	return nil
}

func (a *Adapter) limit(results []dto.SearchResult) []dto.SearchResult {
	if len(results) > a.maxResults {
		return results[:a.maxResults]
	}
	return results
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
