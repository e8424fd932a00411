// ABOUTME: AWS documentation capability provider: page fetch, search API, recommendations API.
// ABOUTME: Converts fetched pages to markdown and caches results to spare the upstream APIs.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/docs-gateway/internal/store"
	"github.com/2389/docs-gateway/internal/ttlcache"
)

// Default upstream endpoints for the AWS documentation APIs.
const (
	DefaultSearchURL          = "https://proxy.search.docs.aws.amazon.com/search"
	DefaultRecommendationsURL = "https://contentrecs-api.docs.aws.amazon.com/v1/recommendations"
	DefaultUserAgent          = "docs-gateway/1.0 (MCP documentation server)"
)

// maxPageBytes bounds the size of a fetched documentation page (8MB).
const maxPageBytes = 8 << 20

// ErrNotDocumentationURL indicates the URL does not point at an AWS
// documentation page and will not be fetched.
var ErrNotDocumentationURL = errors.New("url must be a docs.aws.amazon.com page")

// AWSDocsConfig holds configuration for the AWS documentation provider.
type AWSDocsConfig struct {
	SearchURL          string
	RecommendationsURL string
	UserAgent          string
	Timeout            time.Duration
	Pages              *store.PageCache // optional fetched-page cache
	Memo               *ttlcache.Cache  // optional search/recommend memo cache
	Logger             *slog.Logger
}

// AWSDocs implements Provider against the live AWS documentation site and
// its search and content-recommendations APIs.
type AWSDocs struct {
	client    *http.Client
	searchURL string
	recsURL   string
	userAgent string
	pages     *store.PageCache
	memo      *ttlcache.Cache
	logger    *slog.Logger
}

// NewAWSDocs creates a provider with the given configuration. Zero values
// fall back to the default endpoints and a 30s HTTP timeout.
func NewAWSDocs(cfg AWSDocsConfig) *AWSDocs {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "provider")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	recsURL := cfg.RecommendationsURL
	if recsURL == "" {
		recsURL = DefaultRecommendationsURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &AWSDocs{
		client:    &http.Client{Timeout: timeout},
		searchURL: searchURL,
		recsURL:   recsURL,
		userAgent: userAgent,
		pages:     cfg.Pages,
		memo:      cfg.Memo,
		logger:    logger,
	}
}

// validateDocumentationURL rejects URLs outside the documentation site.
func validateDocumentationURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "https" || u.Host != "docs.aws.amazon.com" {
		return ErrNotDocumentationURL
	}
	return nil
}

// ReadDocumentation fetches a documentation page, converts it to markdown,
// and returns the requested pagination window.
func (p *AWSDocs) ReadDocumentation(ctx context.Context, sink ErrorSink, pageURL string, maxLength, startIndex int) (string, error) {
	if err := validateDocumentationURL(pageURL); err != nil {
		sink.Error(fmt.Sprintf("invalid documentation URL %q: %v", pageURL, err))
		return "", err
	}

	markdown, err := p.fetchMarkdown(ctx, sink, pageURL)
	if err != nil {
		return "", err
	}

	return paginate(markdown, pageURL, maxLength, startIndex), nil
}

// fetchMarkdown returns the markdown form of a page, consulting the page
// cache before going to the network.
func (p *AWSDocs) fetchMarkdown(ctx context.Context, sink ErrorSink, pageURL string) (string, error) {
	if p.pages != nil {
		page, err := p.pages.Get(ctx, pageURL)
		if err == nil {
			p.logger.Debug("page cache hit", "url", pageURL)
			return page.Content, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			p.logger.Warn("page cache read failed", "url", pageURL, "error", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building page request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		sink.Error(fmt.Sprintf("failed to fetch %s: %v", pageURL, err))
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		sink.Error(fmt.Sprintf("failed to fetch %s: status %d", pageURL, resp.StatusCode))
		return "", fmt.Errorf("fetching page: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading page body: %w", err)
	}

	markdown := string(body)
	if isHTML(resp.Header.Get("Content-Type"), markdown) {
		markdown, err = htmlToMarkdown(string(body), pageURL)
		if err != nil {
			return "", err
		}
	}

	if p.pages != nil {
		if err := p.pages.Put(ctx, pageURL, markdown); err != nil {
			p.logger.Warn("page cache write failed", "url", pageURL, "error", err)
		}
	}
	return markdown, nil
}

// isHTML reports whether the payload should go through markdown conversion.
func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	head := strings.ToLower(body)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

// searchRequest is the payload for the documentation search API.
type searchRequest struct {
	TextQuery struct {
		Input string `json:"input"`
	} `json:"textQuery"`
	ContextAttributes    []searchContextAttribute `json:"contextAttributes"`
	AcceptSuggestionBody string                   `json:"acceptSuggestionBody"`
	Locales              []string                 `json:"locales"`
}

type searchContextAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// searchResponse mirrors the documentation search API response shape.
type searchResponse struct {
	Suggestions []struct {
		TextExcerptSuggestion struct {
			Link    string `json:"link"`
			Title   string `json:"title"`
			Summary string `json:"summary"`
			Body    string `json:"suggestionBody"`
			Context string `json:"context"`
		} `json:"textExcerptSuggestion"`
	} `json:"suggestions"`
}

// SearchDocumentation queries the documentation search API and returns up
// to limit results in relevance order.
func (p *AWSDocs) SearchDocumentation(ctx context.Context, sink ErrorSink, phrase string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	memoKey := fmt.Sprintf("search\x00%s\x00%d", phrase, limit)
	if p.memo != nil {
		if cached, ok := p.memo.Get(memoKey); ok {
			var results []SearchResult
			if err := json.Unmarshal([]byte(cached), &results); err == nil {
				return results, nil
			}
		}
	}

	payload := searchRequest{
		ContextAttributes:    []searchContextAttribute{{Key: "domain", Value: "docs.aws.amazon.com"}},
		AcceptSuggestionBody: "RawText",
		Locales:              []string{"en_us"},
	}
	payload.TextQuery.Input = phrase

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		sink.Error(fmt.Sprintf("search request failed: %v", err))
		return nil, fmt.Errorf("searching documentation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		sink.Error(fmt.Sprintf("search request failed: status %d", resp.StatusCode))
		return nil, fmt.Errorf("searching documentation: unexpected status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]SearchResult, 0, limit)
	for i, s := range parsed.Suggestions {
		if len(results) >= limit {
			break
		}
		sugg := s.TextExcerptSuggestion
		if sugg.Link == "" {
			continue
		}
		excerpt := sugg.Summary
		if excerpt == "" {
			excerpt = sugg.Body
		}
		if excerpt == "" {
			excerpt = sugg.Context
		}
		results = append(results, SearchResult{
			RankOrder: i + 1,
			Title:     sugg.Title,
			URL:       sugg.Link,
			Context:   excerpt,
		})
	}

	p.memoize(memoKey, results)
	return results, nil
}

// recommendationsResponse mirrors the content-recommendations API response.
// Each section carries an ordered list of related assets.
type recommendationsResponse struct {
	HighlyRated recommendationSection `json:"highlyRated"`
	Journey     recommendationSection `json:"journey"`
	New         recommendationSection `json:"new"`
	Similar     recommendationSection `json:"similar"`
}

type recommendationSection struct {
	Items []struct {
		AssetTitle string `json:"assetTitle"`
		AssetURL   string `json:"assetUrl"`
		Abstract   string `json:"abstract"`
	} `json:"items"`
}

// Recommend queries the content-recommendations API for pages related to
// the given documentation URL.
func (p *AWSDocs) Recommend(ctx context.Context, sink ErrorSink, pageURL string) ([]Recommendation, error) {
	memoKey := "recommend\x00" + pageURL
	if p.memo != nil {
		if cached, ok := p.memo.Get(memoKey); ok {
			var results []Recommendation
			if err := json.Unmarshal([]byte(cached), &results); err == nil {
				return results, nil
			}
		}
	}

	reqURL := fmt.Sprintf("%s?path=%s", p.recsURL, url.QueryEscape(pageURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building recommendations request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		sink.Error(fmt.Sprintf("recommendations request failed: %v", err))
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		sink.Error(fmt.Sprintf("recommendations request failed: status %d", resp.StatusCode))
		return nil, fmt.Errorf("fetching recommendations: unexpected status %d", resp.StatusCode)
	}

	var parsed recommendationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding recommendations response: %w", err)
	}

	var results []Recommendation
	appendSection := func(section recommendationSection) {
		for _, item := range section.Items {
			if item.AssetURL == "" {
				continue
			}
			results = append(results, Recommendation{
				Title:       item.AssetTitle,
				URL:         item.AssetURL,
				Description: item.Abstract,
			})
		}
	}
	appendSection(parsed.HighlyRated)
	appendSection(parsed.Journey)
	appendSection(parsed.New)
	appendSection(parsed.Similar)

	p.memoize(memoKey, results)
	return results, nil
}

// memoize stores a result in the memo cache, ignoring encoding failures.
func (p *AWSDocs) memoize(key string, value any) {
	if p.memo == nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	p.memo.Set(key, string(encoded))
}
