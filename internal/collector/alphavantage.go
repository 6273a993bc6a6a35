package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"MarketLens/internal/model"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://www.alphavantage.co/query"

// ErrMissingKey means the response parsed but did not carry the payload key
// for the requested function.
var ErrMissingKey = errors.New("response missing expected key")

// apiMessageKeys are the fields the API uses to explain an empty answer
// (bad symbol, rate limit, premium endpoint).
var apiMessageKeys = []string{"Error Message", "Note", "Information"}

// AlphaVantageFetcher implements Fetcher against the Alpha Vantage query API.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *resty.Client
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "MarketLens/1.0").
		SetHeader("Accept", "application/json")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &AlphaVantageFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  client,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// Fetch issues one GET for req and normalizes the response.
func (f *AlphaVantageFetcher) Fetch(ctx context.Context, req model.Request) (*model.Table, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(req.Query(f.APIKey)).
		Get(f.BaseURL)
	if err != nil {
		// url.Error carries the full URL, apikey included.
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, fmt.Errorf("alphavantage %s: %s: %w", req, ue.Op, ue.Err)
		}
		return nil, fmt.Errorf("alphavantage %s: %w", req, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("alphavantage %s: status %d, body: %s", req, resp.StatusCode(), truncate(resp.Body(), 256))
	}
	return decodeResponse(req, resp.Body())
}

func decodeResponse(req model.Request, body []byte) (*model.Table, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("alphavantage %s decode: %w", req, err)
	}

	key := req.ResponseKey()
	payload, ok := envelope[key]
	if !ok {
		if msg := apiMessage(envelope); msg != "" {
			return nil, fmt.Errorf("%w %q for %s (%s)", ErrMissingKey, key, req, msg)
		}
		return nil, fmt.Errorf("%w %q for %s", ErrMissingKey, key, req)
	}

	if req.Kind == model.KindQuote {
		var fields map[string]string
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("alphavantage %s decode %q: %w", req, key, err)
		}
		return normalizeQuote(req, fields)
	}

	meta := map[string]string{}
	if raw, ok := envelope["Meta Data"]; ok {
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("alphavantage %s decode meta: %w", req, err)
		}
		meta = normalizeMeta(m)
	}
	var series map[string]map[string]string
	if err := json.Unmarshal(payload, &series); err != nil {
		return nil, fmt.Errorf("alphavantage %s decode %q: %w", req, key, err)
	}
	return normalizeSeries(req, series, meta)
}

func apiMessage(envelope map[string]json.RawMessage) string {
	for _, k := range apiMessageKeys {
		raw, ok := envelope[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return k + ": " + s
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
