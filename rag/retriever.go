// Package rag retrieves product knowledge snippets from an Upstash Vector
// index via REST. The index is populated offline from product descriptions
// and FAQ content; this client only queries it.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
)

const maxResponseSizeBytes = 1 << 20

// Config configures the vector index client.
type Config struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Option customizes the Retriever.
type Option func(*Retriever)

func WithHTTPClient(client *http.Client) Option {
	return func(r *Retriever) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// Retriever queries the vector index over REST and implements
// contract.Retriever.
type Retriever struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ contractx.Retriever = (*Retriever)(nil)

func NewRetriever(cfg Config, opts ...Option) (*Retriever, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("vector index url is required")
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("vector index token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r := &Retriever{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

func MustNewRetriever(cfg Config, opts ...Option) *Retriever {
	r, err := NewRetriever(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

type queryRequest struct {
	Data            string `json:"data"`
	TopK            int    `json:"topK"`
	IncludeMetadata bool   `json:"includeMetadata"`
}

type queryResponse struct {
	Result []struct {
		ID       string  `json:"id"`
		Score    float64 `json:"score"`
		Metadata struct {
			Text string `json:"text"`
		} `json:"metadata"`
	} `json:"result"`
	Error string `json:"error"`
}

// Retrieve runs a semantic query and returns the text of the top matches.
// Matches without text metadata are dropped.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", contractx.ErrValidation)
	}
	if topK <= 0 {
		topK = 3
	}

	body, err := json.Marshal(queryRequest{
		Data:            query,
		TopK:            topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal vector query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build vector request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute vector request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read vector response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("vector http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed queryResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode vector response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("vector query failed: %s", parsed.Error)
	}

	chunks := make([]string, 0, len(parsed.Result))
	for _, match := range parsed.Result {
		text := strings.TrimSpace(match.Metadata.Text)
		if text != "" {
			chunks = append(chunks, text)
		}
	}
	return chunks, nil
}
