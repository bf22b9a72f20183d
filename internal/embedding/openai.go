// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIMaxBatch is the most inputs the embeddings endpoint accepts per call.
const openAIMaxBatch = 2048

// OpenAIEncoder calls an OpenAI-compatible embeddings endpoint.
// OpenRouter and self-hosted gateways work through WithBaseURL.
type OpenAIEncoder struct {
	client *openai.Client
	model  string
	dims   int
}

var _ Encoder = (*OpenAIEncoder)(nil)

type openAIOptions struct {
	baseURL    string
	dims       int
	httpClient *http.Client
}

// OpenAIOption configures an OpenAIEncoder.
type OpenAIOption func(*openAIOptions)

// WithBaseURL points the client at a compatible endpoint. Empty keeps the default.
func WithBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) { o.baseURL = url }
}

// WithDimensions requests shortened vectors. 0 keeps the model default.
func WithDimensions(n int) OpenAIOption {
	return func(o *openAIOptions) { o.dims = n }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *openAIOptions) { o.httpClient = c }
}

// NewOpenAIEncoder creates an encoder for model.
func NewOpenAIEncoder(apiKey, model string, opts ...OpenAIOption) *OpenAIEncoder {
	cfg := openAIOptions{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(&cfg)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
		option.WithMaxRetries(2),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAIEncoder{client: &client, model: model, dims: cfg.dims}
}

// Model implements Encoder.
func (e *OpenAIEncoder) Model() string { return e.model }

// Provider implements Encoder.
func (e *OpenAIEncoder) Provider() string { return ProviderOpenAI }

// Embed implements Encoder. Large inputs are split across several calls.
func (e *OpenAIEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += openAIMaxBatch {
		end := min(start+openAIMaxBatch, len(texts))
		rows, err := e.call(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("openai embeddings [%d:%d]: %w", start, end, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (e *OpenAIEncoder) call(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model:          e.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dims > 0 {
		params.Dimensions = openai.Int(int64(e.dims))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	rows := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= int64(len(texts)) {
			return nil, fmt.Errorf("unexpected embedding index %d for batch of %d", item.Index, len(texts))
		}
		rows[item.Index] = toFloat32(item.Embedding)
	}
	for i, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return rows, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
