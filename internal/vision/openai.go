package vision

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

// Client is the OpenAI-backed [Analyzer]. It works against the official API
// and any OpenAI-compatible endpoint via a base URL override.
type Client struct {
	api openai.Client
	log zerolog.Logger
}

// NewClient builds a Client. baseURL may be empty for the default endpoint.
func NewClient(apiKey, baseURL string, log zerolog.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// The pipeline owns retry policy; SDK-internal retries would add
		// hidden attempts outside the configured budget.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, option.WithMiddleware(requestTraceMiddleware(log)))

	return &Client{
		api: openai.NewClient(opts...),
		log: log.With().Str("component", "vision").Logger(),
	}
}

// requestTraceMiddleware stamps every outbound request with an x-request-id
// and logs method, path, status, and latency at debug level.
func requestTraceMiddleware(log zerolog.Logger) option.Middleware {
	traceLog := log.With().Str("component", "openai_http").Logger()
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		requestID := req.Header.Get("x-request-id")
		if requestID == "" {
			requestID = uuid.NewString()
			req.Header.Set("x-request-id", requestID)
		}

		start := time.Now()
		resp, err := next(req)

		evt := traceLog.Debug().
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("duration", time.Since(start))
		if err != nil {
			evt.Err(err).Msg("Request failed")
		} else {
			evt.Int("status", resp.StatusCode).Msg("Request completed")
		}
		return resp, err
	}
}

// Analyze sends one chat completion with the prompt text and the image as a
// base64 data URL, and maps the first choice into a [Result].
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{Text: req.Prompt},
		},
		{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL: req.Payload.DataURL(),
				},
			},
		},
	}

	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model %s", req.Model)
	}

	result := &Result{
		Description: resp.Choices[0].Message.Content,
		Model:       resp.Model,
	}
	if u := resp.Usage; u.PromptTokens > 0 || u.CompletionTokens > 0 || u.TotalTokens > 0 {
		result.Usage = &Usage{
			PromptTokens:     int(u.PromptTokens),
			CompletionTokens: int(u.CompletionTokens),
			TotalTokens:      int(u.TotalTokens),
		}
	}
	return result, nil
}
