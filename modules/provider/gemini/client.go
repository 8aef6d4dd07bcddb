package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/flemzord/relaybot/internal/provider"
)

// maxResponseSize is the maximum success body size (10 MB).
const maxResponseSize = 10 * 1024 * 1024

// maxErrorBodySize caps how much of a failed response is read.
const maxErrorBodySize = 4 * 1024

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	TopK            int      `json:"topK,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// buildRequest wraps the prompt as a single user turn.
func (c *Client) buildRequest(prompt string) generateRequest {
	safety := make([]safetySetting, 0, len(c.config.HarmCategories))
	for _, cat := range c.config.HarmCategories {
		safety = append(safety, safetySetting{Category: cat, Threshold: c.config.SafetyThreshold})
	}
	return generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
			TopK:            c.config.TopK,
			TopP:            c.config.TopP,
		},
		SafetySettings: safety,
	}
}

// endpoint returns the generateContent URL for model. The key is sent in a
// header so it never appears in URLs or request logs.
func (c *Client) endpoint(model string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/models/" + url.PathEscape(model) + ":generateContent"
}

// Generate implements provider.Generator.
func (c *Client) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	body, err := json.Marshal(c.buildRequest(req.Prompt))
	if err != nil {
		return provider.Response{}, fmt.Errorf("gemini: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(req.Model), bytes.NewReader(body))
	if err != nil {
		return provider.Response{}, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", req.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return provider.Response{}, mapConnectionError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		c.logger.Debug("gemini request failed",
			"model", req.Model,
			"status", resp.StatusCode,
		)
		return provider.Response{}, mapHTTPError(resp.StatusCode, errBody)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return provider.Response{}, fmt.Errorf("%w: gemini: read response: %w", provider.ErrTransient, err)
	}

	return parseResponse(respBody)
}

// parseResponse extracts the first candidate's text.
func parseResponse(body []byte) (provider.Response, error) {
	if !gjson.ValidBytes(body) {
		return provider.Response{}, fmt.Errorf("%w: gemini: malformed response body", provider.ErrTransient)
	}
	root := gjson.ParseBytes(body)

	var sb strings.Builder
	root.Get("candidates.0.content.parts").ForEach(func(_, p gjson.Result) bool {
		sb.WriteString(p.Get("text").String())
		return true
	})
	text := strings.TrimSpace(sb.String())

	if text == "" {
		if reason := root.Get("promptFeedback.blockReason").String(); reason != "" {
			return provider.Response{}, fmt.Errorf("%w: gemini: prompt blocked: %s", provider.ErrBadRequest, reason)
		}
		finish := root.Get("candidates.0.finishReason").String()
		return provider.Response{}, fmt.Errorf("%w: gemini: empty candidate (finish reason %q)", provider.ErrTransient, finish)
	}

	prompt := int(root.Get("usageMetadata.promptTokenCount").Int())
	completion := int(root.Get("usageMetadata.candidatesTokenCount").Int())
	total := int(root.Get("usageMetadata.totalTokenCount").Int())
	if total == 0 {
		total = prompt + completion
	}

	return provider.Response{
		Text:         text,
		FinishReason: root.Get("candidates.0.finishReason").String(),
		Usage: provider.TokenUsage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      total,
		},
	}, nil
}
