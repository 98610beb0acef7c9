// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content populates page sections with grounded copy: one base
// variant per section plus per-persona variations, each carrying a
// grounding confidence score.
// See docs/ARCHITECTURE § Content Generation.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/pageforge/internal/httputil"
	"github.com/pdiddy/pageforge/pkg/types"
)

// OracleRequest is one completion request: a single (section, persona)
// pair with its grounding context. PersonaID is empty for the base
// variant.
type OracleRequest struct {
	PageType       types.PageType
	PageTitle      string
	SectionID      string
	ComponentID    string
	Role           types.NarrativeRole
	Directive      string
	Tone           string
	RequiredFields []string
	PersonaID      string
	PersonaLabel   string
	PersonaDesc    string
	Excerpts       []types.KnowledgeExcerpt
}

// OracleResponse is the structured completion for one request.
type OracleResponse struct {
	// Fields maps content slot names to generated copy.
	Fields map[string]string `json:"fields"`

	// TokensUsed is the completion's token consumption, when reported.
	TokensUsed int `json:"tokens_used,omitempty"`
}

// Oracle abstracts the generation model so tests can supply a mock.
// Calls are blocking request/response operations; implementations must
// honor the context deadline.
type Oracle interface {
	Complete(ctx context.Context, req OracleRequest) (OracleResponse, error)
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeOracle calls the Claude API to populate section content.
type ClaudeOracle struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
	Usage   claudeUsage     `json:"usage"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// claudeUsage reports token consumption.
type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Complete calls the Claude API with the section-population prompt.
func (c *ClaudeOracle) Complete(ctx context.Context, oreq OracleRequest) (OracleResponse, error) {
	prompt, err := renderPrompt(oreq)
	if err != nil {
		return OracleResponse{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 2048,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return OracleResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return OracleResponse{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return OracleResponse{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return OracleResponse{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return OracleResponse{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		var out OracleResponse
		if err := json.Unmarshal([]byte(block.Text), &out); err != nil {
			return OracleResponse{}, fmt.Errorf("parsing oracle response JSON: %w", err)
		}
		out.TokensUsed = cResp.Usage.InputTokens + cResp.Usage.OutputTokens
		return out, nil
	}

	return OracleResponse{}, fmt.Errorf("no text content in Claude API response")
}
