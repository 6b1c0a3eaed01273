package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
)

// Client asks an OpenAI-compatible chat-completions endpoint (DashScope/Qwen
// by default) for each turn's move.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = constants.ProviderBaseURL
	}
	if model == "" {
		model = constants.ProviderChatModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Decide sends both snapshots and parses the reply leniently. Network
// errors, non-200 statuses and empty replies are returned as errors so the
// caller can apply its fallback action.
func (c *Client) Decide(ctx context.Context, attacker, defender Snapshot) (game.Action, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("provider api key not set")
	}

	prompt := fmt.Sprintf(`You are a crypto-native AI Agent controlling %s.
Your Status: HP %d.
Opponent Status: HP %d, Defending: %t.
Goal: Win the battle on-chain.
Action Space: [ATTACK, DEFEND, SKILL].
Output: Only the action word.`, attacker.Name, attacker.Health, defender.Health, defender.IsDefending)

	payload := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+constants.ProviderChatCompletionsPath, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+c.apiKey)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("provider error: %d %s", resp.StatusCode, string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("provider returned empty action")
	}
	return game.ParseAction(content), nil
}
