package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/veil-social/veil/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint
// (POST {host}/v1/chat/completions).
type OpenAIClient struct {
	Client   *http.Client
	Host     string
	APIToken string
	Model    string
	Limiter  *rate.Limiter
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAIClient(host, token, model string) *OpenAIClient {
	return &OpenAIClient{
		Client:   util.RobustHTTPClient(),
		Host:     host,
		APIToken: token,
		Model:    model,
	}
}

func (oc *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {

	if oc.Limiter != nil {
		if err := oc.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	msgs := make([]chatMessage, 0, len(req.System)+1)
	for _, sys := range req.System {
		msgs = append(msgs, chatMessage{Role: "system", Content: sys})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.User})

	body, err := json.Marshal(chatRequest{Model: oc.Model, Messages: msgs})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.Host+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", oc.APIToken))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "veil/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		completionAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := oc.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()

	completionAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return "", fmt.Errorf("completion request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion resp body: %w", err)
	}

	var respObj chatResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return "", fmt.Errorf("failed to parse completion resp JSON: %w", err)
	}
	if len(respObj.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return respObj.Choices[0].Message.Content, nil
}
