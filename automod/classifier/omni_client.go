package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/veil-social/veil/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

// OmniClient talks to an OpenAI-compatible moderation endpoint
// (POST {host}/v1/moderations) and maps the response to a single boolean.
type OmniClient struct {
	Client   *http.Client
	Host     string
	APIToken string
	Model    string
	// optional client-side request limiter
	Limiter *rate.Limiter
}

type moderationInput struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *moderationImageURL `json:"image_url,omitempty"`
}

type moderationImageURL struct {
	URL string `json:"url"`
}

type moderationRequest struct {
	Model string            `json:"model"`
	Input []moderationInput `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged bool `json:"flagged"`
	} `json:"results"`
}

func NewOmniClient(host, token, model string) *OmniClient {
	return &OmniClient{
		Client:   util.RobustHTTPClient(),
		Host:     host,
		APIToken: token,
		Model:    model,
	}
}

func (oc *OmniClient) Flagged(ctx context.Context, text, image string) (bool, error) {

	var input []moderationInput
	if text != "" {
		input = append(input, moderationInput{Type: "text", Text: text})
	}
	if image != "" {
		input = append(input, moderationInput{Type: "image_url", ImageURL: &moderationImageURL{URL: image}})
	}
	if len(input) == 0 {
		return false, nil
	}

	if oc.Limiter != nil {
		if err := oc.Limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	body, err := json.Marshal(moderationRequest{Model: oc.Model, Input: input})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.Host+"/v1/moderations", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", oc.APIToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "veil/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		classifierAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := oc.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("moderation request failed: %w", err)
	}
	defer res.Body.Close()

	classifierAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return false, fmt.Errorf("moderation request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read moderation resp body: %w", err)
	}

	var respObj moderationResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return false, fmt.Errorf("failed to parse moderation resp JSON: %w", err)
	}
	if len(respObj.Results) == 0 {
		return false, fmt.Errorf("moderation response contained no results")
	}

	flagged := respObj.Results[0].Flagged
	slog.Debug("classifier response", "flagged", flagged, "model", oc.Model)
	return flagged, nil
}
