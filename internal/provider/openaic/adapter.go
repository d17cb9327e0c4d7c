// Package openaic adapts backends that speak the OpenAI-compatible chat
// completions wire format, which covers most of the free-tier catalog.
package openaic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/booomerangs/relay-api/internal/httpclient"
	"github.com/booomerangs/relay-api/internal/provider"
)

func init() {
	provider.Register("openaic", NewAdapter)
}

type Adapter struct {
	settings provider.Settings
	client   *http.Client
}

func NewAdapter(settings provider.Settings) (provider.Provider, error) {
	if settings.BaseURL == "" {
		return nil, fmt.Errorf("openaic adapter %s: base URL required", settings.Name)
	}
	return &Adapter{
		settings: settings,
		// Per-call deadlines come from the dispatcher's context; this is
		// only a hard upper bound against leaked connections.
		client: &http.Client{Timeout: 90 * time.Second},
	}, nil
}

func (a *Adapter) Name() string {
	return a.settings.Name
}

func (a *Adapter) Tier() provider.Tier {
	return a.settings.Tier
}

func (a *Adapter) DefaultModel() string {
	return a.settings.DefaultModel
}

type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletion struct {
	Choices []struct {
		Message *chatMessage `json:"message,omitempty"`
		Delta   *chatMessage `json:"delta,omitempty"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *Adapter) headers() map[string]string {
	h := map[string]string{}
	if a.settings.APIKeyEnv != "" {
		if key := os.Getenv(a.settings.APIKeyEnv); key != "" {
			h["Authorization"] = "Bearer " + key
		}
	}
	return h
}

func (a *Adapter) model(req *provider.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return a.settings.DefaultModel
}

// handleUpstreamError flattens a transport failure into something the
// dispatcher can classify from text alone.
func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return err
	}

	var apiErr chatCompletion
	if jsonErr := json.Unmarshal(upstreamErr.Body, &apiErr); jsonErr == nil && apiErr.Error != nil {
		return fmt.Errorf("%s: %s", a.settings.Name, apiErr.Error.Message)
	}

	return fmt.Errorf("%s: status %d: %s", a.settings.Name, upstreamErr.StatusCode, strings.TrimSpace(string(upstreamErr.Body)))
}

func (a *Adapter) Complete(ctx context.Context, req *provider.Request) (string, error) {
	payload := chatPayload{
		Model:    a.model(req),
		Messages: []chatMessage{{Role: "user", Content: req.Prompt}},
	}

	url := strings.TrimRight(a.settings.BaseURL, "/") + "/chat/completions"

	var resp chatCompletion
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, a.headers(), payload, &resp); err != nil {
		return "", a.handleUpstreamError(err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("%s: %s", a.settings.Name, resp.Error.Message)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", fmt.Errorf("%s: empty completion", a.settings.Name)
	}

	return resp.Choices[0].Message.Content, nil
}

func (a *Adapter) Stream(ctx context.Context, req *provider.Request) (<-chan provider.Chunk, error) {
	ch := make(chan provider.Chunk)

	payload := chatPayload{
		Model:    a.model(req),
		Messages: []chatMessage{{Role: "user", Content: req.Prompt}},
		Stream:   true,
	}
	url := strings.TrimRight(a.settings.BaseURL, "/") + "/chat/completions"

	go func() {
		defer close(ch)

		err := httpclient.StreamRequest(ctx, a.client, "POST", url, a.headers(), payload, func(line string) error {
			if !strings.HasPrefix(line, "data: ") {
				return nil
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return nil
			}

			// Block pages arrive as raw HTML instead of SSE JSON. Pass
			// the line through untouched so the relay's sniffer sees it.
			var chunk chatCompletion
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				select {
				case ch <- provider.Chunk{Text: data}:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}

			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
				return nil
			}
			if chunk.Choices[0].Delta.Content == "" {
				return nil
			}

			select {
			case ch <- provider.Chunk{Text: chunk.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil {
			select {
			case ch <- provider.Chunk{Err: a.handleUpstreamError(err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

func (a *Adapter) Health(ctx context.Context) error {
	url := strings.TrimRight(a.settings.BaseURL, "/") + "/models"

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	for k, v := range a.headers() {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}
