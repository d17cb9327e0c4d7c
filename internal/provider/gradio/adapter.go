// Package gradio adapts HuggingFace Space backends exposed through the
// gradio call API. The Qwen demo spaces in the catalog all use it.
package gradio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/booomerangs/relay-api/internal/httpclient"
	"github.com/booomerangs/relay-api/internal/provider"
)

func init() {
	provider.Register("gradio", NewAdapter)
}

type Adapter struct {
	settings provider.Settings
	client   *http.Client
}

func NewAdapter(settings provider.Settings) (provider.Provider, error) {
	if settings.BaseURL == "" {
		return nil, fmt.Errorf("gradio adapter %s: base URL required", settings.Name)
	}
	return &Adapter{
		settings: settings,
		client:   &http.Client{Timeout: 90 * time.Second},
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

type callPayload struct {
	Data []interface{} `json:"data"`
}

type callTicket struct {
	EventID string `json:"event_id"`
}

// submit posts the prompt and returns the event id for the result stream.
func (a *Adapter) submit(ctx context.Context, prompt string) (string, error) {
	url := strings.TrimRight(a.settings.BaseURL, "/") + "/gradio_api/call/chat"

	var ticket callTicket
	payload := callPayload{Data: []interface{}{prompt}}
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, nil, payload, &ticket); err != nil {
		return "", fmt.Errorf("%s: submit failed: %w", a.settings.Name, err)
	}
	if ticket.EventID == "" {
		return "", fmt.Errorf("%s: submit returned no event id", a.settings.Name)
	}
	return ticket.EventID, nil
}

// decodeEvent pulls the first string out of a gradio "data: [...]" line.
// Spaces stream cumulative text, so each event carries the full text so
// far.
func decodeEvent(line string) (string, bool) {
	if !strings.HasPrefix(line, "data: ") {
		return "", false
	}
	raw := strings.TrimPrefix(line, "data: ")

	var fields []interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		// Not gradio JSON. Surface raw so block pages stay detectable.
		return raw, true
	}
	if len(fields) == 0 {
		return "", false
	}
	if s, ok := fields[0].(string); ok {
		return s, true
	}
	return "", false
}

func (a *Adapter) Complete(ctx context.Context, req *provider.Request) (string, error) {
	eventID, err := a.submit(ctx, req.Prompt)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/gradio_api/call/chat/%s", strings.TrimRight(a.settings.BaseURL, "/"), eventID)

	var last string
	err = httpclient.StreamRequest(ctx, a.client, "GET", url, nil, nil, func(line string) error {
		if text, ok := decodeEvent(line); ok {
			last = text
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.settings.Name, err)
	}
	if last == "" {
		return "", fmt.Errorf("%s: empty completion", a.settings.Name)
	}
	return last, nil
}

func (a *Adapter) Stream(ctx context.Context, req *provider.Request) (<-chan provider.Chunk, error) {
	eventID, err := a.submit(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/gradio_api/call/chat/%s", strings.TrimRight(a.settings.BaseURL, "/"), eventID)
	ch := make(chan provider.Chunk)

	go func() {
		defer close(ch)

		// The space repeats the whole text on every event; emit only the
		// suffix beyond what was already sent.
		var sent string
		err := httpclient.StreamRequest(ctx, a.client, "GET", url, nil, nil, func(line string) error {
			text, ok := decodeEvent(line)
			if !ok {
				return nil
			}

			delta := text
			if strings.HasPrefix(text, sent) {
				delta = text[len(sent):]
			}
			if delta == "" {
				return nil
			}
			sent = text

			select {
			case ch <- provider.Chunk{Text: delta}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil {
			select {
			case ch <- provider.Chunk{Err: fmt.Errorf("%s: %w", a.settings.Name, err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

func (a *Adapter) Health(ctx context.Context) error {
	url := strings.TrimRight(a.settings.BaseURL, "/") + "/config"

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
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
