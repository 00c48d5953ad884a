package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/sling"

	"github.com/pfrederiksen/grantflow/internal/extract"
	"github.com/pfrederiksen/grantflow/internal/grant"
)

const (
	DefaultEndpoint = "http://localhost:11434"
	DefaultModel    = "qwen2.5:14b"
	DefaultTimeout  = 40 * time.Second
)

// ErrEmptyResponse is returned when the server answers without a generation
var ErrEmptyResponse = errors.New("empty model response")

const promptTemplate = `Extract data from this grant page text. Return ONLY a JSON object:
{
    "deadline": "YYYY-MM-DD or 'Rolling'",
    "amount": "Max dollar amount (e.g. 5000)",
    "eligibility": "Brief summary (e.g. PhD students)",
    "tldr": "One sentence summary of who this is for and why they want it."
}

Text:
%s
`

// Options configures a Client
type Options struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// Client calls the /api/generate endpoint
type Client struct {
	base  *sling.Sling
	model string
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type apiError struct {
	Message string `json:"error"`
}

// grantFields is the JSON object the prompt asks for
type grantFields struct {
	Deadline    string       `json:"deadline"`
	Amount      grant.Amount `json:"amount"`
	Eligibility string       `json:"eligibility"`
	TLDR        string       `json:"tldr"`
}

// New creates a Client, filling unset options with defaults
func New(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	base := sling.New().
		Client(httpClient).
		Base(strings.TrimRight(opts.Endpoint, "/") + "/").
		Set("Accept", "application/json")

	return &Client{base: base, model: opts.Model}
}

// Extract sends text to the model and decodes the fields it returns
func (c *Client) Extract(ctx context.Context, text string) (extract.ModelFields, error) {
	body := generateRequest{
		Model:  c.model,
		Prompt: fmt.Sprintf(promptTemplate, text),
		Stream: false,
		Format: "json",
	}

	req, err := c.base.New().Post("api/generate").BodyJSON(body).Request()
	if err != nil {
		return extract.ModelFields{}, fmt.Errorf("building generate request: %w", err)
	}

	var out generateResponse
	var apiErr apiError
	resp, err := c.base.Do(req.WithContext(ctx), &out, &apiErr)
	if err != nil {
		return extract.ModelFields{}, fmt.Errorf("calling generate: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if apiErr.Message != "" {
			return extract.ModelFields{}, fmt.Errorf("generate returned status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return extract.ModelFields{}, fmt.Errorf("generate returned status %d", resp.StatusCode)
	}

	return parseFields(out.Response)
}

// parseFields decodes the generated JSON object
func parseFields(generated string) (extract.ModelFields, error) {
	generated = strings.TrimSpace(generated)
	if generated == "" {
		return extract.ModelFields{}, ErrEmptyResponse
	}

	var gf grantFields
	if err := json.Unmarshal([]byte(generated), &gf); err != nil {
		return extract.ModelFields{}, fmt.Errorf("decoding model output: %w", err)
	}

	return extract.ModelFields{
		Deadline:    clean(gf.Deadline),
		Amount:      grant.Amount(clean(string(gf.Amount))),
		Eligibility: clean(gf.Eligibility),
		TLDR:        clean(gf.TLDR),
	}, nil
}

// clean drops the placeholder values models use for "not found"
func clean(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none", "n/a", "unknown", "not specified":
		return ""
	}
	return s
}
