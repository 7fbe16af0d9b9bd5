package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fisokur/fisokur/internal/receipt"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1/chat/completions"
	defaultModel       = "gpt-4o-mini"
	defaultVisionModel = "gpt-4o"
)

// defaultOCRPrompt is the plain-text mode system instruction, used unless
// the caller supplies their own.
const defaultOCRPrompt = "You are an OCR engine. Extract all readable text from the image and return only that text, with no commentary."

// receiptSchemaPrompt is the schema-constrained system instruction. It is
// fixed and not overridable: the downstream coercion depends on exactly
// these field names.
const receiptSchemaPrompt = `You are extracting accounting data from a receipt or invoice image. Respond with a single JSON object and nothing else — no prose, no markdown.

The object must have exactly these keys:
{
  "belge_numarasi": "",   // document number, string
  "harcama_tutari": 0.0,  // total amount, number
  "para_birimi": "",      // currency code, string
  "kdv_tutari": 0.0,      // VAT amount, number
  "urunler": [            // line items, may be empty
    {"ad": "", "adet": 0.0, "birim_fiyat": 0.0}
  ]
}

Rules:
- Numeric fields must be JSON numbers, not numeric strings.
- If a value cannot be read, use "" for strings, 0 for numbers and [] for urunler.
- Never add keys that are not listed above.`

// OpenAIConfig holds the settings for an OpenAI-compatible engine, resolved
// once at construction. APIKey is the only required field.
type OpenAIConfig struct {
	APIKey string

	// BaseURL is the full chat-completions endpoint. Defaults to the OpenAI
	// endpoint; any OpenAI-compatible service works.
	BaseURL string

	// Model is the text model id. Used for vision calls only when its name
	// already denotes a vision-capable family.
	Model string

	// VisionModel overrides the model used for image requests.
	VisionModel string
}

// OpenAI implements the Extractor interface against any OpenAI-compatible
// chat-completions API.
type OpenAI struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAI creates a new OpenAI engine. It fails with *ConfigError when no
// API key is configured; no network call is ever attempted without one.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Missing: "api key"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	return &OpenAI{
		cfg: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second, // vision models can be slow on large photos
		},
	}, nil
}

// chatRequest is the outbound chat-completions payload. Temperature and
// Stream are serialized unconditionally: the pipeline consumes exactly one
// complete, deterministic response.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// visionModel resolves the model id for image requests: the explicit
// override wins, then the text model when it is already vision-capable,
// then the hard default.
func (o *OpenAI) visionModel() string {
	if o.cfg.VisionModel != "" {
		return o.cfg.VisionModel
	}
	if strings.Contains(o.cfg.Model, "gpt-4o") || strings.Contains(o.cfg.Model, "vision") {
		return o.cfg.Model
	}
	return defaultVisionModel
}

// buildVisionRequest constructs the two-message multimodal payload: a
// system instruction, then the user task text alongside the image embedded
// as a base64 data URL.
func (o *OpenAI) buildVisionRequest(system, task string, img Image) chatRequest {
	dataURL := makeDataURL(InferMIME(img.Name), base64.StdEncoding.EncodeToString(img.Data))

	return chatRequest{
		Model: o.visionModel(),
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: []contentPart{{Type: "text", Text: system}},
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: task},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
	}
}

// complete performs the single HTTP round-trip and returns the raw response
// body. Non-2xx statuses and network failures come back as *TransportError;
// the body is never interpreted here.
func (o *OpenAI) complete(ctx context.Context, req chatRequest) ([]byte, error) {
	if o.cfg.APIKey == "" {
		return nil, &ConfigError{Missing: "api key"}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// ExtractText runs free-form OCR on the image. The caller's instruction
// replaces the default system prompt when non-empty after trimming. The
// result is always a string: if the response carries no recognizable
// message text, the raw body is returned for inspection.
func (o *OpenAI) ExtractText(ctx context.Context, img Image, instruction string) (string, error) {
	system := defaultOCRPrompt
	if s := strings.TrimSpace(instruction); s != "" {
		system = s
	}

	body, err := o.complete(ctx, o.buildVisionRequest(system, "Extract the text from this image.", img))
	if err != nil {
		return "", err
	}

	return extractMessageText(body), nil
}

// ExtractReceipt extracts a typed receipt record from the image. The model
// reply is unwrapped, the JSON candidate isolated and coerced; a malformed
// reply yields an all-default record, never an error.
func (o *OpenAI) ExtractReceipt(ctx context.Context, img Image) (receipt.Record, error) {
	body, err := o.complete(ctx, o.buildVisionRequest(receiptSchemaPrompt, "Extract the receipt data from this image. Respond with JSON only.", img))
	if err != nil {
		return receipt.Record{}, err
	}

	text := extractMessageText(body)
	return receipt.Coerce(receipt.LocateJSON(text)), nil
}

// Close closes the engine (no-op for the shared HTTP client).
func (o *OpenAI) Close() error {
	return nil
}
