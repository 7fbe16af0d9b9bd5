package scanning

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/fisokur/fisokur/internal/receipt"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini implements the Extractor interface using Google Gemini. It shares
// the schema instruction and coercion pipeline with the OpenAI engine; only
// the transport differs.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini engine. A missing API key is a
// *ConfigError, raised before any client is constructed.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &ConfigError{Missing: "gemini api key"}
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{client: client, model: model}, nil
}

// imageFormat maps the inferred media type to the bare format suffix genai
// expects ("jpeg", "png", ...). Anything unrecognized is sent as png, which
// is what PrepareImage produces for exotic inputs.
func imageFormat(img Image) string {
	mime := InferMIME(img.Name)
	if format, ok := strings.CutPrefix(mime, "image/"); ok {
		return format
	}
	return "png"
}

func (g *Gemini) generate(ctx context.Context, img Image, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData(imageFormat(img), img.Data),
		genai.Text(prompt),
	)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	// Accumulate the text parts of the first candidate. An empty result is
	// not an error here: the caller degrades it the same way as any other
	// unusable reply.
	var acc strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				acc.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(acc.String()), nil
}

// ExtractText runs free-form OCR on the image via Gemini.
func (g *Gemini) ExtractText(ctx context.Context, img Image, instruction string) (string, error) {
	prompt := defaultOCRPrompt
	if s := strings.TrimSpace(instruction); s != "" {
		prompt = s
	}
	return g.generate(ctx, img, prompt)
}

// ExtractReceipt extracts a typed receipt record from the image via Gemini.
func (g *Gemini) ExtractReceipt(ctx context.Context, img Image) (receipt.Record, error) {
	text, err := g.generate(ctx, img, receiptSchemaPrompt)
	if err != nil {
		return receipt.Record{}, err
	}
	return receipt.Coerce(receipt.LocateJSON(text)), nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
