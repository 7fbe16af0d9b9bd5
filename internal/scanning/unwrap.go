package scanning

import (
	"encoding/json"
	"strings"
)

// extractMessageText pulls the assistant's textual answer out of a
// chat-completions response body. Providers disagree on the shape of
// message.content (a plain string, or a list of typed parts), and OCR text
// is sometimes legitimately delivered through the alternate part shapes, so
// the shapes are tried in order and the raw body is surfaced verbatim as a
// last resort instead of an error — the caller can still inspect what the
// service actually returned.
func extractMessageText(body []byte) string {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		if text := strings.TrimSpace(messageContentText(decoded)); text != "" {
			return text
		}
	}
	return string(body)
}

// messageContentText walks choices[0].message.content, checking every shape
// before access. An empty result means no usable text was found.
func messageContentText(decoded any) string {
	envelope, ok := decoded.(map[string]any)
	if !ok {
		return ""
	}
	choices, ok := envelope["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return ""
	}

	switch content := message["content"].(type) {
	case string:
		return content
	case []any:
		var acc strings.Builder
		for _, raw := range content {
			part, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			kind, _ := part["type"].(string)
			if kind != "output_text" && kind != "text" {
				continue
			}
			if text, ok := part["text"].(string); ok {
				acc.WriteString(text)
			}
		}
		return acc.String()
	default:
		return ""
	}
}
