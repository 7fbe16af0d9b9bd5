package receipt

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// fencedBlock matches the first markdown code fence pair, with an optional
// language tag after the opening fence.
var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*\\n?(.*?)```")

// LocateJSON isolates the most plausible JSON object inside a model reply.
// Models routinely wrap JSON in prose or markdown fences, so this is a
// best-effort heuristic, not a grammar scan:
//
//  1. the content of the first fenced code block, if any;
//  2. otherwise the span from the first "{" to the last "}" inclusive;
//  3. otherwise the trimmed input unchanged, which will simply fail to
//     parse downstream and coerce to defaults.
func LocateJSON(text string) string {
	text = strings.TrimSpace(text)

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

// Coerce maps an arbitrary JSON candidate onto a Record. It is total:
// whatever the model returned — prose, a bare number, null, a list, or a
// half-shaped object — the result has every field present and type-correct.
// Absence degrades to zero values, never to an error.
func Coerce(candidate string) Record {
	var decoded any
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		decoded = nil
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}

	rec := Record{
		DocumentNumber: asString(obj["belge_numarasi"]),
		TotalAmount:    asNumber(obj["harcama_tutari"]),
		Currency:       asString(obj["para_birimi"]),
		VATAmount:      asNumber(obj["kdv_tutari"]),
		LineItems:      []LineItem{},
	}

	items, ok := obj["urunler"].([]any)
	if !ok {
		return rec
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			item = map[string]any{}
		}
		rec.LineItems = append(rec.LineItems, LineItem{
			Name:      asString(item["ad"]),
			Quantity:  asNumber(item["adet"]),
			UnitPrice: asNumber(item["birim_fiyat"]),
		})
	}

	return rec
}

// asString passes a value through only when it already is a string.
func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// asNumber accepts JSON numbers as-is and parses numeric strings after a
// comma-to-period decimal replace. The replace is a single global one, so a
// thousands-separated value like "1.234,56" becomes "1.234.56" and falls
// back to zero rather than parsing to 1234.56.
func asNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
