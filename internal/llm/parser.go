package llm

import (
	"encoding/json"
	"strings"

	"github.com/Veraticus/majordomo/internal/model"
)

// ParseDraft converts raw completion text into an action draft. The text is
// an untyped external boundary: malformed, empty, or unrecognized responses
// all map to an unknown action, never to an error. Field values are coerced
// from whatever scalar the model produced; numbers are accepted where the
// prompt asked for strings.
func ParseDraft(content, utterance string) model.ActionDraft {
	unknown := model.ActionDraft{Type: model.ActionUnknown, Utterance: utterance}

	content = cleanMarkdownWrapper(content)

	// Extract the outermost JSON object; models sometimes wrap it in prose.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return unknown
	}

	dec := json.NewDecoder(strings.NewReader(content[start : end+1]))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return unknown
	}

	action, _ := payload["action"].(string)
	actionType := model.ParseActionType(action)
	if actionType == model.ActionUnknown {
		return unknown
	}

	confidence := numberValue(payload["confidence"])
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	fields, _ := payload["fields"].(map[string]any)

	return model.ActionDraft{
		Type:       actionType,
		Utterance:  utterance,
		Fields:     parseFields(fields),
		Confidence: confidence,
	}
}

// cleanMarkdownWrapper strips ```json fences some models insist on.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}

func parseFields(fields map[string]any) model.DraftFields {
	return model.DraftFields{
		Amount:   stringValue(fields["amount"]),
		Currency: stringValue(fields["currency"]),
		Category: stringValue(fields["category"]),
		Note:     stringValue(fields["note"]),
		Date:     stringValue(fields["date"]),
		Name:     stringValue(fields["name"]),
		Cost:     stringValue(fields["cost"]),
		Cycle:    stringValue(fields["cycle"]),
		Title:    stringValue(fields["title"]),
		Priority: stringValue(fields["priority"]),
		Due:      stringValue(fields["due"]),
		Status:   stringValue(fields["status"]),
	}
}

// stringValue renders a JSON scalar as the string the validator expects.
// Non-scalar or absent values become empty.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func numberValue(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return t
	default:
		return 0
	}
}
