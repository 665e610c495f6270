package review

import (
	"encoding/json"
	"strings"
)

// NormalizeLLMResponse converts raw model output into the canonical
// extraction. The response is not schema-validated upstream, so this is
// total: valid JSON is decoded with key aliasing, JSON buried in prose is
// dug out, and anything else degrades to a keyword scan over the text.
// It never fails for content reasons.
func NormalizeLLMResponse(raw string) Extraction {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NewExtraction()
	}

	if out, ok := decodeExtraction([]byte(trimmed)); ok {
		return out
	}

	if block, ok := firstJSONObject(trimmed); ok {
		if out, ok := decodeExtraction([]byte(block)); ok {
			return out
		}
	}

	return heuristicExtraction(trimmed)
}

// decodeExtraction decodes a JSON object into the canonical shape,
// tolerating the key-name drift seen in real responses (vulnerability vs
// vulnerability_name, options vs options_for_consideration, ...). ok is
// false when the bytes are not a JSON object at all.
func decodeExtraction(raw []byte) (Extraction, bool) {
	var payload struct {
		Vulnerabilities         []json.RawMessage `json:"vulnerabilities"`
		OptionsForConsideration []json.RawMessage `json:"options_for_consideration"`
		Options                 []json.RawMessage `json:"options"`
		OFCs                    []json.RawMessage `json:"ofcs"`
		Sources                 []json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Extraction{}, false
	}

	out := NewExtraction()

	for _, item := range payload.Vulnerabilities {
		fields, ok := looseObject(item)
		if !ok {
			continue
		}
		title := stringField(fields, "vulnerability", "vulnerability_name", "title", "name", "description")
		if title == "" {
			continue
		}
		out.Vulnerabilities = append(out.Vulnerabilities, Vulnerability{
			Title:      title,
			Discipline: stringField(fields, "discipline", "category"),
			Severity:   stringField(fields, "severity", "risk_level"),
		})
	}

	ofcs := payload.OptionsForConsideration
	if len(ofcs) == 0 {
		ofcs = payload.Options
	}
	if len(ofcs) == 0 {
		ofcs = payload.OFCs
	}
	for _, item := range ofcs {
		fields, ok := looseObject(item)
		if !ok {
			continue
		}
		text := stringField(fields, "option_text", "ofc_text", "option", "text", "recommendation", "description")
		if text == "" {
			continue
		}
		out.OptionsForConsideration = append(out.OptionsForConsideration, OptionForConsideration{
			OptionText:              text,
			Discipline:              stringField(fields, "discipline", "category"),
			AssociatedVulnerability: stringField(fields, "associated_vulnerability", "vulnerability", "vulnerability_name"),
		})
	}

	for _, item := range payload.Sources {
		fields, ok := looseObject(item)
		if !ok {
			continue
		}
		text := stringField(fields, "source_text", "title", "source", "name")
		url := stringField(fields, "url", "source_url", "link")
		if text == "" && url == "" {
			continue
		}
		if text == "" {
			text = url
		}
		out.Sources = append(out.Sources, Source{
			SourceText:      text,
			URL:             url,
			Organization:    stringField(fields, "organization", "publisher"),
			ReferenceNumber: stringField(fields, "reference_number", "reference"),
		})
	}

	return out, true
}

// looseObject accepts either an object or a bare string element; models
// sometimes emit ["text", "text"] instead of [{...}].
func looseObject(raw json.RawMessage) (map[string]any, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		return fields, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
		return map[string]any{"text": text, "description": text}, true
	}

	return nil, false
}

// firstJSONObject returns the first balanced {...} block, skipping braces
// inside string literals. Used when the model wraps its JSON in prose.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

var (
	vulnerabilityKeywords = []string{"vulnerabilit", "risk", "threat", "exposure", "weakness"}
	ofcKeywords           = []string{"recommend", "mitigat", "consider", "option", "should", "control"}
)

// heuristicExtraction is the deterministic fallback for unparseable model
// output: scan lines for vulnerability- and recommendation-flavored
// keywords and keep the line text as the record.
func heuristicExtraction(text string) Extraction {
	out := NewExtraction()
	seen := make(map[string]struct{})

	for _, raw := range strings.Split(text, "\n") {
		line := cleanHeuristicLine(raw)
		if len(line) < 12 {
			continue
		}

		lower := strings.ToLower(line)
		key := lower
		if _, dup := seen[key]; dup {
			continue
		}

		switch {
		case containsAny(lower, ofcKeywords):
			seen[key] = struct{}{}
			out.OptionsForConsideration = append(out.OptionsForConsideration, OptionForConsideration{OptionText: line})
		case containsAny(lower, vulnerabilityKeywords):
			seen[key] = struct{}{}
			out.Vulnerabilities = append(out.Vulnerabilities, Vulnerability{Title: line})
		}
	}

	return out
}

func cleanHeuristicLine(raw string) string {
	line := strings.TrimSpace(raw)
	line = strings.TrimLeft(line, "-*• \t")
	// Strip "1." / "12)" list markers.
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if (c == '.' || c == ')') && i > 0 {
			line = strings.TrimSpace(line[i+1:])
		}
		break
	}
	return strings.TrimSpace(strings.TrimSuffix(line, ":"))
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
