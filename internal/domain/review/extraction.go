package review

import (
	"encoding/json"
	"strings"
)

// Extraction is the canonical shape every submission converges to before
// review, regardless of whether it came from an LLM response or a manual
// form. All slices are non-nil.
type Extraction struct {
	Vulnerabilities         []Vulnerability          `json:"vulnerabilities"`
	OptionsForConsideration []OptionForConsideration `json:"options_for_consideration"`
	Sources                 []Source                 `json:"sources"`
}

type Vulnerability struct {
	Title      string `json:"vulnerability"`
	Discipline string `json:"discipline,omitempty"`
	Severity   string `json:"severity,omitempty"`
}

type OptionForConsideration struct {
	OptionText              string `json:"option_text"`
	Discipline              string `json:"discipline,omitempty"`
	AssociatedVulnerability string `json:"associated_vulnerability,omitempty"`
}

type Source struct {
	SourceText      string `json:"source_text"`
	URL             string `json:"url,omitempty"`
	Organization    string `json:"organization,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
}

func NewExtraction() Extraction {
	return Extraction{
		Vulnerabilities:         []Vulnerability{},
		OptionsForConsideration: []OptionForConsideration{},
		Sources:                 []Source{},
	}
}

func (e Extraction) IsEmpty() bool {
	return len(e.Vulnerabilities) == 0 && len(e.OptionsForConsideration) == 0
}

// ExtractionFromSubmissionData rebuilds the canonical extraction from a
// submission's data blob. An enhanced_extraction object written by the
// enrichment step wins; otherwise the manual form fields are used. Data
// blobs are historically inconsistent about key names, so every field is
// read through the alias list.
func ExtractionFromSubmissionData(subType SubmissionType, data []byte) Extraction {
	out := NewExtraction()
	if len(data) == 0 {
		return out
	}

	var blob map[string]any
	if err := json.Unmarshal(data, &blob); err != nil {
		return out
	}

	if enhanced, ok := blob["enhanced_extraction"]; ok {
		if raw, err := json.Marshal(enhanced); err == nil {
			if parsed, ok := decodeExtraction(raw); ok && !parsed.IsEmpty() {
				return parsed
			}
		}
	}

	discipline := stringField(blob, "discipline")

	switch subType {
	case TypeVulnerability:
		if title := stringField(blob, "vulnerability", "vulnerability_name", "title"); title != "" {
			out.Vulnerabilities = append(out.Vulnerabilities, Vulnerability{
				Title:      title,
				Discipline: discipline,
				Severity:   stringField(blob, "severity"),
			})
		}
	case TypeOFC:
		if text := stringField(blob, "option_text", "ofc_text", "option"); text != "" {
			out.OptionsForConsideration = append(out.OptionsForConsideration, OptionForConsideration{
				OptionText:              text,
				Discipline:              discipline,
				AssociatedVulnerability: stringField(blob, "associated_vulnerability", "vulnerability"),
			})
		}
	}

	if src := sourceFromFields(blob); src != nil {
		out.Sources = append(out.Sources, *src)
	}

	return out
}

func sourceFromFields(blob map[string]any) *Source {
	text := stringField(blob, "source_title", "source_text", "source")
	url := stringField(blob, "source_url", "url")
	if text == "" && url == "" {
		return nil
	}
	if text == "" {
		text = url
	}
	return &Source{
		SourceText:      text,
		URL:             url,
		Organization:    stringField(blob, "organization"),
		ReferenceNumber: stringField(blob, "reference_number"),
	}
}

// stringField returns the first non-empty string value among the aliases.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := m[key]
		if !ok {
			continue
		}
		if s, ok := value.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
