package llmtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	maxTakeaways = 8
	maxKeyTerms  = 12
)

// KeyTerm is a term/definition pair surfaced alongside a summary.
type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// SummaryPayload is the strict shape of a normalized document summary.
type SummaryPayload struct {
	Summary   string    `json:"summary"`
	Takeaways []string  `json:"takeaways"`
	KeyTerms  []KeyTerm `json:"keyTerms"`
}

// NormalizeSummary validates and repairs a salvaged summary object. A
// non-object input yields an empty payload. Sectioned summaries (an object of
// section name to content) are flattened to "## <section>" blocks in source
// order before sanitization; takeaways are capped at 8 and key terms at 12.
func NormalizeSummary(raw json.RawMessage, includeKeyTerms bool) SummaryPayload {
	payload := SummaryPayload{
		Takeaways: []string{},
		KeyTerms:  []KeyTerm{},
	}

	var parsed struct {
		Summary   json.RawMessage `json:"summary"`
		Takeaways []interface{}   `json:"takeaways"`
		KeyTerms  []interface{}   `json:"keyTerms"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return payload
	}

	payload.Summary = Sanitize(summaryText(parsed.Summary))

	for _, entry := range parsed.Takeaways {
		if len(payload.Takeaways) == maxTakeaways {
			break
		}
		s := strings.TrimSpace(coerceString(entry))
		if s != "" {
			payload.Takeaways = append(payload.Takeaways, s)
		}
	}

	if includeKeyTerms {
		for _, entry := range parsed.KeyTerms {
			if len(payload.KeyTerms) == maxKeyTerms {
				break
			}
			fields, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			term := strings.TrimSpace(coerceString(fields["term"]))
			definition := strings.TrimSpace(coerceString(fields["definition"]))
			if term == "" || definition == "" {
				continue
			}
			payload.KeyTerms = append(payload.KeyTerms, KeyTerm{Term: term, Definition: definition})
		}
	}

	return payload
}

// summaryText renders the raw summary value to text. A plain string passes
// through; an object of section name to content becomes "## <section>"
// blocks, keeping the order the model wrote them in.
func summaryText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}

	// Walk the object with a token decoder so section order survives; a
	// generic map would shuffle it.
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return ""
	}

	var sections []string
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			break
		}
		name, _ := keyToken.(string)

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			break
		}

		content := ""
		switch v := value.(type) {
		case string:
			content = v
		case nil:
		default:
			content = fmt.Sprint(v)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("## %s\n%s", name, content))
	}

	return strings.Join(sections, "\n\n")
}
