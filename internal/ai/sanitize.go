package ai

import "strings"

// SanitizeJSON isolates the JSON object embedded in a model reply. Markdown
// fences and surrounding prose are dropped; "{}" is returned when no object
// is present. The result may still fail to parse.
func SanitizeJSON(raw string) string {
	s, ok := ExtractJSON(raw)
	if !ok {
		return "{}"
	}
	return s
}

// ExtractJSON is SanitizeJSON reporting whether an object was found at all.
func ExtractJSON(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		if i := strings.IndexByte(cleaned, '\n'); i >= 0 {
			cleaned = cleaned[i+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(cleaned, '}')
	if end <= start {
		// truncated reply; hand it on so the parser rejects it
		return cleaned[start:], true
	}
	return cleaned[start : end+1], true
}
