package llm

import "strings"

// ExtractJSON pulls a JSON object out of an LLM reply. Models frequently wrap
// structured output in markdown fences or surround it with prose, so the
// extraction is deliberately lenient: strip fences first, then fall back to
// the outermost brace pair.
func ExtractJSON(content string) string {
	if body := extractFromCodeBlock(content, "```json", "```"); body != "" {
		return body
	}
	if body := extractFromCodeBlock(content, "```", "```"); body != "" {
		return strings.TrimSpace(body)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}

func extractFromCodeBlock(content, startMarker, endMarker string) string {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return ""
	}

	contentStart := startIdx + len(startMarker)
	// Skip newline after marker
	if contentStart < len(content) && content[contentStart] == '\n' {
		contentStart++
	}

	endIdx := strings.Index(content[contentStart:], endMarker)
	if endIdx == -1 {
		return ""
	}

	return strings.TrimSpace(content[contentStart : contentStart+endIdx])
}
