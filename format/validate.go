package format

import "strings"

// IsValid reports whether text is already a finished HTML fragment:
//
//   - the trimmed text starts with "<" and ends with ">";
//   - it contains both "<div" and "</div>";
//   - it contains no "```" fence;
//   - no line starts with "#" or "-" (leftover Markdown headings or bullets).
func IsValid(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "<") || !strings.HasSuffix(trimmed, ">") {
		return false
	}
	if !strings.Contains(trimmed, "<div") || !strings.Contains(trimmed, "</div>") {
		return false
	}
	if strings.Contains(trimmed, "```") {
		return false
	}
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			return false
		}
	}
	return true
}
