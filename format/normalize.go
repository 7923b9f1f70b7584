package format

import "strings"

const wrapperStyle = `font-family: 'Segoe UI', Arial, sans-serif; line-height: 1.6; color: #333; ` +
	`max-width: 800px; margin: 0 auto; padding: 20px;`

// Normalize returns candidate unchanged when it passes [IsValid]. Otherwise it returns the
// trimmed candidate run through [Transform] and placed in the standard container.
//
// The result always passes IsValid, so Normalize(Normalize(x)) == Normalize(x).
func Normalize(candidate string) string {
	if IsValid(candidate) {
		return candidate
	}
	return Wrap(Transform(strings.TrimSpace(candidate)))
}

// Wrap places an HTML body inside the standard styled container.
func Wrap(body string) string {
	var sb strings.Builder
	sb.Grow(len(body) + len(wrapperStyle) + 32)
	sb.WriteString(`<div style="`)
	sb.WriteString(wrapperStyle)
	sb.WriteString("\">\n")
	sb.WriteString(body)
	sb.WriteString("\n</div>")
	return sb.String()
}
