package format

import (
	"fmt"
	"html"
	"strings"
)

const (
	errorContainerStyle = `font-family: 'Segoe UI', Arial, sans-serif; padding: 20px; ` +
		`border-left: 5px solid #e74c3c; background-color: #fadbd8; margin: 15px 0; ` +
		`border-radius: 0 5px 5px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1);`
	errorTitleStyle     = `color: #c0392b; margin-top: 0; font-size: 18px;`
	errorParagraphStyle = `margin: 10px 0; line-height: 1.5;`

	// ErrorTitle is the heading of every error fragment.
	ErrorTitle = "Error Processing Request"

	// ErrorHint is the remediation hint shown under the failure message.
	ErrorHint = "This may be due to a connection timeout with the model provider. " +
		"Please try again or check your network connection."
)

var errorTemplate = `<div style="` + errorContainerStyle + `">
    <h3 style="` + errorTitleStyle + `">` + ErrorTitle + `</h3>
    <p style="` + errorParagraphStyle + `">%s</p>
    <p style="` + errorParagraphStyle + `">` + ErrorHint + `</p>
</div>`

// ErrorFragment renders err as the styled error block. The message is HTML-escaped and
// folded onto one line, so the fragment itself always passes [IsValid].
func ErrorFragment(err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return fmt.Sprintf(errorTemplate, escapeMessage(msg))
}

func escapeMessage(msg string) string {
	msg = strings.Join(strings.Fields(msg), " ")
	msg = html.EscapeString(msg)
	return strings.ReplaceAll(msg, "`", "&#96;")
}
