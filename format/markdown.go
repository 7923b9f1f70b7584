package format

import (
	"html"
	"regexp"
	"strings"
)

// Inline styles of the rendered elements.
const (
	h1Style         = `color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px;`
	h2Style         = `color: #2c3e50; border-bottom: 1px solid #3498db; padding-bottom: 8px;`
	h3Style         = `color: #2c3e50; margin-top: 15px;`
	preStyle        = `background-color: #f5f5f5; padding: 15px; border-radius: 5px; overflow-x: auto;`
	inlineCodeStyle = `background-color: #f5f5f5; padding: 2px 4px; border-radius: 3px; font-family: monospace;`
	listStyle       = `margin-left: 20px;`
)

// Stage is one named, pure rewrite step of the Markdown transformer.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Pipeline applies its stages in order.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline running the given stages in order.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Transform runs every stage over text.
func (p *Pipeline) Transform(text string) string {
	for _, s := range p.stages {
		text = s.Apply(text)
	}
	return text
}

var (
	fencedCodePattern = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)\\n```")
	inlineCodePattern = regexp.MustCompile("`([^`\\n]+)`")
	h1Pattern         = regexp.MustCompile(`(?m)^# (.+)$`)
	h2Pattern         = regexp.MustCompile(`(?m)^## (.+)$`)
	h3Pattern         = regexp.MustCompile(`(?m)^### (.+)$`)
	listItemPattern   = regexp.MustCompile(`(?m)^- (.+)$`)
	boldPattern       = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	italicPattern     = regexp.MustCompile(`\*([^*\n]+)\*`)
)

var (
	// FencedCode renders ```lang blocks as preformatted code.
	FencedCode = Stage{Name: "fenced_code", Apply: fencedCode}

	// InlineCode renders `x` spans as code.
	InlineCode = Stage{Name: "inline_code", Apply: inlineCode}

	// Headings renders "# ", "## " and "### " lines, in that order.
	Headings = Stage{Name: "headings", Apply: headings}

	// BulletLists renders "- " lines as list items grouped into lists.
	BulletLists = Stage{Name: "bullet_lists", Apply: bulletLists}

	// Paragraphs wraps remaining text lines in <p>. Lines inside <pre> are left alone.
	Paragraphs = Stage{Name: "paragraphs", Apply: paragraphs}

	// Bold renders **x** as <strong>.
	Bold = Stage{Name: "bold", Apply: bold}

	// Italic renders *x* as <em>. It must run after Bold.
	Italic = Stage{Name: "italic", Apply: italic}

	// StrayFences entity-encodes any ``` left behind by an unterminated fence.
	StrayFences = Stage{Name: "stray_fences", Apply: strayFences}
)

// DefaultPipeline returns the standard Markdown-to-HTML pipeline.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		FencedCode,
		InlineCode,
		Headings,
		BulletLists,
		Paragraphs,
		Bold,
		Italic,
		StrayFences,
	)
}

var defaultPipeline = DefaultPipeline()

// Transform converts Markdown-ish text to HTML with the default pipeline. It does not add the
// outer container; see [Wrap] and [Normalize].
func Transform(text string) string {
	return defaultPipeline.Transform(text)
}

// escapeCode makes code text inert: HTML-escaped, with the characters later stages or the
// validator react to replaced by numeric entities.
func escapeCode(code string) string {
	code = html.EscapeString(code)
	code = strings.ReplaceAll(code, "`", "&#96;")
	code = strings.ReplaceAll(code, "*", "&#42;")
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = escapeLineStart(line)
	}
	return strings.Join(lines, "\n")
}

// escapeLineStart encodes a leading '#' or '-'.
func escapeLineStart(line string) string {
	switch {
	case strings.HasPrefix(line, "#"):
		return "&#35;" + line[1:]
	case strings.HasPrefix(line, "-"):
		return "&#45;" + line[1:]
	default:
		return line
	}
}

func fencedCode(text string) string {
	return fencedCodePattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := fencedCodePattern.FindStringSubmatch(m)
		lang, code := sub[1], sub[2]
		open := "<code>"
		if lang != "" {
			open = `<code class="language-` + lang + `">`
		}
		return `<pre style="` + preStyle + `">` + open + escapeCode(code) + "</code></pre>"
	})
}

func inlineCode(text string) string {
	return inlineCodePattern.ReplaceAllStringFunc(text, func(m string) string {
		code := m[1 : len(m)-1]
		return `<code style="` + inlineCodeStyle + `">` + escapeCode(code) + "</code>"
	})
}

func headings(text string) string {
	text = h1Pattern.ReplaceAllString(text, `<h1 style="`+h1Style+`">$1</h1>`)
	text = h2Pattern.ReplaceAllString(text, `<h2 style="`+h2Style+`">$1</h2>`)
	text = h3Pattern.ReplaceAllString(text, `<h3 style="`+h3Style+`">$1</h3>`)
	return text
}

func bulletLists(text string) string {
	text = listItemPattern.ReplaceAllString(text, "<li>$1</li>")
	if !strings.Contains(text, "<li>") {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+2)
	inList := false
	for _, line := range lines {
		isItem := strings.HasPrefix(line, "<li>")
		if isItem && !inList {
			out = append(out, `<ul style="`+listStyle+`">`)
			inList = true
		}
		if !isItem && inList {
			out = append(out, "</ul>")
			inList = false
		}
		out = append(out, line)
	}
	if inList {
		out = append(out, "</ul>")
	}
	return strings.Join(out, "\n")
}

func paragraphs(text string) string {
	lines := strings.Split(text, "\n")
	inPre := false
	for i, line := range lines {
		if inPre {
			lines[i] = escapeLineStart(line)
			if strings.Contains(line, "</pre>") {
				inPre = false
			}
			continue
		}
		if strings.Contains(line, "<pre") {
			inPre = !strings.Contains(line, "</pre>")
			if strings.HasPrefix(line, "<") {
				continue
			}
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "<") {
			continue
		}
		lines[i] = "<p>" + line + "</p>"
	}
	return strings.Join(lines, "\n")
}

func bold(text string) string {
	return boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
}

func italic(text string) string {
	return italicPattern.ReplaceAllString(text, "<em>$1</em>")
}

func strayFences(text string) string {
	return strings.ReplaceAll(text, "```", "&#96;&#96;&#96;")
}
