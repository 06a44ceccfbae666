package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
)

var (
	htmlMarker = regexp.MustCompile(`(?i)<(html|body|div|p|br|span|table|tr|td|a|b|i|strong|em|ul|ol|li|blockquote|h[1-6])[\s/>]`)
	spaceRun   = regexp.MustCompile(`[\s\v\x{00a0}]+`)
)

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true, "footer": true,
	"ul": true, "ol": true, "table": true, "tr": true, "pre": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// BodyRenderer turns email bodies into terminal text. Plain bodies keep
// their line structure; HTML bodies are flattened with goquery.
type BodyRenderer struct{}

var _ ports.BodyRenderer = BodyRenderer{}

// NewBodyRenderer returns the HTML-aware renderer.
func NewBodyRenderer() BodyRenderer {
	return BodyRenderer{}
}

// Render returns body as readable text.
func (BodyRenderer) Render(body string) string {
	if !htmlMarker.MatchString(body) {
		return normalizeText(body)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return normalizeText(body)
	}
	doc.Find("script, style, head, title").Remove()

	w := &textWriter{}
	walk(w, doc.Find("body").First())
	return normalizeText(w.String())
}

func walk(w *textWriter, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch name {
		case "#text":
			text := spaceRun.ReplaceAllString(s.Text(), " ")
			if text == " " && (w.b.Len() == 0 || w.last == '\n') {
				return
			}
			w.WriteString(text)
		case "#comment":
		case "br":
			w.WriteString("\n")
		case "li":
			w.Newline()
			w.WriteString("- ")
			walk(w, s)
			w.Newline()
		case "a":
			text := strings.TrimSpace(spaceRun.ReplaceAllString(s.Text(), " "))
			w.WriteString(text)
			href, _ := s.Attr("href")
			href = strings.TrimSpace(href)
			if href != "" && href != text && !strings.HasPrefix(href, "mailto:") && !strings.HasPrefix(href, "#") {
				w.WriteString(" (" + href + ")")
			}
		case "blockquote":
			inner := &textWriter{}
			walk(inner, s)
			w.Newline()
			for _, line := range strings.Split(normalizeText(inner.String()), "\n") {
				w.WriteString("> " + line + "\n")
			}
		default:
			if blockElements[name] {
				w.Newline()
				walk(w, s)
				w.Newline()
				return
			}
			walk(w, s)
		}
	})
}

// normalizeText trims every line and folds runs of blank lines into one.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

type textWriter struct {
	b    strings.Builder
	last byte
}

func (w *textWriter) WriteString(s string) {
	if s == "" {
		return
	}
	w.b.WriteString(s)
	w.last = s[len(s)-1]
}

func (w *textWriter) Newline() {
	if w.b.Len() > 0 && w.last != '\n' {
		w.WriteString("\n")
	}
}

func (w *textWriter) String() string {
	return w.b.String()
}
