package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
)

// NoteRenderer converts agent-written notes (markdown, GFM flavour) into the
// HTML attached to CRM notes. Raw HTML in the note is not passed through.
type NoteRenderer struct {
	md goldmark.Markdown
}

var _ ports.NoteRenderer = (*NoteRenderer)(nil)

// NewNoteRenderer builds a renderer with GFM and hard line breaks, since
// agents type summaries line by line.
func NewNoteRenderer() *NoteRenderer {
	return &NoteRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// RenderHTML returns the HTML rendition of note.
func (r *NoteRenderer) RenderHTML(note string) (string, error) {
	if strings.TrimSpace(note) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(note), &buf); err != nil {
		return "", fmt.Errorf("convert note: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
