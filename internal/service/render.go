package service

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// contentRenderer turns stored markdown into HTML that is safe to serve.
// Content is stored as written; sanitizing happens on the rendered output.
type contentRenderer struct {
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func newContentRenderer() *contentRenderer {
	return &contentRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Raw HTML is let through here and stripped by the sanitizer.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		// UGCPolicy allows basic formatting like links, lists, bold, etc.,
		// while stripping out dangerous HTML.
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// HTML renders markdown content to sanitized HTML.
func (r *contentRenderer) HTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return string(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}
