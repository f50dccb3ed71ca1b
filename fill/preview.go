// CLAUDE:SUMMARY Markdown preview: converts rendered HTML for text-only surfaces (MCP clients, logs).
package fill

import (
	"fmt"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// toMarkdown converts a render result for text surfaces. DurationMS covers
// render plus conversion; the render log entry covers the render alone.
func (f *Filler) toMarkdown(res *Result) (*PreviewResult, error) {
	start := time.Now().Add(-time.Duration(res.DurationMS) * time.Millisecond)
	md, err := f.md.ConvertString(res.HTML)
	if err != nil {
		return nil, fmt.Errorf("fill: markdown convert: %w", err)
	}
	return &PreviewResult{
		RenderID:   res.RenderID,
		Template:   res.Template,
		Markdown:   md,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
