// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls the full textual content out of a DOCX file:
// headers, then body paragraphs and tables in structural order, then
// footers. Merge-field placeholders such as {CustomerName} pass through
// verbatim; downstream consumers rely on the tokens staying intact.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DocxExtractor extracts text with the go-docx document object model.
// The zero value is ready to use.
type DocxExtractor struct{}

// Text returns the concatenated text of the document at path. It either
// returns the full content or an error; it never partially consumes a
// document. Body order is structural: table rows appear interleaved
// with surrounding paragraphs exactly where they occur in the source.
func (DocxExtractor) Text(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	header, footer := headerFooterText(path)

	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		if !strings.HasSuffix(header, "\n") {
			b.WriteByte('\n')
		}
	}

	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			// Empty paragraphs stay as empty lines; dropping them
			// would collapse the document's vertical structure.
			b.WriteString(paragraphText(block))
			b.WriteByte('\n')
		case *docx.Table:
			b.WriteString(tableText(block))
		}
	}

	if footer != "" {
		b.WriteString(footer)
		if !strings.HasSuffix(footer, "\n") {
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}

// paragraphText concatenates the run text of a paragraph. Runs carry
// arbitrary fragments of a line, so placeholder tokens split across
// runs reassemble here.
func paragraphText(p *docx.Paragraph) string {
	var b strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			b.WriteString(runText(c))
		case *docx.Hyperlink:
			b.WriteString(runText(&c.Run))
		}
	}
	return b.String()
}

func runText(r *docx.Run) string {
	var b strings.Builder
	for _, child := range r.Children {
		switch t := child.(type) {
		case *docx.Text:
			b.WriteString(t.Text)
		case *docx.Tab:
			b.WriteByte('\t')
		}
	}
	return b.String()
}

// tableText renders each row as one line with cell texts joined by a
// tab, rows in document order, cells in column order.
func tableText(t *docx.Table) string {
	var b strings.Builder
	for _, row := range t.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var cb strings.Builder
			for _, p := range cell.Paragraphs {
				cb.WriteString(paragraphText(p))
			}
			cells = append(cells, cb.String())
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
