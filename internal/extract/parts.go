// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"sort"
	"strings"
)

// headerFooterText reads the header and footer parts of a DOCX archive
// directly, since the document object model only exposes the body. It
// is best-effort: a document without accessible header or footer parts
// yields empty strings, never an error.
func headerFooterText(docxPath string) (header, footer string) {
	r, err := zip.OpenReader(docxPath)
	if err != nil {
		return "", ""
	}
	defer r.Close()

	var headers, footers []*zip.File
	for _, f := range r.File {
		name := path.Base(f.Name)
		switch {
		case strings.HasPrefix(f.Name, "word/header") && strings.HasSuffix(name, ".xml"):
			headers = append(headers, f)
		case strings.HasPrefix(f.Name, "word/footer") && strings.HasSuffix(name, ".xml"):
			footers = append(footers, f)
		}
	}

	// Part names are headerN.xml / footerN.xml; sorting keeps output
	// stable across archive orderings.
	byName := func(fs []*zip.File) {
		sort.Slice(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
	}
	byName(headers)
	byName(footers)

	return partsText(headers), partsText(footers)
}

func partsText(files []*zip.File) string {
	var b strings.Builder
	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			continue
		}
		b.WriteString(partText(rc))
		rc.Close()
	}
	return strings.TrimRight(b.String(), "\n")
}

// partText scrapes the w:t character data out of one XML part, emitting
// a line break at each paragraph end.
func partText(r io.Reader) string {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String()
}
