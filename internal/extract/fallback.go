// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"

	"code.sajari.com/docconv"
)

// Fallback performs a degraded, best-effort extraction for documents
// the primary parser rejects. It returns whatever text docconv can
// recover, or an empty string; it never fails. The caller decides
// whether an empty result still counts as success.
func (DocxExtractor) Fallback(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	text, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return ""
	}
	return text
}
