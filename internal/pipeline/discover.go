// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// docxExt is the input extension the pipeline recognizes.
const docxExt = ".docx"

// Discover returns the input files for root: the file itself when root
// is a file, or every DOCX under it when root is a directory. Office
// lock files (~$ prefix) are excluded. Order follows the platform's
// directory listing; callers key reports by path, so ordering here does
// not matter.
func Discover(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input path: %w", err)
	}

	if !info.IsDir() {
		if !isDocx(root) {
			return nil, fmt.Errorf("input file %s is not a %s file", root, docxExt)
		}
		return []string{root}, nil
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isDocx(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	for _, e := range entries {
		if !e.IsDir() && isDocx(e.Name()) {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	return files, nil
}

func isDocx(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, "~$") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), docxExt)
}
