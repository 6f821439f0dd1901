// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"os"
)

// sofficePathEnv is the environment variable naming the soffice
// executable, consulted when no explicit override is configured.
const sofficePathEnv = "SOFFICE_PATH"

// searchPaths lists platform-typical soffice install locations tried
// after the override and the environment variable.
var searchPaths = []string{
	"/usr/bin/soffice",
	"/usr/local/bin/soffice",
	"/opt/libreoffice/program/soffice",
	"/snap/bin/libreoffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	`C:\Program Files\LibreOffice\program\soffice.exe`,
	`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
}

// pathNames are bare command names resolved through PATH as a last
// resort.
var pathNames = []string{"soffice", "libreoffice"}

// resolveTool locates the soffice executable: explicit override first,
// then SOFFICE_PATH, then the fixed search list, then PATH lookup. An
// override or environment value that does not exist is an error rather
// than a silent fall-through, so misconfiguration is visible.
func resolveTool(override string, run runner) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%w: configured path %s: %v", ErrToolNotFound, override, err)
		}
		return override, nil
	}

	if env := os.Getenv(sofficePathEnv); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", fmt.Errorf("%w: %s=%s: %v", ErrToolNotFound, sofficePathEnv, env, err)
		}
		return env, nil
	}

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	for _, name := range pathNames {
		if p, err := run.LookPath(name); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: install LibreOffice or set %s", ErrToolNotFound, sofficePathEnv)
}
