// Package version reports the klok release.
package version

import (
	"bytes"
	_ "embed"
)

//go:embed version.txt
var versionBytes []byte

// Version returns the release this binary was built from, or "dev".
func Version() string {
	v := string(bytes.TrimSpace(versionBytes))
	if v == "" {
		return "dev"
	}
	return v
}
