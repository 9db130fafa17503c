// Package buildinfo exposes version metadata stamped at link time via
// -ldflags, e.g.:
//
//	go build -ldflags "-X github.com/mkowalczyk/allerlog/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the stamped build metadata to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
