// Package main provides the entry point for the partsync CLI tool.
package main

import (
	"github.com/partforge/partsync/cmd/partsync/cmd"

	// Supplier adapters register themselves with the default registry.
	_ "github.com/partforge/partsync/internal/suppliers/digikey"
	_ "github.com/partforge/partsync/internal/suppliers/reichelt"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
