// =============================================================================
// Invoice Combination Finder - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Invoice Combination Finder CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   finder find       - Search one invoice file for a target amount
//   finder serve      - Start the HTTP API
//   finder process    - Process all invoice files in the input directory
//   finder validate   - Validate configuration files without processing
//   finder version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Search engine, ingestion, export, server, batch
//   - pkg/           : Shared file utilities
//   - profiles/      : Batch profile YAML files
//
// =============================================================================

package main

import (
	"github.com/mohamed-kadi/invoice-combination-finder/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
