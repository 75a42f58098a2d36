// Package tasks runs the long shelf operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [Importer.Import] : bulk "Artist - Title" import
//     - Processes lines strictly one at a time
//     - Waits a fixed delay between lines to respect the catalog's rate limit
//     - Each line goes through the shelf's single-line import, which starts artwork resolution
//     - Returns the number of items added; per-line artwork failures never surface
//
//  2. [Export] : write the shelf to disk
//     - Renders json, csv, markdown or txt through the formatter package
//
// # Progress Reporting
//
// Operations take an optional send-only channel of [ProgressUpdate].
// Updates use select with default so a slow reader never stalls an import.
package tasks
