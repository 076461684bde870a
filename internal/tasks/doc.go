// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [CollectAll] : walk a [paging.Stream] forward until the short-page heuristic says it has ended
//  2. [Exporter.Export] : collect one filter and write it with the formatter package
//  3. [Exporter.ExportByGenre] : export every genre concurrently and write a manifest
//     - bounded by an errgroup limit
//     - a failed genre is recorded and the rest continue
//
// # Progress Reporting
//
// All operations accept an optional channel for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
