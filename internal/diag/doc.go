// Package diag defines the diagnostic model shared by the bundling stages.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form (codes.go).
//   - Message – short, actionable text.
//   - Primary – the source.Span the finding points at.
//   - Notes – optional secondary spans with extra context.
//
// # Emitting diagnostics
//
// Producers (lexer, parser, resolver, minifier) talk to a Reporter and never
// to concrete storage. ReportBuilder (ReportError/ReportWarning) lets a stage
// chain notes before Emit. BagReporter collects into a Bag, which supports
// sorting and deduplication for deterministic output.
//
// Rendering lives in internal/diagfmt; this package performs no IO.
package diag
