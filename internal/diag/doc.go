// Package diag defines the diagnostic model shared by the lexer, parser and checker.
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier (see codes.go); ID() renders it as
//     LEX1002, SYN2012, SEM3001 or LNT4001.
//   - Message – short human oriented text.
//   - Primary – the source.Span the problem is reported on.
//   - Notes – optional secondary spans.
//   - Args – code-specific string arguments (the unresolved name, the
//     exception type, the expected type). Quick-fix rules read them instead of
//     parsing Message.
//
// Producers emit through Reporter; BagReporter collects into a Bag, which
// sorts and deduplicates deterministically. Fixes are not part of a
// Diagnostic: they are computed on demand by internal/correction.
//
// TextEdit is the unit of change shared by proposals, internal/fix and the LSP
// server.
package diag
