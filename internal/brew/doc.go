// Package brew defines the records tracked by sakemonkey: ingredients,
// starters, recipes (one per batch), publish notes and calculation history.
//
// This package contains types and small value helpers only. Other internal
// packages import brew; brew imports nothing internal.
//
// Conventions:
//   - Optional columns are pointers; nil means "not recorded"
//   - Identifiers are NFC-normalized and trimmed (NormalizeKey)
//   - Calendar dates use Date, stored and printed as YYYY-MM-DD
//   - JSON and YAML tags use snake_case
package brew
