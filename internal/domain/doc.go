// Package domain defines the records, enumerations, amounts and errors of
// the ripple fundraising ledger.
//
// This package contains type definitions only. Every other internal
// package imports domain; domain imports nothing internal.
//
// Key constraints:
//   - Amounts are unsigned base units (Amount); one value-unit is UnitScale
//     base units. No floats anywhere.
//   - Aggregates (raised amount, totals, counters) change only through
//     checked arithmetic that reports ArithmeticOverflow.
//   - Enumerations are snake_case strings so they read the same in the
//     CLI, scenario files and the SQLite store.
package domain
