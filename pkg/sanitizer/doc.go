// Package sanitizer normalizes request input before validation.
//
// All functions are idempotent and never fail: invalid input comes back
// trimmed or empty and is left for the validator to reject.
//
// Normalization includes:
//   - Dates: trim surrounding whitespace so "2030-01-02 " parses
//   - Text: collapse inner whitespace, trim leading/trailing spaces
//   - Report cells: strip line breaks so one booking stays on one CSV line
package sanitizer
