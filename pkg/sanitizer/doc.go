// Package sanitizer normalises free-text input before it reaches the catalog.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input degrades to empty strings or empty slices
// rather than errors.
//
// Normalization includes:
//   - Names and locations: collapse whitespace, trim leading/trailing spaces
//   - Equipment tags: collapse whitespace, trim, upper-case ("video conf" becomes "VIDEO CONF")
//   - Slices: remove duplicates and empty values after normalization, keep first-seen order
package sanitizer
