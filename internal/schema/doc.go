// Package schema turns dynamically parsed field tables into labeled trees
// using compiled-in message descriptions. Field-number-to-meaning knowledge
// is data, not control flow: each known message type is a static table of
// (field number, label, kind) rows, so adding a field is a table edit.
package schema
