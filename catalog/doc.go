// Package catalog holds the stream catalog: the immutable, load-ordered set
// of stream segments with their rates, half-widths and derived footprints.
//
// The catalog is built once, either from the text input format (Load) or from
// decoded snapshot records (New), and is read-only afterwards, so it is safe
// for concurrent readers.
package catalog
