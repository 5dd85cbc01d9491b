// Package language maps provider language fields (codes or English names) to
// ISO 639-1 and decides whether a record belongs in the language-split library.
package language
