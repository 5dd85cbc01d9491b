// Package organizer is the sorting engine: it walks the source tree, classifies
// each primary media file, and moves it with its sidecars into the library for
// its kind.
//
// A Sorter runs one directory pass at a time and reports per-bucket Stats.
// Items that cannot be identified go to the mismatched directory for review,
// where ListMismatched, SortOne, ForceMove and DeleteItem operate on them.
// ReorganizeInPlace and RenameInLibrary restructure an existing library
// without moving anything out of it.
//
// Failures are counted and logged per item; a pass only returns an error for
// configuration problems, an unreadable root, or cancellation.
package organizer
