// Package preflight provides readiness checks for the directories and metadata
// providers that a sort pass depends on.
//
// These checks run in two contexts:
//   - The sorter checks the source directory before each pass and refuses to
//     start when it is missing or inaccessible.
//   - The CLI "config validate" and "config test-keys" commands display the
//     individual results.
package preflight
