// Package logs reads the sortmedown log file for the `logs` command: the last
// lines on demand, then newly appended lines while following.
package logs
