// Package main hosts the sortmedown CLI entrypoint and command graph.
//
// Commands load configuration once through commandContext, build a Sorter
// wired to the metadata providers and the run journal, and render results as
// tables. One-shot sorts and watch mode hold the run lock; review commands act
// on single files and do not.
package main
