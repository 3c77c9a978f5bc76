// Package tracker implements the batch workflow on top of the store and the
// formula evaluator: saving ingredients, recipes, starters and publish notes
// with their derived columns, and recording gravity and dilution
// calculations in the history table.
//
// A Service holds no state between calls beyond its collaborators, so one
// instance can serve a whole CLI invocation or a long-running watcher.
package tracker
