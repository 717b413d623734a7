// Package router maps (symbol, depth, payload-kind) to a concrete
// topic/partition/key tuple. It is a pure function of its Config plus
// its inputs, with no state and no I/O, so the Pipeline can call it
// from any worker goroutine without synchronisation.
package router
