// Package watch re-runs the bundle pipeline when sources change.
//
// Machine is the transition function: it performs no I/O and reads time
// only through the now argument. Session is the actor around it. One
// goroutine owns the Machine; notifications, timer expiries and run results
// reach it through channels, and at most one run is in flight.
package watch
