// Package driving defines the interfaces through which external
// actors (CLI commands, schedulers) drive the core.
//
// These are the "driving" or "primary" ports in hexagonal
// architecture. Core services implement them.
package driving
