// Package connectors provides implementations of the Connector
// interface for the supported document sources: web crawling, Google
// Drive folders and local directories.
//
// The Factory maps a configured source's type to its connector; the
// sync orchestrator never sees connector internals, only the uniform
// document stream.
package connectors
