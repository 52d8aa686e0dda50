// Package cli implements the tablebot commands on top of the library
// packages: configuration-driven wiring, the chat loop, the servers and
// session administration.
package cli
