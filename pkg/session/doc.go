/*
Package session coordinates concurrent access to conversation sessions.

The Manager serializes turns of the same session with reference-counted
in-process locks and, when several replicas share a Redis store, an optional
distributed lock.
*/
package session
