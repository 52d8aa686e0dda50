// Package fakeapi serves an in-memory restaurant booking API with the same
// routes, form encoding and JSON responses as the real service. It backs
// local runs (tablebot mock-api) and end-to-end tests.
package fakeapi
