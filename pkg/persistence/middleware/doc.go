// Package middleware wraps session stores and sessions with data protection:
// AES-GCM encryption at rest with key rotation, and redaction of customer
// details for display.
package middleware
