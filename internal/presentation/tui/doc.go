// Package tui holds terminal presentation helpers for the chat command.
package tui
