// Package intent classifies utterances into the closed set of booking intents
// using ordered keyword rules.
package intent
