/*
Package http serves the booking assistant over HTTP.

Routes:

	GET    /health
	GET    /metrics               (when a metrics handler is configured)
	POST   /sessions              create a session
	GET    /sessions              list session IDs
	GET    /sessions/{id}         inspect a session
	DELETE /sessions/{id}         delete a session
	POST   /sessions/{id}/turns   {"utterance": "..."} -> {"reply": "...", "session": {...}}
	GET    /sessions/{id}/ws      WebSocket chat, one turn per message

Turns of the same session are serialized by the session.Manager.
*/
package http
