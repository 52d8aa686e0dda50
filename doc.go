/*
Package tablebot is a conversational front end for a restaurant booking API.

It turns free-text customer utterances into calls against the booking
service: checking availability, creating bookings, looking them up,
changing and cancelling them. Each conversation is a session that carries
the active intent and the slots collected so far, so multi-turn flows can
prompt for whatever is still missing.

# Architecture

The library follows a hexagonal layout. pkg/domain holds the session and
booking types, pkg/ports the interfaces the core depends on, and
pkg/adapters the implementations: a resilient HTTP client for the booking
API, an in-memory fake of that API, memory and Redis session stores, and
HTTP, WebSocket and MCP surfaces.

# Usage

	client := bookingapi.New("http://localhost:8547", os.Getenv("BOOKING_API_TOKEN"))
	bot := tablebot.New(client)

	ctx := context.Background()
	reply, _, err := bot.Send(ctx, "session-123", "Is there availability on 2025-08-10 for 2 people?")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply)

The tablebot command (cmd/tablebot) wraps the same pieces in a terminal
chat, an HTTP server, an MCP server and a local fake of the booking API.
*/
package tablebot
