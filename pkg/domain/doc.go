/*
Package domain contains the core models of the booking assistant.

It defines the conversation Session, the closed set of Intents, the slot
scopes of the slot-filling flows and the booking records exchanged with the
booking service. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Session: per-conversation state (active intent, slots, last booking reference).
  - Intent: the symbolic goal of an utterance.
  - Booking, AvailabilitySlot, UpdateResult, Cancellation: booking service records.
  - RemoteError: the failure of a booking service call.
*/
package domain
