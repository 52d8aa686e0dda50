/*
Package ports defines the driven ports (interfaces) of the booking assistant.

These interfaces decouple the dialog engine from the booking API transport,
the session storage backend and the slot extraction strategy.

# Key Interfaces

  - BookingService: the remote booking API (availability, create, get, update, cancel).
  - SessionStore: keeps conversation sessions between turns.
  - DistributedLocker: serializes concurrent turns of one session across replicas.
  - SlotExtractor: pulls slot values out of free text.
*/
package ports
