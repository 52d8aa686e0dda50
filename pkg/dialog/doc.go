/*
Package dialog implements the booking conversation.

The Engine resolves the intent of each utterance, accumulates the slots a
flow needs across turns, prompts for whatever is missing and calls the
booking service once a flow is complete. Availability searches and booking
creation are slot-filling flows that stay active until they finish; lookups,
updates and cancellations are answered in a single turn and never disturb
the active flow.

The Pipeline places a ports.SlotExtractor in front of the Engine so that
free text such as "a table for 4 on 2025-08-10" fills slots directly.
*/
package dialog
