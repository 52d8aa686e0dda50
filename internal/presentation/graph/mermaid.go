package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tablebot/pkg/dialog"
	"github.com/aretw0/tablebot/pkg/domain"
)

// Overlay marks a session's progress on the flow chart.
type Overlay struct {
	FilledSlots   []string
	CurrentIntent domain.Intent
}

// OverlayFor builds the overlay of s.
func OverlayFor(s *domain.Session) *Overlay {
	if s == nil {
		return nil
	}
	o := &Overlay{CurrentIntent: s.ActiveIntent}
	for name, value := range s.Slots {
		if value != "" {
			o.FilledSlots = append(o.FilledSlots, name)
		}
	}
	return o
}

var flowOps = []struct {
	intent domain.Intent
	op     string
}{
	{domain.IntentCheckAvailability, domain.OpSearchAvailability},
	{domain.IntentBook, domain.OpCreateBooking},
	{domain.IntentGetBooking, domain.OpGetBooking},
	{domain.IntentModifyBooking, domain.OpUpdateBooking},
	{domain.IntentCancelBooking, domain.OpCancelBooking},
}

// GenerateMermaid produces a Mermaid flowchart of the dialog flows.
// Shapes:
// - Start: ((Circle))
// - Intent: [Rectangle]
// - Slot prompt: [/Parallelogram/]
// - Booking API call: [[Subroutine]]
// Single-shot intents link straight to their API call.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")

	for _, f := range flowOps {
		intentID := sanitizeMermaidID(string(f.intent))
		opID := "op_" + sanitizeMermaidID(f.op)
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", intentID, f.intent)
		fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", opID, f.op)
		fmt.Fprintf(&sb, "    start --> %s\n", intentID)

		prev := intentID
		for _, slot := range dialog.RequiredSlots(f.intent) {
			slotID := intentID + "_" + sanitizeMermaidID(slot)
			fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", slotID, slot)
			fmt.Fprintf(&sb, "    %s --> %s\n", prev, slotID)
			prev = slotID
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, opID)
	}
	// Availability hands its date and party size over to booking.
	fmt.Fprintf(&sb, "    %s -. \"book\" .-> %s\n",
		sanitizeMermaidID(string(domain.IntentCheckAvailability)),
		sanitizeMermaidID(string(domain.IntentBook)))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if overlay.CurrentIntent != domain.IntentNone {
			intentID := sanitizeMermaidID(string(overlay.CurrentIntent))
			fmt.Fprintf(&sb, "    class %s current;\n", intentID)

			filled := make(map[string]bool, len(overlay.FilledSlots))
			for _, slot := range overlay.FilledSlots {
				filled[slot] = true
			}
			for _, slot := range dialog.RequiredSlots(overlay.CurrentIntent) {
				if filled[slot] {
					fmt.Fprintf(&sb, "    class %s_%s visited;\n", intentID, sanitizeMermaidID(slot))
				}
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
