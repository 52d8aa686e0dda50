package ports

// SlotExtractor pulls slot values out of free text.
// The returned map is keyed by slot name (see domain.Slot*); missing slots are absent.
type SlotExtractor interface {
	Extract(utterance string) map[string]string
}
