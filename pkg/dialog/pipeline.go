package dialog

import (
	"context"

	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/aretw0/tablebot/pkg/intent"
	"github.com/aretw0/tablebot/pkg/ports"
)

// Pipeline runs an optional slot extractor ahead of the engine.
type Pipeline struct {
	engine    *Engine
	extractor ports.SlotExtractor
}

// NewPipeline creates a pipeline. A nil extractor makes it a plain
// pass-through to the engine.
func NewPipeline(engine *Engine, extractor ports.SlotExtractor) *Pipeline {
	return &Pipeline{engine: engine, extractor: extractor}
}

// Turn extracts slots from utterance when a slot-filling flow is active or
// about to start, merges them into s and hands the turn to the engine.
func (p *Pipeline) Turn(ctx context.Context, s *domain.Session, utterance string) string {
	if p.extractor != nil {
		fresh := intent.Classify(utterance)
		if !fresh.SingleShot() && (s.ActiveIntent.FillsSlots() || fresh.FillsSlots()) {
			s.MergeSlots(p.extractor.Extract(utterance))
		}
	}
	return p.engine.Handle(ctx, s, utterance)
}
