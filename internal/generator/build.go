package generator

import (
	"log/slog"

	"sitegen/internal/ai"
)

// FromRegistry builds the standard two-stage chain: the primary provider
// with the combined prompt, then the secondary with an instruction block.
// A provider missing from the registry leaves its stage empty; the chain
// then skips straight to the next stage.
func FromRegistry(reg *ai.Registry, primary, secondary string) *Generator {
	return New(
		Stage{Name: StagePrimary, Provider: lookup(reg, primary), Style: StyleCombined},
		Stage{Name: StageSecondary, Provider: lookup(reg, secondary), Style: StyleInstruction},
	)
}

func lookup(reg *ai.Registry, name string) ai.Provider {
	p, err := reg.Get(name)
	if err != nil {
		slog.Warn("generation provider unavailable", "provider", name, "error", err)
		return nil
	}
	return p
}
