package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/withrocks/genologics/pkg/lims/entities"
)

func Placements(ctx context.Context, c *entities.Entity) (map[string]*entities.Entity, error) {
	return entities.Value[map[string]*entities.Entity](ctx, c, "placements")
}

// PlacementsBatch returns the placements of a container with every placed
// artifact loaded by a single batch call.
func PlacementsBatch(ctx context.Context, c *entities.Entity) (map[string]*entities.Entity, error) {
	placements, err := Placements(ctx, c)
	if err != nil {
		return nil, err
	}

	if len(placements) == 0 {
		return placements, nil
	}

	wells := make([]string, 0, len(placements))
	for well := range placements {
		wells = append(wells, well)
	}
	sort.Strings(wells)

	artifacts := make([]*entities.Entity, 0, len(wells))
	for _, well := range wells {
		artifacts = append(artifacts, placements[well])
	}

	if _, err := c.Session().Batch(ctx, artifacts); err != nil {
		return nil, fmt.Errorf("failed to load the artifacts in %s: %w", c, err)
	}

	return placements, nil
}
