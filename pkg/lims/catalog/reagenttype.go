package catalog

import (
	"context"

	"github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
)

// indexSequence finds the sequence of an index reagent type, or nil if the
// reagent type is no index.
func indexSequence(ctx context.Context, rt *entities.Entity) (any, error) {
	for _, special := range xmlns.Children(rt.Root(), "special-type") {
		if special.SelectAttrValue("name", "") != "Index" {
			continue
		}

		for _, attr := range xmlns.Children(special, "attribute") {
			if attr.SelectAttrValue("name", "") == "Sequence" {
				return attr.SelectAttrValue("value", ""), nil
			}
		}
	}

	return nil, nil
}

// IndexSequence returns the index sequence of a reagent type, or an empty
// string for reagent types that are no index.
func IndexSequence(ctx context.Context, rt *entities.Entity) (string, error) {
	return entities.String(ctx, rt, "sequence")
}
