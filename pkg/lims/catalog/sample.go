package catalog

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/withrocks/genologics/pkg/lims/entities"
	"github.com/withrocks/genologics/pkg/lims/errors"
)

// CreateSample creates a sample placed in a well of a container. The sample
// is posted as a samplecreation document carrying its location.
func CreateSample(ctx context.Context, s *entities.Session, container *entities.Entity, well string, values map[string]any) (*entities.Entity, error) {
	if container == nil || !s.Catalog().IsA(container.Kind().Name, ContainerTypeName) {
		return nil, errors.NewPreconditionError(fmt.Sprintf("%v is not a container", container))
	}

	if container.Detached() {
		return nil, errors.NewDetachedError("place sample", container.Kind().Name)
	}

	location := func(root *etree.Element) error {
		loc := root.CreateElement("location")
		loc.CreateElement("container").CreateAttr("uri", container.URI())
		loc.CreateElement("value").SetText(well)
		return nil
	}

	return s.Create(ctx, SampleTypeName, values, entities.CreationTag("samplecreation"), entities.Decorate(location))
}
