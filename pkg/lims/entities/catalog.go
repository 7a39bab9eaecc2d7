package entities

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/withrocks/genologics/pkg/lims/errors"
)

// Catalog is the set of known kinds. Kinds refer to each other by name and
// the names are resolved through the catalog when first used, so kinds can
// be declared in any order.
type Catalog struct {
	kinds map[string]*Kind
	order []string
}

// NewCatalog registers the kinds, copies inherited attributes into kinds
// that extend another kind and verifies that every referenced kind exists.
func NewCatalog(kinds ...*Kind) (*Catalog, error) {
	c := &Catalog{
		kinds: map[string]*Kind{},
	}

	var result error

	for _, k := range kinds {
		if _, exists := c.kinds[k.Name]; exists {
			result = multierror.Append(result, fmt.Errorf("kind %s is declared more than once", k.Name))
			continue
		}
		c.kinds[k.Name] = k
		c.order = append(c.order, k.Name)
	}

	for _, name := range c.order {
		if err := c.inherit(c.kinds[name], map[string]bool{}); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := c.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if result != nil {
		return nil, result
	}

	return c, nil
}

func (c *Catalog) inherit(k *Kind, visiting map[string]bool) error {
	if k.Extends == "" {
		return nil
	}

	if visiting[k.Name] {
		return fmt.Errorf("kind %s extends itself", k.Name)
	}
	visiting[k.Name] = true

	parent, ok := c.kinds[k.Extends]
	if !ok {
		return fmt.Errorf("kind %s extends unknown kind %s", k.Name, k.Extends)
	}

	if err := c.inherit(parent, visiting); err != nil {
		return err
	}

	for _, name := range parent.order {
		if _, own := k.bindings[name]; !own {
			k.bind(name, parent.bindings[name])
		}
	}

	if k.Resource == "" {
		k.Resource = parent.Resource
	}
	if k.Prefix == "" {
		k.Prefix = parent.Prefix
	}

	return nil
}

// Validate reports every attribute that refers to a kind the catalog does not know.
func (c *Catalog) Validate() error {
	var result error

	for _, name := range c.order {
		k := c.kinds[name]
		for _, ref := range k.references() {
			if _, ok := c.kinds[ref]; !ok {
				result = multierror.Append(result, fmt.Errorf("kind %s refers to unknown kind %s", k.Name, ref))
			}
		}
	}

	return result
}

func (c *Catalog) Kind(name string) (*Kind, error) {
	k, ok := c.kinds[name]
	if !ok {
		return nil, errors.NewPreconditionError(fmt.Sprintf("unknown entity kind %s", name))
	}
	return k, nil
}

// Kinds returns the registered kinds in registration order.
func (c *Catalog) Kinds() []*Kind {
	kinds := make([]*Kind, 0, len(c.order))
	for _, name := range c.order {
		kinds = append(kinds, c.kinds[name])
	}
	return kinds
}

// IsA reports whether kind is ancestor or extends it, directly or not.
func (c *Catalog) IsA(kind, ancestor string) bool {
	for hops := 0; kind != "" && hops <= len(c.kinds); hops++ {
		if kind == ancestor {
			return true
		}
		k, ok := c.kinds[kind]
		if !ok {
			return false
		}
		kind = k.Extends
	}
	return false
}
