package entities

import (
	"context"
	"fmt"

	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/udf"
)

// Value reads a named attribute as T. An attribute without a value reads as
// the zero value of T.
func Value[T any](ctx context.Context, e *Entity, name string) (T, error) {
	var zero T

	v, err := e.Get(ctx, name)
	if err != nil {
		return zero, err
	}

	if v == nil {
		return zero, nil
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s.%s is %T, not %T", errors.ErrTypeMismatch, e.kind.Name, name, v, zero)
	}

	return t, nil
}

// String reads a text attribute.
func String(ctx context.Context, e *Entity, name string) (string, error) {
	return Value[string](ctx, e, name)
}

// Entities reads an attribute that lists other entities.
func Entities(ctx context.Context, e *Entity, name string) ([]*Entity, error) {
	return Value[[]*Entity](ctx, e, name)
}

// Related reads an attribute that refers to one other entity. The result
// is nil if the document has no reference.
func Related(ctx context.Context, e *Entity, name string) (*Entity, error) {
	return Value[*Entity](ctx, e, name)
}

// UserFields reads an attribute bound to user defined fields.
func UserFields(ctx context.Context, e *Entity, name string) (*udf.Dictionary, error) {
	return Value[*udf.Dictionary](ctx, e, name)
}
