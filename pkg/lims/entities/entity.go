package entities

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/types"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
)

// Entity is the local proxy of one LIMS resource. Its document is fetched
// the first time an attribute needs more than the entity already holds.
type Entity struct {
	session *Session
	kind    *Kind
	uri     string

	doc   *etree.Document
	state types.FetchState
	bag   *types.Bag
}

func (e *Entity) URI() string {
	return e.uri
}

// ID is the last path segment of the uri, or an empty string for entities
// that have not been created on the server yet.
func (e *Entity) ID() string {
	if e.uri == "" {
		return ""
	}

	path := e.uri
	if u, err := url.Parse(e.uri); err == nil {
		path = u.Path
	}

	path = strings.TrimSuffix(path, "/")
	return path[strings.LastIndex(path, "/")+1:]
}

func (e *Entity) Kind() *Kind {
	return e.kind
}

func (e *Entity) Session() *Session {
	return e.session
}

func (e *Entity) State() types.FetchState {
	return e.state
}

func (e *Entity) Bag() *types.Bag {
	return e.bag
}

// Document is the document backing the entity, or nil if none is loaded.
func (e *Entity) Document() *etree.Document {
	return e.doc
}

// Root is the root element of the loaded document, or nil.
func (e *Entity) Root() *etree.Element {
	if e.doc == nil {
		return nil
	}
	return e.doc.Root()
}

func (e *Entity) Detached() bool {
	return e.uri == ""
}

func (e *Entity) String() string {
	if e.uri == "" {
		return e.kind.Name + "(new)"
	}
	return fmt.Sprintf("%s(%s)", e.kind.Name, e.ID())
}

// Ensure fetches the full document unless the entity already holds one of
// the required states.
func (e *Entity) Ensure(ctx context.Context, required types.FetchState) error {
	return e.ensure(ctx, required, "", false)
}

// Refresh fetches the full document again, whatever the entity already holds.
func (e *Entity) Refresh(ctx context.Context) error {
	return e.ensure(ctx, types.Details, "", true)
}

func (e *Entity) ensure(ctx context.Context, required types.FetchState, attribute string, force bool) error {
	if required == types.None || required&^types.OverviewOrDetails != 0 {
		return errors.NewPreconditionError(fmt.Sprintf("%s: invalid required fetch state %s", e, required))
	}

	if !force && e.state.Satisfies(required) {
		return nil
	}

	if e.uri == "" {
		return errors.NewDetachedError("fetch", e.kind.Name)
	}

	log := logging.GetFromContext(ctx)
	log.Debug("fetching entity", "session", e.session.ID(), "uri", e.uri, "state", e.state.String(), "required", required.String(), "attribute", attribute)

	doc, err := e.session.store.Fetch(ctx, e.uri)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", e, err)
	}

	e.doc = doc
	e.state |= types.Details

	return nil
}

// Get reads a named attribute. An attribute found in the bag is answered
// from it as long as no document is loaded. Otherwise the document is
// fetched if needed and the binding decodes the value from it.
func (e *Entity) Get(ctx context.Context, name string) (any, error) {
	b, ok := e.kind.Binding(name)
	if !ok {
		return nil, errors.NewUnknownAttributeError(e.kind.Name, name)
	}

	if e.doc == nil {
		if v, ok := e.bag.Get(name); ok {
			return v, nil
		}
	}

	if b.Required() != types.None {
		if err := e.ensure(ctx, b.Required(), name, false); err != nil {
			return nil, err
		}
	}

	return b.Read(ctx, e, name)
}

// Set writes a named attribute to the local document. Nothing is sent to
// the server until the entity is saved.
func (e *Entity) Set(ctx context.Context, name string, value any) error {
	b, ok := e.kind.Binding(name)
	if !ok {
		return errors.NewUnknownAttributeError(e.kind.Name, name)
	}

	if b.Required() != types.None {
		if err := e.ensure(ctx, b.Required(), name, false); err != nil {
			return err
		}
	}

	if err := b.Write(ctx, e, name, value); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", e.kind.Name, name, err)
	}

	return nil
}

// Put saves the entity by replacing the resource with the local document.
func (e *Entity) Put(ctx context.Context) error {
	return e.submit(ctx, "put", http.MethodPut, e.uri)
}

// Post submits the local document to the uri of the entity.
func (e *Entity) Post(ctx context.Context) error {
	return e.submit(ctx, "post", http.MethodPost, e.uri)
}

// SubmitTo posts or puts the local document to a resource below the entity
// uri, such as "advance", and adopts the returned document.
func (e *Entity) SubmitTo(ctx context.Context, method, suffix string) error {
	if e.uri == "" {
		return errors.NewDetachedError(suffix, e.kind.Name)
	}
	return e.submit(ctx, suffix, method, strings.TrimSuffix(e.uri, "/")+"/"+suffix)
}

func (e *Entity) submit(ctx context.Context, operation, method, uri string) error {
	if e.uri == "" {
		return errors.NewDetachedError(operation, e.kind.Name)
	}

	if e.doc == nil || e.doc.Root() == nil {
		return errors.NewPreconditionError(fmt.Sprintf("%s: nothing to %s, no document is loaded", e, operation))
	}

	doc, err := e.session.store.Submit(ctx, uri, e.doc, method)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", operation, e, err)
	}

	e.doc = doc
	e.state |= types.Details

	return nil
}

// hydrate hands a fragment to the entity. Overview fragments never replace
// a document that is already loaded.
func (e *Entity) hydrate(fragment *etree.Element, state types.FetchState) {
	if state&types.Details == 0 && e.doc != nil {
		return
	}

	e.doc = xmlns.Document(xmlns.Adopt(fragment))
	e.state |= state
}

// offer merges a bag harvested from a listing into the bag of the entity.
func (e *Entity) offer(bag *types.Bag) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	e.bag = e.bag.Merge(bag)
}
